package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

func TestRecover(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{
			name: "fenced array",
			raw:  "```json\n[{\"a\":1}]\n```",
			want: []any{map[string]any{"a": json.Number("1")}},
		},
		{
			name: "fence without language tag",
			raw:  "```\n{\"a\":\"x\"}\n```",
			want: map[string]any{"a": "x"},
		},
		{
			name: "object embedded in prose",
			raw:  `Here is the result: {"a":1} hope this helps`,
			want: map[string]any{"a": json.Number("1")},
		},
		{
			name: "brackets and quotes inside strings",
			raw:  `note {"articulo":"tornillo {M8} \"[x]\"","cantidad":2} end }`,
			want: map[string]any{"articulo": `tornillo {M8} "[x]"`, "cantidad": json.Number("2")},
		},
		{
			name: "malformed first candidate falls through to next",
			raw:  `{not json} and then {"ok":true}`,
			want: map[string]any{"ok": true},
		},
		{
			name: "array inside prose",
			raw:  "Lines:\n[{\"a\":1},{\"a\":2}]",
			want: []any{map[string]any{"a": json.Number("1")}, map[string]any{"a": json.Number("2")}},
		},
		{
			name: "scalar array in prose is skipped",
			raw:  `see [1] below {"a":1}`,
			want: map[string]any{"a": json.Number("1")},
		},
		{
			name: "truncated array keeps complete objects",
			raw:  `[{"a":1},{"a":2},{"a":`,
			want: []any{map[string]any{"a": json.Number("1")}, map[string]any{"a": json.Number("2")}},
		},
		{
			name: "unclosed bracket and quote in prose",
			raw:  `Nota [importante "ver abajo {"a":1}`,
			want: map[string]any{"a": json.Number("1")},
		},
		{
			name: "objects nested in a wrapper array",
			raw:  `resultado: [[{"a":1}]]`,
			want: []any{map[string]any{"a": json.Number("1")}},
		},
		{
			name: "trailing comma in array",
			raw:  `[{"a":1},]`,
			want: []any{map[string]any{"a": json.Number("1")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Recover(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecoverNoPayload(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"I cannot help with that.",
		"```json\n```",
		`{"a": 1`,
		`}{`,
		`[1, 2`,
	} {
		got, ok := Recover(raw)
		assert.False(t, ok, "raw %q", raw)
		assert.Nil(t, got)
	}
}

func TestRecoverUnbalancedInputStaysLinear(t *testing.T) {
	const n = 200_000
	for name, raw := range map[string]string{
		"run of openers":       "x" + strings.Repeat("{", n),
		"run of array openers": strings.Repeat("[{", n),
		"unterminated strings": strings.Repeat(`{"a`, n),
	} {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			got, ok := Recover(raw)
			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestRecoverStopsAfterCandidateLimit(t *testing.T) {
	noise := strings.Repeat("{x} ", maxCandidates)
	_, ok := Recover(noise + `{"a":1}`)
	assert.False(t, ok)

	got, ok := Recover(strings.Repeat("{x} ", maxCandidates-1) + `{"a":1}`)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, got)
}

func TestBalancedSpans(t *testing.T) {
	s := `a {"k":"}"} [1,[2]] ] {x]`
	assert.Equal(t, map[int]int{2: 11, 12: 19, 15: 18}, balancedSpans(s))
}

func TestRecoverRecordsInvoice(t *testing.T) {
	p, err := RecoverRecords(`{"numero_factura":"F1"}`, constants.Invoice)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, map[string]any{"numero_factura": "F1"}, p.Items[0])

	p, err = RecoverRecords(`[{"numero_factura":"F1"},{"numero_factura":"F2"}]`, constants.Invoice)
	require.NoError(t, err)
	assert.Len(t, p.Items, 2)

	_, err = RecoverRecords("no json here", constants.Invoice)
	var re *RecoveryError
	require.True(t, errors.As(err, &re))
	assert.ErrorIs(t, err, ErrNoPayload)
	assert.Equal(t, "no json here", re.Snippet)
}

func TestRecoverRecordsDeedShapes(t *testing.T) {
	t.Run("wrapper with inmuebles", func(t *testing.T) {
		raw := "```json\n" + `{"numero_escritura":"123","tipo":"Herencia","inmuebles":[{"descripcion":"Piso"}],"alertas":["falta firma",""]}` + "\n```"
		p, err := RecoverRecords(raw, constants.Deed)
		require.NoError(t, err)
		assert.Equal(t, "Herencia", p.Title)
		assert.Equal(t, []string{"falta firma"}, p.Alerts)
		assert.Len(t, p.Items, 1)
	})

	t.Run("wrapper with inventario", func(t *testing.T) {
		p, err := RecoverRecords(`{"tipo":null,"inventario":[{"descripcion":"A"},{"descripcion":"B"}],"alertas":"revisar"}`, constants.Deed)
		require.NoError(t, err)
		assert.Empty(t, p.Title)
		assert.Equal(t, []string{"revisar"}, p.Alerts)
		assert.Len(t, p.Items, 2)
	})

	t.Run("bare array", func(t *testing.T) {
		p, err := RecoverRecords(`[{"descripcion":"A"}]`, constants.Deed)
		require.NoError(t, err)
		assert.Len(t, p.Items, 1)
	})

	t.Run("lone item", func(t *testing.T) {
		p, err := RecoverRecords(`{"descripcion":"Finca","referencias_catastrales":[]}`, constants.Deed)
		require.NoError(t, err)
		assert.Len(t, p.Items, 1)
	})

	t.Run("wrapper without items", func(t *testing.T) {
		p, err := RecoverRecords(`{"tipo":"Compraventa","alertas":[]}`, constants.Deed)
		require.NoError(t, err)
		assert.Equal(t, "Compraventa", p.Title)
		assert.Empty(t, p.Items)
	})

	t.Run("inventory of wrong type", func(t *testing.T) {
		_, err := RecoverRecords(`{"inmuebles":"piso en Madrid"}`, constants.Deed)
		assert.ErrorIs(t, err, ErrUnexpectedShape)
	})
}
