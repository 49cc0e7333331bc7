package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

func TestValueFromDistinguishesAbsentAndNull(t *testing.T) {
	m := map[string]any{"fecha": nil, "cif": "B123"}

	assert.True(t, ValueFrom(m, "proveedor").IsAbsent())
	assert.True(t, ValueFrom(m, "fecha").IsNull())
	assert.True(t, ValueFrom(m, "cif").IsPresent())
	assert.Equal(t, "B123", ValueFrom(m, "cif").Text())

	var zero Value
	assert.True(t, zero.IsAbsent())
}

func TestValueFloat(t *testing.T) {
	f, ok := Of(json.Number("12.5")).Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	f, ok = Of(3.0).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = Of("12").Float()
	assert.False(t, ok)
	_, ok = Null().Float()
	assert.False(t, ok)
}

func TestValueTextAndJSON(t *testing.T) {
	assert.Equal(t, "1234.56", Of(1234.56).Text())
	assert.Equal(t, "", Null().Text())

	b, err := json.Marshal(map[string]Value{"a": Null(), "b": Of("x")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":"x"}`, string(b))
}

func TestDocumentTextAndEmpty(t *testing.T) {
	doc := Document{Pages: []string{"uno", "", "tres"}}
	assert.Equal(t, "uno\n\ntres", doc.Text())
	assert.False(t, doc.Empty())

	assert.True(t, Document{}.Empty())
	assert.True(t, Document{Pages: []string{"  ", "\n\t"}}.Empty())
}

func TestResultOutcome(t *testing.T) {
	assert.Equal(t, constants.RunSucceeded, Result{SegmentsTotal: 2}.Outcome())
	assert.Equal(t, constants.RunPartial, Result{SegmentsTotal: 2, SegmentsFailed: 1}.Outcome())
	assert.Equal(t, constants.RunFailed, Result{SegmentsTotal: 2, SegmentsFailed: 2}.Outcome())
}
