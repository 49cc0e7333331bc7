package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	require.NoError(t, HealthCheck(ctx, db, 0))
	repo := NewRunRepository(db, nil)

	id := uuid.New()
	started, err := repo.Start(ctx, id, constants.Deed, "escritura.pdf")
	require.NoError(t, err)
	assert.Equal(t, id, started.ID)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.FinishedAt)
	assert.Nil(t, got.Outcome)

	res := entity.Result{
		Kind:           constants.Deed,
		Records:        []entity.Record{{}, {}},
		Alerts:         []entity.Alert{{Code: entity.AlertSegmentFailed, Segment: 2, Message: "segment 2 failed"}},
		SegmentsTotal:  3,
		SegmentsFailed: 1,
		CrossCheck: entity.CrossValidationReport{
			MissingFromModel:    []string{"1234567A1234567BC"},
			UnexpectedFromModel: []string{},
		},
	}
	require.NoError(t, repo.Finish(ctx, id, res))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.FinishedAt)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, string(constants.RunPartial), *got.Outcome)
	assert.Equal(t, constants.Deed, got.Kind)
	assert.Equal(t, "escritura.pdf", got.Source)
	assert.Equal(t, 3, got.SegmentsTotal)
	assert.Equal(t, 1, got.SegmentsFailed)
	assert.Equal(t, 2, got.RecordCount)
	assert.Equal(t, 1, got.MissingFromModel)
	assert.Equal(t, 0, got.UnexpectedFromModel)

	var alerts []entity.Alert
	require.NoError(t, json.Unmarshal(got.Alerts, &alerts))
	assert.Equal(t, res.Alerts, alerts)
}

func TestRunRepositoryFailureAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openMemory(t), nil)

	a, b := uuid.New(), uuid.New()
	_, err := repo.Start(ctx, a, constants.Invoice, "a.pdf")
	require.NoError(t, err)
	_, err = repo.Start(ctx, b, constants.Invoice, "b.pdf")
	require.NoError(t, err)

	require.NoError(t, repo.FinishFailure(ctx, a, "empty input document"))

	got, err := repo.Get(ctx, a)
	require.NoError(t, err)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "empty input document", *got.ErrorMessage)
	assert.Equal(t, string(constants.RunFailed), *got.Outcome)

	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	missing, err := repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.Finish(ctx, uuid.New(), entity.Result{}))
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
	assert.True(t, isPostgres("postgresql://u@h/db"))
	assert.False(t, isPostgres("runs.db"))
}
