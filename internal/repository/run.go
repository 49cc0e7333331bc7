package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/common"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// RunRepository persists one audit row per extraction run.
type RunRepository interface {
	Start(ctx context.Context, id uuid.UUID, kind constants.DocumentKind, source string) (*entity.RunSummary, error)
	Finish(ctx context.Context, id uuid.UUID, res entity.Result) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.RunSummary, error)
	ListRecent(ctx context.Context, limit int) ([]entity.RunSummary, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, id uuid.UUID, kind constants.DocumentKind, source string) (*entity.RunSummary, error) {
	now := time.Now().UTC()
	_, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`INSERT INTO extraction_runs (id, kind, source, started_at) VALUES (?, ?, ?, ?)`),
		id.String(), string(kind), source, now.UnixMilli())
	if err != nil {
		r.log.Error("extraction_run start failed", "run_id", id, "err", err)
		return nil, fmt.Errorf("%w: start run: %v", common.ErrDatabase, err)
	}
	r.log.Info("extraction_run started", "run_id", id, "kind", kind, "source", source)
	return &entity.RunSummary{
		ID:        id,
		Kind:      kind,
		Source:    source,
		StartedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}, nil
}

func (r *runRepo) Finish(ctx context.Context, id uuid.UUID, res entity.Result) error {
	alerts, err := json.Marshal(res.Alerts)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}
	result, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`
		UPDATE extraction_runs SET
			finished_at = ?, outcome = ?, segments_total = ?, segments_failed = ?,
			record_count = ?, missing_from_model = ?, unexpected_from_model = ?, alerts = ?
		WHERE id = ?`),
		time.Now().UTC().UnixMilli(), string(res.Outcome()), res.SegmentsTotal, res.SegmentsFailed,
		len(res.Records), len(res.CrossCheck.MissingFromModel), len(res.CrossCheck.UnexpectedFromModel), string(alerts),
		id.String())
	if err != nil {
		r.log.Error("extraction_run finish failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: finish run: %v", common.ErrDatabase, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	r.log.Info("extraction_run finished", "run_id", id, "outcome", res.Outcome(), "records", len(res.Records))
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`UPDATE extraction_runs SET finished_at = ?, outcome = ?, error_message = ? WHERE id = ?`),
		time.Now().UTC().UnixMilli(), string(constants.RunFailed), message, id.String())
	if err != nil {
		r.log.Error("extraction_run finish failure failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: finish run: %v", common.ErrDatabase, err)
	}
	r.log.Warn("extraction_run failed", "run_id", id, "message", message)
	return nil
}

const selectRun = `SELECT id, kind, source, started_at, finished_at, outcome, error_message,
	segments_total, segments_failed, record_count, missing_from_model, unexpected_from_model, alerts
	FROM extraction_runs`

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*entity.RunSummary, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(selectRun+` WHERE id = ?`), id.String())
	s, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get run: %v", common.ErrDatabase, err)
	}
	return s, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]entity.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(selectRun+` ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.RunSummary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*entity.RunSummary, error) {
	var (
		s          entity.RunSummary
		id, kind   string
		started    int64
		finished   sql.NullInt64
		outcome    sql.NullString
		errMessage sql.NullString
		alerts     sql.NullString
	)
	if err := sc.Scan(&id, &kind, &s.Source, &started, &finished, &outcome, &errMessage,
		&s.SegmentsTotal, &s.SegmentsFailed, &s.RecordCount, &s.MissingFromModel, &s.UnexpectedFromModel, &alerts); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	s.ID = parsed
	s.Kind = constants.DocumentKind(kind)
	s.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		s.FinishedAt = &t
	}
	if outcome.Valid {
		s.Outcome = &outcome.String
	}
	if errMessage.Valid {
		s.ErrorMessage = &errMessage.String
	}
	if alerts.Valid {
		s.Alerts = json.RawMessage(alerts.String)
	}
	return &s, nil
}
