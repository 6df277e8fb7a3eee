package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/open-gallery/narrator-cli/internal/db"
	"github.com/open-gallery/narrator-cli/internal/model"
)

// PostgresAuditStore implements AuditStore against the auditing database.
type PostgresAuditStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgresAuditStore connects to the auditing database.
func NewPostgresAuditStore(ctx context.Context, connString string) (*PostgresAuditStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "auditstore: parse config")
	}
	pgxCfg.MaxConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "auditstore: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "auditstore: ping")
	}
	return &PostgresAuditStore{pool: pool, closeFn: pool.Close}, nil
}

// Close releases the connection pool.
func (s *PostgresAuditStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// CountAudits returns the total number of audit rows.
func (s *PostgresAuditStore) CountAudits(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM auditing`).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "auditstore: count audits")
	}
	return count, nil
}

// ListAudits returns every audit row in a single bulk read. An empty table
// is ErrNotFound.
func (s *PostgresAuditStore) ListAudits(ctx context.Context) ([]model.Audit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT audit_id, auditor, content, start_time, publish_time, flagged, art_id, chatgpt_time, skipped, gpt_output, gpt_model FROM auditing ORDER BY audit_id`)
	if err != nil {
		return nil, eris.Wrap(err, "auditstore: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		var a model.Audit
		if err := rows.Scan(&a.AuditID, &a.Auditor, &a.Content, &a.StartTime, &a.PublishTime,
			&a.Flagged, &a.ArtID, &a.ChatGPTTime, &a.Skipped, &a.GPTOutput, &a.GPTModel); err != nil {
			return nil, eris.Wrap(err, "auditstore: scan audit")
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "auditstore: list audits")
	}
	if len(audits) == 0 {
		return nil, eris.Wrap(ErrNotFound, "auditstore: no audits")
	}
	return audits, nil
}
