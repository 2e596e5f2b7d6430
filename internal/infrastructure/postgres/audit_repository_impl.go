package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tour-booking-api/internal/domain/repository"
)

// AuditRepository appends authentication events to auth_audit_logs.
type AuditRepository struct {
	pool *pgxpool.Pool
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEntry) error {
	meta := []byte("{}")
	if len(e.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(e.Metadata); err != nil {
			return err
		}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6)
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, meta)
	return err
}
