package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"brokerage/internal/audit"
)

// AuditStore implements audit.Store on the audit_events table.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, event audit.Event) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, ts, actor, action, entity_kind, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.Timestamp, event.Actor, event.Action,
		event.EntityKind, event.EntityID, event.Detail)
	return mapWrite(err, "append audit event")
}

func (s *AuditStore) ListByEntity(ctx context.Context, entityKind, entityID string) ([]audit.Event, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, ts, actor, action, entity_kind, entity_id, detail
		FROM audit_events WHERE entity_kind = $1 AND entity_id = $2 ORDER BY ts
	`, entityKind, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var ev audit.Event
		err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Actor, &ev.Action,
			&ev.EntityKind, &ev.EntityID, &ev.Detail)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
