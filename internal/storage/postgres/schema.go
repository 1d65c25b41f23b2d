package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates all tables. Idempotent; applied at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
	national_id TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	birth_date  TEXT NOT NULL,
	address     TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	coverage_value DOUBLE PRECISION NOT NULL,
	start_date     TEXT NOT NULL,
	end_date       TEXT NOT NULL,
	detail         JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS policies (
	number             TEXT PRIMARY KEY,
	client_national_id TEXT NOT NULL,
	product_id         TEXT NOT NULL,
	issued_at          TEXT NOT NULL,
	status             TEXT NOT NULL,
	premium            DOUBLE PRECISION NOT NULL DEFAULT 0,
	cancel_reason      TEXT NOT NULL DEFAULT '',
	cancelled_at       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_policies_client ON policies (client_national_id);

CREATE TABLE IF NOT EXISTS claims (
	id            TEXT PRIMARY KEY,
	policy_number TEXT NOT NULL,
	occurred_on   TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	loss_amount   DOUBLE PRECISION NOT NULL,
	status        TEXT NOT NULL,
	registered_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claims_policy ON claims (policy_number);

CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL,
	actor       TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_kind TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_events (entity_kind, entity_id, ts);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
