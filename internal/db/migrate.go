package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usersMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    token_identifier text NOT NULL,
    name text NOT NULL DEFAULT '',
    image text NOT NULL DEFAULT '',
    org_ids jsonb NOT NULL DEFAULT '[]'::jsonb,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_token_identifier_unique
ON users (token_identifier);
`

// Migrate crea el esquema del directorio de usuarios si no existe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, usersMigration)
	return err
}
