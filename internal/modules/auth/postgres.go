// README: Durable revocation set backed by Postgres.
package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlacklist keeps revocations in the revoked_tokens table.
// Expired rows are filtered on read; a periodic sweep can delete them
// but correctness does not depend on it.
type PostgresBlacklist struct {
	db *pgxpool.Pool
}

func NewPostgresBlacklist(db *pgxpool.Pool) *PostgresBlacklist {
	return &PostgresBlacklist{db: db}
}

func (b *PostgresBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	_, err := b.db.Exec(ctx, `
        INSERT INTO revoked_tokens (token, expires_at)
        VALUES ($1, $2)
        ON CONFLICT (token) DO NOTHING`,
		token, time.Now().Add(ttl))
	return err
}

func (b *PostgresBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := b.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM revoked_tokens
            WHERE token = $1 AND expires_at > now()
        )`, token).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
