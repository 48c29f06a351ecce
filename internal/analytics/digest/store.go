package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists digests in the daily_digests table, one row per business
// day.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) SaveDigest(ctx context.Context, date time.Time, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_digests (digest_date, payload, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (digest_date) DO UPDATE SET payload = EXCLUDED.payload, created_at = NOW()`,
		date, payload,
	)
	if err != nil {
		return fmt.Errorf("save digest: %w", err)
	}
	return nil
}

var _ Store = (*PgStore)(nil)
