package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

// ShareGrace keeps an expired code resolvable for a while so imports can
// answer "expired" instead of "unknown".
const ShareGrace = 24 * time.Hour

// ShareStore persists share codes.
type ShareStore interface {
	Save(ctx context.Context, sc models.ShareCode) error
	// Lookup returns NotFoundError for unknown codes. Expired codes are
	// returned as stored; callers compare ExpiresAt.
	Lookup(ctx context.Context, code string) (models.ShareCode, error)
}

// RedisShareStore keeps codes in Redis with a TTL.
type RedisShareStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisShareStore(client *redis.Client) *RedisShareStore {
	return &RedisShareStore{Client: client, Prefix: "voyage:share:"}
}

func (s *RedisShareStore) key(code string) string {
	return s.Prefix + code
}

func (s *RedisShareStore) Save(ctx context.Context, sc models.ShareCode) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	ttl := time.Until(sc.ExpiresAt) + ShareGrace
	if ttl <= 0 {
		ttl = ShareGrace
	}
	if err := s.Client.Set(ctx, s.key(sc.Code), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set share code: %w", err)
	}
	return nil
}

func (s *RedisShareStore) Lookup(ctx context.Context, code string) (models.ShareCode, error) {
	raw, err := s.Client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ShareCode{}, domain.NotFoundError{Resource: "share code"}
	}
	if err != nil {
		return models.ShareCode{}, fmt.Errorf("redis get share code: %w", err)
	}
	var sc models.ShareCode
	if err := json.Unmarshal(raw, &sc); err != nil {
		return models.ShareCode{}, fmt.Errorf("decode share code: %w", err)
	}
	return sc, nil
}

// SQLShareStore is used when Redis is not configured.
type SQLShareStore struct {
	DB *sql.DB
}

func (s SQLShareStore) db() *sql.DB {
	return pickDB(s.DB)
}

func (s SQLShareStore) Save(ctx context.Context, sc models.ShareCode) error {
	_, err := s.db().ExecContext(ctx, `
		INSERT INTO trip_share_codes (code, trip_id, expires_at) VALUES (?, ?, ?)
	`, sc.Code, sc.TripID, sc.ExpiresAt.UTC())
	return mapWriteErr(err, "share code", "share code already exists")
}

func (s SQLShareStore) Lookup(ctx context.Context, code string) (models.ShareCode, error) {
	var sc models.ShareCode
	err := s.db().QueryRowContext(ctx, `
		SELECT code, trip_id, expires_at FROM trip_share_codes WHERE code = ? LIMIT 1
	`, code).Scan(&sc.Code, &sc.TripID, &sc.ExpiresAt)
	if err != nil {
		return models.ShareCode{}, mapRowErr(err, "share code")
	}
	sc.ExpiresAt = sc.ExpiresAt.UTC()
	return sc, nil
}

// PurgeExpired drops codes past their grace window.
func (s SQLShareStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db().ExecContext(ctx, `DELETE FROM trip_share_codes WHERE expires_at < ?`, now.Add(-ShareGrace).UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
