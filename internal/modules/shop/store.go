// README: Shop location lookup backed by PostgreSQL with a Redis read-through cache.
package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/geo"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

const locationTTL = 10 * time.Minute

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
	log   *slog.Logger
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client, log *slog.Logger) *Store {
	return &Store{db: db, redis: rdb, log: log}
}

type cachedLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Locations resolves stored coordinates for the given shops. Shops that
// do not exist are simply absent from the result; coordinate validity is
// the caller's concern. Cache failures degrade to DB reads.
func (s *Store) Locations(ctx context.Context, ids []types.ID) (map[types.ID]geo.Coordinate, error) {
	out := make(map[types.ID]geo.Coordinate, len(ids))

	misses := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		loc, ok := s.fromCache(ctx, id)
		if !ok {
			misses = append(misses, id)
			continue
		}
		out[id] = loc
	}
	if len(misses) == 0 {
		return out, nil
	}

	keys := make([]string, len(misses))
	for i, id := range misses {
		keys[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `SELECT id, lat, lng FROM shops WHERE id = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("query shop locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id types.ID
		var lat, lng float64
		if err := rows.Scan(&id, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan shop location: %w", err)
		}
		loc := geo.Coordinate{Lat: lat, Lng: lng}
		out[id] = loc
		s.toCache(ctx, id, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shop locations: %w", err)
	}
	return out, nil
}

func (s *Store) fromCache(ctx context.Context, id types.ID) (geo.Coordinate, bool) {
	if s.redis == nil {
		return geo.Coordinate{}, false
	}
	data, err := s.redis.Get(ctx, locationKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("shop location cache read failed", "shop_id", id, "err", err)
		}
		return geo.Coordinate{}, false
	}
	var c cachedLocation
	if err := json.Unmarshal(data, &c); err != nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: c.Lat, Lng: c.Lng}, true
}

func (s *Store) toCache(ctx context.Context, id types.ID, loc geo.Coordinate) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(cachedLocation{Lat: loc.Lat, Lng: loc.Lng})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, locationKey(id), data, locationTTL).Err(); err != nil {
		s.log.Warn("shop location cache write failed", "shop_id", id, "err", err)
	}
}

func locationKey(id types.ID) string {
	return "shop:loc:" + string(id)
}
