package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
)

// catalogRepository reads the reference tables. Name lookups are cached
// with a short TTL; catalogs change rarely and patient state is never
// cached here.
type catalogRepository struct {
	db    *sqlx.DB
	cache *gocache.Cache
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *catalogRepository) ServiceExists(ctx context.Context, serviceID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`, serviceID)
	if err != nil {
		return false, fmt.Errorf("failed to check service: %w", err)
	}
	return exists, nil
}

func (r *catalogRepository) ServiceName(ctx context.Context, serviceID int64) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name,
		`SELECT name FROM services WHERE id = $1`, serviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get service name: %w", err)
	}
	return name, nil
}

func (r *catalogRepository) PaymentStatusIDByName(ctx context.Context, name string) (*int64, error) {
	return r.idByName(ctx, "payment_statuses", name)
}

func (r *catalogRepository) PaymentMethodIDByName(ctx context.Context, name string) (*int64, error) {
	return r.idByName(ctx, "payment_methods", name)
}

func (r *catalogRepository) idByName(ctx context.Context, table, name string) (*int64, error) {
	key := table + ":" + name
	if cached, ok := r.cache.Get(key); ok {
		id := cached.(int64)
		return &id, nil
	}

	// table is one of the two fixed catalog names above, never user input.
	var id int64
	err := r.db.GetContext(ctx, &id,
		fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 LIMIT 1`, table), name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up %s: %w", table, err)
	}

	r.cache.Set(key, id, gocache.DefaultExpiration)
	return &id, nil
}
