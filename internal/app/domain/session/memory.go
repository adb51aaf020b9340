package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo keeps session records in process memory. Used in development
// and tests where a Postgres instance is not available.
type MemoryRepo struct {
	c *gocache.Cache
}

func NewMemoryRepo(ttl time.Duration) *MemoryRepo {
	return &MemoryRepo{c: gocache.New(ttl, 2*ttl)}
}

func (r *MemoryRepo) Get(_ context.Context, sid string) (*models.SessionRecord, error) {
	v, ok := r.c.Get(sid)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sid, models.ErrNotFound)
	}
	rec := v.(*models.SessionRecord)
	if time.Now().After(rec.ExpiresAt) {
		r.c.Delete(sid)
		return nil, fmt.Errorf("session %s expired: %w", sid, models.ErrNotFound)
	}
	return rec, nil
}

func (r *MemoryRepo) Save(_ context.Context, rec *models.SessionRecord) error {
	r.c.Set(rec.ID, rec, time.Until(rec.ExpiresAt))
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, sid string) error {
	r.c.Delete(sid)
	return nil
}

func (r *MemoryRepo) DeleteExpired(_ context.Context) (int64, error) {
	// go-cache expires entries itself; nothing to sweep.
	return 0, nil
}
