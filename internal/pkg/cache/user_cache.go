// Package cache holds the short-lived caches the request path leans on.
// The authenticated-user object is fetched once per page load and reused
// for the TTL; role changes upstream show up after at most one TTL.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type UserCache struct {
	logger *zap.Logger
	items  *gocache.Cache
}

func NewUserCache(ttl time.Duration, logger *zap.Logger) *UserCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{
		logger: logger,
		items:  gocache.New(ttl, 2*ttl),
	}
}

// Get returns the cached user for a session id, or nil on a miss.
func (c *UserCache) Get(sid string) *models.UserAccount {
	v, ok := c.items.Get(sid)
	if !ok {
		return nil
	}
	user, ok := v.(*models.UserAccount)
	if !ok {
		return nil
	}
	return user
}

func (c *UserCache) Set(sid string, user *models.UserAccount) {
	c.items.SetDefault(sid, user)
}

// Invalidate drops the cached user, e.g. on logout or a 401.
func (c *UserCache) Invalidate(sid string) {
	c.items.Delete(sid)
}
