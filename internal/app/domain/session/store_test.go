package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore("", "")
	assert.Empty(t, store.GetAccessToken())

	store.SetTokens("access-1", "refresh-1")
	assert.Equal(t, "access-1", store.GetAccessToken())
	assert.Equal(t, "refresh-1", store.GetRefreshToken())

	// Overwrite semantics
	store.SetTokens("access-2", "refresh-2")
	assert.Equal(t, "access-2", store.GetAccessToken())
	assert.Equal(t, "refresh-2", store.GetRefreshToken())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := NewStore("access", "refresh")

	store.ClearTokens()
	assert.Empty(t, store.GetAccessToken())
	assert.Empty(t, store.GetRefreshToken())

	// Second clear has the same observable effect as the first.
	store.ClearTokens()
	assert.Empty(t, store.GetAccessToken())
	assert.Empty(t, store.GetRefreshToken())
}

func TestStore_AuthorizedHeaders(t *testing.T) {
	t.Run("empty map when anonymous", func(t *testing.T) {
		store := NewStore("", "")
		headers := store.AuthorizedHeaders()
		assert.NotNil(t, headers)
		_, present := headers["Authorization"]
		assert.False(t, present, "anonymous store must not emit an Authorization key")
	})

	t.Run("bearer header when a token is stored", func(t *testing.T) {
		store := NewStore("tok-123", "")
		assert.Equal(t, map[string]string{"Authorization": "Bearer tok-123"}, store.AuthorizedHeaders())
	})

	t.Run("no header again after clear", func(t *testing.T) {
		store := NewStore("tok-123", "refresh")
		store.ClearTokens()
		assert.Empty(t, store.AuthorizedHeaders())
	})
}
