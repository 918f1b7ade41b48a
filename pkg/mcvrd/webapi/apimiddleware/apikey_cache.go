package apimiddleware

import (
	"sync"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
)

// APIKeyCache remembers the user behind each API token it has looked up.
type APIKeyCache struct {
	mu       sync.RWMutex
	cache    map[string]*mcmodel.User
	userStor stor.UserStor
}

func NewAPIKeyCache(userStor stor.UserStor) *APIKeyCache {
	return &APIKeyCache{
		cache:    make(map[string]*mcmodel.User),
		userStor: userStor,
	}
}

func (c *APIKeyCache) GetUserByAPIKey(apikey string) (*mcmodel.User, error) {
	c.mu.RLock()
	if user, ok := c.cache[apikey]; ok {
		c.mu.RUnlock()
		return user, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have filled the entry while we waited.
	if user, ok := c.cache[apikey]; ok {
		return user, nil
	}

	user, err := c.userStor.GetUserByAPIToken(apikey)
	if err != nil {
		return nil, err
	}

	c.cache[apikey] = user
	return user, nil
}

func (c *APIKeyCache) DeleteUserByAPIKey(apikey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, apikey)
}
