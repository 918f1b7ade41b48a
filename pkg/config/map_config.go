package config

import (
	"fmt"
	"sync"
)

// MapConfig is a Configer over a fixed set of entries. It is used by tests
// and by commands that build their configuration from flags.
type MapConfig struct {
	configValues sync.Map
}

func NewMapConfig(entries map[string]string) *MapConfig {
	c := &MapConfig{}

	for key, entry := range entries {
		c.configValues.Store(key, entry)
	}

	return c
}

// Set adds or replaces an entry.
func (c *MapConfig) Set(key, value string) {
	c.configValues.Store(key, value)
}

func (c *MapConfig) LoadFromPath(_ string) error {
	return fmt.Errorf("LoadFromPath not supported for MapConfig")
}

func (c *MapConfig) Load() error {
	return nil
}

func (c *MapConfig) GetKey(key string) string {
	v, ok := c.configValues.Load(key)
	if !ok || v == nil {
		return ""
	}

	return v.(string)
}

func (c *MapConfig) MustGetKey(key string) string {
	return mustString(key, c.GetKey(key))
}

func (c *MapConfig) GetKeyWithDefault(key, defaultValue string) string {
	return stringOr(c.GetKey(key), defaultValue)
}

func (c *MapConfig) GetIntKey(key string) int {
	return intOr(c.GetKey(key), 0)
}

func (c *MapConfig) MustGetIntKey(key string) int {
	return mustInt(key, c.GetKey(key))
}

func (c *MapConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return intOr(c.GetKey(key), defaultValue)
}

func (c *MapConfig) GetInt64KeyWithDefault(key string, defaultValue int64) int64 {
	return int64Or(c.GetKey(key), defaultValue)
}

func (c *MapConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return boolOr(c.GetKey(key), defaultValue)
}

func (c *MapConfig) GetPathKeyWithDefault(key, defaultValue string) string {
	return pathOr(c.GetKey(key), defaultValue)
}
