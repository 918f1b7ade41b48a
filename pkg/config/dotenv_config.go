package config

import (
	"os"

	"github.com/subosito/gotenv"
)

// DotenvConfig loads a dotenv file into the process environment and then
// answers lookups from the environment. Variables already set in the
// environment win over the file.
type DotenvConfig struct {
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{DotenvPath: path}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return c.Load()
}

func (c *DotenvConfig) Load() error {
	if c.DotenvPath == "" {
		return nil
	}

	return gotenv.Load(c.DotenvPath)
}

func (c *DotenvConfig) GetKey(key string) string {
	return os.Getenv(key)
}

func (c *DotenvConfig) MustGetKey(key string) string {
	return mustString(key, c.GetKey(key))
}

func (c *DotenvConfig) GetKeyWithDefault(key, defaultValue string) string {
	return stringOr(c.GetKey(key), defaultValue)
}

func (c *DotenvConfig) GetIntKey(key string) int {
	return intOr(c.GetKey(key), 0)
}

func (c *DotenvConfig) MustGetIntKey(key string) int {
	return mustInt(key, c.GetKey(key))
}

func (c *DotenvConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return intOr(c.GetKey(key), defaultValue)
}

func (c *DotenvConfig) GetInt64KeyWithDefault(key string, defaultValue int64) int64 {
	return int64Or(c.GetKey(key), defaultValue)
}

func (c *DotenvConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return boolOr(c.GetKey(key), defaultValue)
}

func (c *DotenvConfig) GetPathKeyWithDefault(key, defaultValue string) string {
	return pathOr(c.GetKey(key), defaultValue)
}
