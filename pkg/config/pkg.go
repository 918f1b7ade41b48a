package config

import (
	"os"

	"github.com/apex/log"
)

var configer Configer = &DotenvConfig{}

func SetConfig(c Configer) {
	configer = c
}

func GetConfig() Configer {
	return configer
}

// MustLoadFromMCDotenv loads the dotenv file named by MC_DOTENV_PATH and
// returns the process Configer. When MC_DOTENV_PATH is unset only the
// existing environment is used.
func MustLoadFromMCDotenv() Configer {
	dotenvPath := os.Getenv("MC_DOTENV_PATH")
	c := NewDotenvConfig(dotenvPath)
	if err := c.Load(); err != nil {
		log.Fatalf("Failed loading configuration file '%s': %s", dotenvPath, err)
	}

	SetConfig(c)
	return c
}

func LoadFromPath(path string) error {
	return configer.LoadFromPath(path)
}

func Load() error {
	return configer.Load()
}

func GetKey(key string) string {
	return configer.GetKey(key)
}

func MustGetKey(key string) string {
	return configer.MustGetKey(key)
}

func GetKeyWithDefault(key, defaultValue string) string {
	return configer.GetKeyWithDefault(key, defaultValue)
}

func GetIntKey(key string) int {
	return configer.GetIntKey(key)
}

func MustGetIntKey(key string) int {
	return configer.MustGetIntKey(key)
}

func GetIntKeyWithDefault(key string, defaultValue int) int {
	return configer.GetIntKeyWithDefault(key, defaultValue)
}

func GetInt64KeyWithDefault(key string, defaultValue int64) int64 {
	return configer.GetInt64KeyWithDefault(key, defaultValue)
}

func GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return configer.GetBoolKeyWithDefault(key, defaultValue)
}

func GetPathKeyWithDefault(key, defaultValue string) string {
	return configer.GetPathKeyWithDefault(key, defaultValue)
}
