package config

// Configer is the read side of the process configuration. Values come from
// the environment after a dotenv file has been loaded, or from a map in tests.
type Configer interface {
	LoadFromPath(path string) error
	Load() error
	GetKey(key string) string
	MustGetKey(key string) string
	GetKeyWithDefault(key, defaultValue string) string
	GetIntKey(key string) int
	MustGetIntKey(key string) int
	GetIntKeyWithDefault(key string, defaultValue int) int
	GetInt64KeyWithDefault(key string, defaultValue int64) int64
	GetBoolKeyWithDefault(key string, defaultValue bool) bool
	GetPathKeyWithDefault(key, defaultValue string) string
}
