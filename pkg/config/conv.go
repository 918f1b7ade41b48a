package config

import (
	"strconv"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
)

// The helpers below implement the typed getters once for every Configer
// that can produce a raw string for a key.

func mustString(key, val string) string {
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func stringOr(val, defaultValue string) string {
	if val == "" {
		return defaultValue
	}

	return val
}

func intOr(val string, defaultValue int) int {
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func mustInt(key, val string) int {
	intVal, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("Required config key either doesn't exist or isn't an int: '%s': %s", key, err)
	}

	return intVal
}

func int64Or(val string, defaultValue int64) int64 {
	intVal, err := strconv.ParseInt(val, 0, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func boolOr(val string, defaultValue bool) bool {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}

	return b
}

// pathOr expands a leading ~ so paths in the dotenv file can be written
// relative to the home directory of the user running the server.
func pathOr(val, defaultValue string) string {
	p := stringOr(val, defaultValue)
	if p == "" {
		return ""
	}

	expanded, err := homedir.Expand(p)
	if err != nil {
		log.Warnf("Unable to expand path '%s': %s", p, err)
		return p
	}

	return expanded
}
