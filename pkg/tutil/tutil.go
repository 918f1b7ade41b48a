package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest is true when MC_TEST=integration. Tests that need a
// running MySQL server check it and skip otherwise.
func IsIntegrationTest() bool {
	testType := os.Getenv("MC_TEST")
	return strings.ToLower(testType) == "integration"
}

// MySQLDSN returns the DSN integration tests connect with.
func MySQLDSN() string {
	if dsn := os.Getenv("MC_TEST_MYSQL_DSN"); dsn != "" {
		return dsn
	}

	return "mc:mc@tcp(127.0.0.1:3306)/mcvr_test?charset=utf8mb4&parseTime=True&loc=Local"
}
