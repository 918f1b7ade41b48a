package config

import (
	"os"
	"strconv"
	"sync"
)

const minTxRetry = 3

var (
	txRetry     int
	txRetryOnce sync.Once
)

// GetTxRetry is the number of attempts a transaction gets. It reads
// MC_TX_RETRY once and never goes below minTxRetry.
func GetTxRetry() int {
	txRetryOnce.Do(func() {
		count, err := strconv.ParseInt(os.Getenv("MC_TX_RETRY"), 10, 32)
		if err != nil || count < minTxRetry {
			count = minTxRetry
		}

		txRetry = int(count)
	})

	return txRetry
}
