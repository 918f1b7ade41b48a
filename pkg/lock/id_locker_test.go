package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLockSerializesSameID(t *testing.T) {
	l := NewIdLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock("upload-1", func() error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)

	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()
	assert.Len(t, l.idMap, 0)
}
