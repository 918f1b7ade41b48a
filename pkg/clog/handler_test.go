package clog

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func TestHandlerSortsFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(nopCloser{&buf})
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"root": "r1", "op": "mkdir"}).Info("created")

	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	line := buf.String()
	assert.Contains(t, line, " INFO 2024-01-02 03:04:05 created")
	assert.Contains(t, line, " op=mkdir root=r1")
}

func TestOpenOutputStd(t *testing.T) {
	w, err := OpenOutput("stderr")
	require.NoError(t, err)
	assert.NotNil(t, w)

	_, err = OpenOutput("/nonexistent-dir/x/y.log")
	assert.Error(t, err)
}
