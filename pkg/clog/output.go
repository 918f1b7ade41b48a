package clog

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// OpenOutput maps a logging destination name to a writer. "stdout" and
// "stderr" map to the process streams, anything else is a file path that
// is created (or truncated).
func OpenOutput(name string) (io.WriteCloser, error) {
	switch name {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.Create(name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open log output %s", name)
		}
		return f, nil
	}
}

// Setup installs a Handler writing to output as the apex default handler
// and sets the level. It returns the installed handler so callers can
// later swap its output.
func Setup(output, level string) (*Handler, error) {
	w, err := OpenOutput(output)
	if err != nil {
		return nil, err
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %s", level)
	}

	h := NewHandler(w)
	log.SetHandler(h)
	log.SetLevel(lvl)

	return h, nil
}
