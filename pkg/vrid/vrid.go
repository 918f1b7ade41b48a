// Package vrid encodes a filesystem location under a mapping root into an
// opaque resource identifier and back.
//
// An identifier is the tag "wtlocal:" followed by the standard base64
// encoding of "<path>|<rootID>". Root ids never contain the separator, so
// decoding splits on the last one and paths may contain '|'.
package vrid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const (
	Tag       = "wtlocal:"
	separator = "|"
)

var ErrMalformed = errors.New("malformed virtual resource identifier")

// Encode builds the identifier for absPath under the mapping root rootID.
// The path is cleaned and converted to slash form first so equal paths
// always produce equal identifiers.
func Encode(absPath, rootID string) string {
	p := path.Clean(filepath.ToSlash(absPath))
	return Tag + base64.StdEncoding.EncodeToString([]byte(p+separator+rootID))
}

// Decode returns the path and root id stored in id.
func Decode(id string) (absPath, rootID string, err error) {
	if !IsVirtual(id) {
		return "", "", fmt.Errorf("%w: missing %q tag", ErrMalformed, Tag)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(id, Tag))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	s := string(raw)
	i := strings.LastIndex(s, separator)
	if i < 0 {
		return "", "", fmt.Errorf("%w: missing separator", ErrMalformed)
	}

	absPath, rootID = s[:i], s[i+1:]
	if absPath == "" || rootID == "" {
		return "", "", fmt.Errorf("%w: empty path or root", ErrMalformed)
	}

	return filepath.FromSlash(absPath), rootID, nil
}

// IsVirtual is a prefix check only; it does not validate the payload.
func IsVirtual(id string) bool {
	return strings.HasPrefix(id, Tag)
}
