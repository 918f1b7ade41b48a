package stor

import "github.com/hashicorp/go-uuid"

// newID generates the opaque id used for every record.
func newID() (string, error) {
	return uuid.GenerateUUID()
}
