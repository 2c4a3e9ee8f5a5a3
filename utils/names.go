package utils

import (
	"regexp"

	"github.com/pkg/errors"
)

// ValidNameRegex matches a valid node name. A name begins with a letter or number and is at most 60 letters,
// numbers, dashes, dots and underscores.
var ValidNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([-.\w]){0,59}$`)

// ErrInvalidName returns a human-readable error for when ValidNameRegex doesn't match.
func ErrInvalidName(name string) error {
	if len(name) > 60 {
		return errors.Errorf("name %q must be 60 characters or fewer", name)
	}
	return errors.Errorf(
		"name %q must start with a letter or number and must only contain letters, numbers, dashes, dots, and underscores", name)
}
