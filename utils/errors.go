package utils

import (
	"github.com/pkg/errors"
)

// NewUnknownKindError is used when a configured kind or type name is not recognized.
func NewUnknownKindError(what, kind string) error {
	return errors.Errorf("unknown %s %q", what, kind)
}

// UncheckedError is used in places where an error is impossible by construction, such as mutating a node
// handle that was just returned by the scene.
func UncheckedError(err error) {
	_ = err
}

// UncheckedErrorFunc is used in places where the error of a deferred call does not matter.
func UncheckedErrorFunc(f func() error) {
	UncheckedError(f())
}

// NewConfigValidationError returns an error specifying that there was an error validating the section of a
// config at path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError returns an error specifying that a field is missing from the config
// section at path.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}
