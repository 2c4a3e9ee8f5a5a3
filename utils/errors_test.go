package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewUnknownKindError(t *testing.T) {
	err := NewUnknownKindError("payload type", "sphere")
	test.That(t, err.Error(), test.ShouldEqual, `unknown payload type "sphere"`)
}

func TestUncheckedErrorFunc(t *testing.T) {
	called := false
	UncheckedErrorFunc(func() error {
		called = true
		return errors.New("ignored")
	})
	test.That(t, called, test.ShouldBeTrue)
}

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("nodes.2", "name")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "nodes.2": "name" is required`)

	inner := errors.New("bad dims")
	err = NewConfigValidationError("nodes.0.payload", inner)
	test.That(t, errors.Is(err, inner), test.ShouldBeTrue)
}
