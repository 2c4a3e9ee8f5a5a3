package utils

import (
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestValidNameRegex(t *testing.T) {
	for _, name := range []string{"table", "cup-1", "left_hand", "rig.head", "0"} {
		test.That(t, ValidNameRegex.MatchString(name), test.ShouldBeTrue)
	}
	for _, name := range []string{"", "-table", "has space", "a/b", strings.Repeat("a", 61)} {
		test.That(t, ValidNameRegex.MatchString(name), test.ShouldBeFalse)
	}
	test.That(t, ErrInvalidName(strings.Repeat("a", 61)).Error(), test.ShouldContainSubstring, "60 characters")
	test.That(t, ErrInvalidName("a b").Error(), test.ShouldContainSubstring, "must start with a letter")
}
