package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// floatEpsilon is the tolerance used for lengths that are considered zero.
const floatEpsilon = 1e-9

// ErrZeroDirection is returned when a ray is built from a zero length direction.
var ErrZeroDirection = errors.New("ray direction must be non-zero")

func newBadExtentsError(extents r3.Vector) error {
	return errors.Errorf("invalid box extents %v, extents must be non-negative", extents)
}
