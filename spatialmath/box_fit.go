package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const (
	// powerIterations caps the number of multiply-and-renormalize steps when extracting an eigenvector.
	powerIterations = 50
	// powerIterationMinNorm stops iterating once the matrix maps the estimate to (almost) nothing.
	powerIterationMinNorm = 1e-6
	// parallelAxesEpsilon is the squared cross product length under which two principal axes are parallel.
	parallelAxesEpsilon = 1e-6
	// nearlyXAxis is the |dot| with world X above which a fallback axis is crossed with world Y instead.
	nearlyXAxis = 0.9
)

// NewOBBFromPoints fits an oriented bounding box to a point cloud using principal component analysis.
// The principal axes come from power iteration on the covariance matrix, with deflation for the second axis.
// Empty input yields a box with zero center, zero extents and identity axes.
//
// Power iteration is an approximation: point clouds with nearly equal top eigenvalues (cubes, spheres)
// get a valid but not necessarily tight box.
func NewOBBFromPoints(points []r3.Vector) *OBB {
	if len(points) == 0 {
		return &OBB{Axes: identityAxes()}
	}

	centroid := r3.Vector{}
	for _, pt := range points {
		centroid = centroid.Add(pt)
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	cov := covariance(points, centroid)

	e1 := powerIteration(cov)
	e1Vec := mat.NewVecDense(3, []float64{e1.X, e1.Y, e1.Z})
	lambda1 := mat.Inner(e1Vec, cov, e1Vec)

	deflated := mat.NewSymDense(3, nil)
	deflated.SymRankOne(cov, -lambda1, e1Vec)
	e2 := powerIteration(deflated)

	if e1.Cross(e2).Norm2() < parallelAxesEpsilon {
		e2 = orthogonalTo(e1)
	}

	e3 := e1.Cross(e2).Normalize()
	e2 = e3.Cross(e1).Normalize()
	axes := [3]r3.Vector{e1, e2, e3}

	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, pt := range points {
		d := pt.Sub(centroid)
		local := r3.Vector{X: d.Dot(e1), Y: d.Dot(e2), Z: d.Dot(e3)}
		lo = r3.Vector{X: math.Min(lo.X, local.X), Y: math.Min(lo.Y, local.Y), Z: math.Min(lo.Z, local.Z)}
		hi = r3.Vector{X: math.Max(hi.X, local.X), Y: math.Max(hi.Y, local.Y), Z: math.Max(hi.Z, local.Z)}
	}

	mid := lo.Add(hi).Mul(0.5)
	center := centroid.Add(e1.Mul(mid.X)).Add(e2.Mul(mid.Y)).Add(e3.Mul(mid.Z))

	return &OBB{
		Center:  center,
		Extents: hi.Sub(lo).Mul(0.5),
		Axes:    axes,
	}
}

// covariance returns the 3x3 covariance matrix of points about centroid, normalized by the point count.
func covariance(points []r3.Vector, centroid r3.Vector) *mat.SymDense {
	cov := mat.NewSymDense(3, nil)
	d := mat.NewVecDense(3, nil)
	weight := 1 / float64(len(points))
	for _, pt := range points {
		c := pt.Sub(centroid)
		d.SetVec(0, c.X)
		d.SetVec(1, c.Y)
		d.SetVec(2, c.Z)
		cov.SymRankOne(cov, weight, d)
	}
	return cov
}

// powerIteration estimates the dominant eigenvector of a symmetric 3x3 matrix, starting from the normalized
// all-ones vector. It stops after powerIterations steps, or early when the product collapses below
// powerIterationMinNorm, returning the last normalized estimate.
func powerIteration(m mat.Symmetric) r3.Vector {
	b := mat.NewVecDense(3, []float64{1, 1, 1})
	b.ScaleVec(1/mat.Norm(b, 2), b)
	next := mat.NewVecDense(3, nil)

	for i := 0; i < powerIterations; i++ {
		next.MulVec(m, b)
		norm := mat.Norm(next, 2)
		if norm < powerIterationMinNorm {
			break
		}
		b.ScaleVec(1/norm, next)
	}
	return r3.Vector{X: b.AtVec(0), Y: b.AtVec(1), Z: b.AtVec(2)}
}

// orthogonalTo returns a unit vector perpendicular to v.
func orthogonalTo(v r3.Vector) r3.Vector {
	ref := r3.Vector{X: 1}
	if math.Abs(v.Normalize().Dot(ref)) > nearlyXAxis {
		ref = r3.Vector{Y: 1}
	}
	return v.Cross(ref).Normalize()
}
