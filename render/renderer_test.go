package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/spatialmath"
)

type opaquePayload struct{}

func (opaquePayload) ObjectSpaceOBB() *spatialmath.OBB { return nil }

func (opaquePayload) SetWorldTransform(mgl64.Mat4) {}

func buildScene(t *testing.T) (*scenegraph.Scene, map[string]scenegraph.NodeID) {
	t.Helper()
	s := scenegraph.NewScene("test", logging.NewTestLogger(t))
	ids := map[string]scenegraph.NodeID{}

	table, err := NewBoxMesh("table", mgl64.Vec3{1, 0.05, 0.5})
	test.That(t, err, test.ShouldBeNil)
	cup, err := NewBoxMesh("cup", mgl64.Vec3{0.05, 0.05, 0.05})
	test.That(t, err, test.ShouldBeNil)
	sign, err := NewText("sign", "hello", 0.4, 0.1)
	test.That(t, err, test.ShouldBeNil)

	add := func(name string, parent scenegraph.NodeID, payload scenegraph.Payload) scenegraph.NodeID {
		id, err := s.NewNode(name, parent, payload)
		test.That(t, err, test.ShouldBeNil)
		ids[name] = id
		return id
	}
	root := add("root", scenegraph.NoNode, nil)
	tableNode := add("table", root, table)
	add("cup-a", tableNode, cup)
	add("cup-b", tableNode, cup)
	add("marker", root, opaquePayload{})
	add("sign", root, sign)
	add("laser", scenegraph.NoNode, NewLine("laser", [][2]mgl64.Vec3{{{0, 0, 0}, {0, 0, -1}}}))

	test.That(t, s.SetPosition(tableNode, mgl64.Vec3{0, 0.8, -1}), test.ShouldBeNil)
	test.That(t, s.SetPosition(ids["cup-a"], mgl64.Vec3{0.2, 0.1, 0}), test.ShouldBeNil)
	test.That(t, s.SetPosition(ids["cup-b"], mgl64.Vec3{-0.2, 0.1, 0}), test.ShouldBeNil)
	s.UpdateTransformation()
	return s, ids
}

func TestTraverseOrder(t *testing.T) {
	s, ids := buildScene(t)
	var visited []scenegraph.NodeID
	err := Traverse(s, func(sub Submission) error {
		visited = append(visited, sub.Node)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldResemble, []scenegraph.NodeID{
		ids["table"], ids["cup-a"], ids["cup-b"], ids["sign"], ids["laser"],
	})

	test.That(t, s.SetActive(ids["table"], false), test.ShouldBeNil)
	visited = nil
	err = Traverse(s, func(sub Submission) error {
		visited = append(visited, sub.Node)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldResemble, []scenegraph.NodeID{ids["sign"], ids["laser"]})
}

func TestFrameSharedPayload(t *testing.T) {
	s, ids := buildScene(t)
	rec := &RecordingSubmitter{}
	r := NewRenderer(logging.NewTestLogger(t), false)

	stats, err := r.Frame(&Context{Frame: 3, Submitter: rec}, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Draws, test.ShouldEqual, 5)
	test.That(t, stats.DebugBoxes, test.ShouldEqual, 0)
	test.That(t, rec.Names(), test.ShouldResemble, []string{"table", "cup", "cup", "sign", "laser"})

	// the shared cup mesh is drawn once per node, each time with that node's transform
	worldA, err := s.WorldTransform(ids["cup-a"])
	test.That(t, err, test.ShouldBeNil)
	worldB, err := s.WorldTransform(ids["cup-b"])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rec.Commands[1].World, test.ShouldResemble, worldA)
	test.That(t, rec.Commands[2].World, test.ShouldResemble, worldB)
	test.That(t, rec.Commands[1].World.Col(3).X(), test.ShouldAlmostEqual, 0.2)
	test.That(t, rec.Commands[2].World.Col(3).X(), test.ShouldAlmostEqual, -0.2)

	test.That(t, rec.Commands[0].Kind, test.ShouldEqual, KindMesh)
	test.That(t, rec.Commands[0].IndexCount, test.ShouldEqual, 36)
	test.That(t, rec.Commands[3].Label, test.ShouldEqual, "hello")
	test.That(t, rec.Commands[4].Kind, test.ShouldEqual, KindLine)
	test.That(t, rec.Commands[4].VertexCount, test.ShouldEqual, 2)

	rec.Reset()
	test.That(t, rec.Commands, test.ShouldBeEmpty)
}

func TestFrameDebugBoxes(t *testing.T) {
	s, ids := buildScene(t)
	rec := &RecordingSubmitter{}
	r := NewRenderer(logging.NewTestLogger(t), false)
	r.SetDebug(true)

	stats, err := r.Frame(&Context{Submitter: rec}, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.DebugBoxes, test.ShouldEqual, 5)
	test.That(t, rec.DebugBoxes, test.ShouldHaveLength, 5)

	table := rec.DebugBoxes[0]
	test.That(t, table.Node, test.ShouldResemble, ids["table"])
	test.That(t, table.Indices, test.ShouldResemble, spatialmath.OBBEdgeIndices)
	lo, hi := table.Corners[0], table.Corners[0]
	for _, c := range table.Corners {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], c[i])
			hi[i] = math.Max(hi[i], c[i])
		}
	}
	test.That(t, lo.ApproxEqualThreshold(mgl64.Vec3{-1, 0.75, -1.5}, 1e-6), test.ShouldBeTrue)
	test.That(t, hi.ApproxEqualThreshold(mgl64.Vec3{1, 0.85, -0.5}, 1e-6), test.ShouldBeTrue)
}

func TestFrameErrorsAggregated(t *testing.T) {
	s, _ := buildScene(t)
	errCup := errors.New("out of buffers")
	rec := &RecordingSubmitter{Fail: func(cmd DrawCommand) error {
		if cmd.Name == "cup" {
			return errCup
		}
		return nil
	}}
	r := NewRenderer(logging.NewTestLogger(t), false)

	stats, err := r.Frame(&Context{Submitter: rec}, s)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 2)
	test.That(t, err.Error(), test.ShouldContainSubstring, `rendering mesh "cup"`)
	test.That(t, errors.Is(err, errCup), test.ShouldBeTrue)
	test.That(t, stats.Failed, test.ShouldEqual, 2)
	test.That(t, stats.Draws, test.ShouldEqual, 3)
	test.That(t, rec.Names(), test.ShouldResemble, []string{"table", "sign", "laser"})
}

func TestPayloadConstruction(t *testing.T) {
	_, err := NewMesh("bad", []mgl64.Vec3{{0, 0, 0}}, []uint32{0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "multiple of 3")

	_, err = NewMesh("bad", []mgl64.Vec3{{0, 0, 0}}, []uint32{0, 0, 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "out of range")

	_, err = NewBoxMesh("bad", mgl64.Vec3{1, -1, 1})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewText("bad", "x", -1, 1)
	test.That(t, err, test.ShouldNotBeNil)

	mesh, err := NewMesh("tri", []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}, []uint32{0, 1, 2})
	test.That(t, err, test.ShouldBeNil)
	box := mesh.ObjectSpaceOBB()
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}} {
		test.That(t, box.ContainsPoint(spatialmath.Vec3ToR3(p), 1e-6), test.ShouldBeTrue)
	}
	test.That(t, mesh.Kind().String(), test.ShouldEqual, "mesh")
	test.That(t, mesh.WorldTransform(), test.ShouldResemble, mgl64.Ident4())

	text, err := NewText("t", "a", 1, 0.5)
	test.That(t, err, test.ShouldBeNil)
	text.SetLabel("b")
	test.That(t, text.Label(), test.ShouldEqual, "b")
	test.That(t, text.ObjectSpaceOBB().Extents.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, text.ObjectSpaceOBB().Extents.Z, test.ShouldEqual, 0.)
	test.That(t, KindText.String(), test.ShouldEqual, "text")
	test.That(t, Kind(9).String(), test.ShouldEqual, "unknown")
}
