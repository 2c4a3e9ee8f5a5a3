package simulated

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"
	"go.viam.com/test"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/xr"
)

func TestSessionFramePacing(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mock := clock.NewMock()
	s, err := NewSession(Config{Rate: 10, Frames: 2}, mock, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Period(), test.ShouldEqual, 100*time.Millisecond)
	test.That(t, s.ID(), test.ShouldNotBeEmpty)

	start := mock.Now()
	mock.Add(s.Period())
	frame, err := s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Index, test.ShouldEqual, uint64(0))
	test.That(t, frame.ShouldExit, test.ShouldBeFalse)
	test.That(t, frame.PredictedDisplayTime, test.ShouldResemble, start.Add(200*time.Millisecond))

	mock.Add(s.Period())
	frame, err = s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Index, test.ShouldEqual, uint64(1))

	frame, err = s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.ShouldExit, test.ShouldBeTrue)

	test.That(t, s.Close(), test.ShouldBeNil)
	test.That(t, s.Close(), test.ShouldBeNil)
	_, err = s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeError, xr.ErrSessionClosed)
}

func TestSessionWaitCancelled(t *testing.T) {
	s, err := NewSession(Config{}, clock.NewMock(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.WaitFrame(ctx)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Rate: -1}
	err := cfg.Validate("simulation")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "simulation.rate")

	cfg = Config{Tracks: []Track{{ID: "left", Kind: "tentacle", Keyframes: []Keyframe{{}}}}}
	err = cfg.Validate("simulation")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "simulation.tracks.left.kind")

	cfg = Config{Tracks: []Track{{ID: "left"}}}
	err = cfg.Validate("simulation")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "keyframes")

	cfg = Config{Tracks: []Track{{ID: "a", Keyframes: []Keyframe{{}}}, {ID: "a", Keyframes: []Keyframe{{}}}}}
	err = cfg.Validate("simulation")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")

	cfg = Config{Tracks: []Track{{Keyframes: []Keyframe{{}}}}}
	err = cfg.Validate("simulation")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "simulation.tracks.0.id")
}

func TestTrackInterpolation(t *testing.T) {
	track := Track{
		ID:   "right",
		Kind: "hand",
		Keyframes: []Keyframe{
			{Frame: 10, Position: mgl64.Vec3{2, 0, 0}, RotationAxis: mgl64.Vec3{0, 1, 0}, RotationDegrees: 90},
			{Frame: 2, Position: mgl64.Vec3{0, 0, 0}, Grabbing: true},
			{Frame: 20, Lost: true},
		},
	}
	test.That(t, track.validate("t"), test.ShouldBeNil)
	test.That(t, track.Keyframes[0].Frame, test.ShouldEqual, uint64(2))

	state := track.stateAt(0)
	test.That(t, state.Valid, test.ShouldBeFalse)
	test.That(t, state.ID, test.ShouldEqual, "right")

	state = track.stateAt(2)
	test.That(t, state.Valid, test.ShouldBeTrue)
	test.That(t, state.Kind, test.ShouldEqual, xr.Hand)
	test.That(t, state.Grabbing, test.ShouldBeTrue)
	test.That(t, state.AimDirection.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9), test.ShouldBeTrue)

	state = track.stateAt(6)
	test.That(t, state.Pose.Position[0], test.ShouldAlmostEqual, 1)
	test.That(t, state.Grabbing, test.ShouldBeTrue)
	angle := 2 * math.Acos(math.Min(1, math.Abs(state.Pose.Orientation.W)))
	test.That(t, angle, test.ShouldAlmostEqual, math.Pi/4, 1e-9)

	state = track.stateAt(10)
	test.That(t, state.Grabbing, test.ShouldBeFalse)
	test.That(t, state.AimDirection.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-9), test.ShouldBeTrue)
	test.That(t, state.Palm, test.ShouldResemble, state.Pose)
	test.That(t, state.ThumbTip.Position.Sub(state.Pose.Position).Len(), test.ShouldAlmostEqual, thumbTipOffset.Len())

	state = track.stateAt(25)
	test.That(t, state.Valid, test.ShouldBeFalse)

	ray, err := track.stateAt(10).AimRay()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ray.Direction.X, test.ShouldAlmostEqual, -1)
}

func TestSessionReplaysTracks(t *testing.T) {
	mock := clock.NewMock()
	cfg := Config{
		Rate: 50,
		Tracks: []Track{
			{ID: "left", Keyframes: []Keyframe{{Frame: 0, Position: mgl64.Vec3{1, 2, 3}, Teleport: true}}},
			{ID: "right", Kind: "hand", Keyframes: []Keyframe{{Frame: 1}}},
		},
	}
	s, err := NewSession(cfg, mock, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer s.Close()

	mock.Add(s.Period())
	frame, err := s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Pointers, test.ShouldHaveLength, 2)
	test.That(t, frame.Pointers[0].Valid, test.ShouldBeTrue)
	test.That(t, frame.Pointers[0].Kind, test.ShouldEqual, xr.Controller)
	test.That(t, frame.Pointers[0].TeleportRequested, test.ShouldBeTrue)
	test.That(t, frame.Pointers[0].AimOrigin, test.ShouldResemble, mgl64.Vec3{1, 2, 3})
	test.That(t, frame.Pointers[1].Valid, test.ShouldBeFalse)

	mock.Add(s.Period())
	frame, err = s.WaitFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Pointers[1].Valid, test.ShouldBeTrue)
}
