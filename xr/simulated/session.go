// Package simulated implements a headless xr.Session that paces frames with a clock and replays scripted
// pointer tracks. It stands in for a real runtime in tests and in the xrsim command.
package simulated

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/xr"
)

// DefaultRate is the frame rate used when none is configured.
const DefaultRate = 72.0

// Config configures a simulated session.
type Config struct {
	// Rate is the frame rate in Hz.
	Rate float64 `json:"rate"`
	// Frames is the number of frames after which the session asks to exit. Zero runs until closed.
	Frames uint64  `json:"frames"`
	Tracks []Track `json:"tracks"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Rate < 0 {
		return errors.Errorf("%s.rate: must be non-negative, got %v", path, cfg.Rate)
	}
	seen := map[string]bool{}
	for i := range cfg.Tracks {
		trackPath := path + ".tracks." + cfg.Tracks[i].ID
		if cfg.Tracks[i].ID == "" {
			return errors.Errorf("%s.tracks.%d.id: must not be empty", path, i)
		}
		if seen[cfg.Tracks[i].ID] {
			return errors.Errorf("%s: duplicate track id", trackPath)
		}
		seen[cfg.Tracks[i].ID] = true
		if err := cfg.Tracks[i].validate(trackPath); err != nil {
			return err
		}
	}
	return nil
}

// Session is a simulated xr.Session.
type Session struct {
	id     string
	logger logging.Logger
	clock  clock.Clock
	period time.Duration
	frames uint64
	tracks []Track

	mu     sync.Mutex
	ticker *clock.Ticker
	index  uint64
	closed bool
}

// NewSession returns a session ticking on clk at cfg.Rate.
func NewSession(cfg Config, clk clock.Clock, logger logging.Logger) (*Session, error) {
	if err := cfg.Validate("simulation"); err != nil {
		return nil, err
	}
	rate := cfg.Rate
	if rate == 0 {
		rate = DefaultRate
	}
	if clk == nil {
		clk = clock.New()
	}
	period := time.Duration(float64(time.Second) / rate)
	s := &Session{
		id:     uuid.NewString(),
		logger: logger,
		clock:  clk,
		period: period,
		frames: cfg.Frames,
		tracks: cfg.Tracks,
		ticker: clk.Ticker(period),
	}
	logger.Infow("simulated session started", "session", s.id, "rate", rate, "frames", cfg.Frames, "tracks", len(cfg.Tracks))
	return s, nil
}

// ID returns the generated identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Period returns the time between frames.
func (s *Session) Period() time.Duration {
	return s.period
}

// WaitFrame blocks until the next tick of the clock or until ctx is done. Once the configured number of
// frames has been produced it returns immediately with ShouldExit set.
func (s *Session) WaitFrame(ctx context.Context) (*xr.FrameState, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, xr.ErrSessionClosed
	}
	index := s.index
	ticker := s.ticker
	s.mu.Unlock()

	if s.frames > 0 && index >= s.frames {
		return &xr.FrameState{Index: index, PredictedDisplayTime: s.clock.Now(), ShouldExit: true}, nil
	}

	var tick time.Time
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tick = <-ticker.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, xr.ErrSessionClosed
	}
	s.index++
	state := &xr.FrameState{
		Index:                index,
		PredictedDisplayTime: tick.Add(s.period),
		Pointers:             make([]xr.PointerState, 0, len(s.tracks)),
	}
	for i := range s.tracks {
		state.Pointers = append(state.Pointers, s.tracks[i].stateAt(index))
	}
	return state, nil
}

// Close stops the clock ticker. WaitFrame fails with xr.ErrSessionClosed afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.ticker.Stop()
	s.logger.Infow("simulated session closed", "session", s.id, "frames", s.index)
	return nil
}
