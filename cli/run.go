package cli

import (
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"

	"go.hmdkit.dev/xrcore/app"
	"go.hmdkit.dev/xrcore/config"
	"go.hmdkit.dev/xrcore/interaction"
	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/render"
	"go.hmdkit.dev/xrcore/utils"
	"go.hmdkit.dev/xrcore/xr"
	"go.hmdkit.dev/xrcore/xr/simulated"
)

// RunAction runs the configured scene against a simulated session and prints what the frame loop did.
func RunAction(c *cli.Context) error {
	logger, closer, cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(closer.Close)
	defer utils.UncheckedErrorFunc(logger.Sync)

	if frames := c.Uint64(framesFlag); frames > 0 {
		cfg.Simulation.Frames = frames
	}
	if c.IsSet(rateFlag) {
		cfg.Simulation.Rate = c.Float64(rateFlag)
		if err := cfg.Simulation.Validate("simulation"); err != nil {
			return err
		}
	}

	built, err := config.BuildScene(cfg, logger.Sublogger("scene"))
	if err != nil {
		return err
	}
	defer built.Scene.Teardown()

	session, err := simulated.NewSession(cfg.Simulation, clock.New(), logger.Sublogger("session"))
	if err != nil {
		return err
	}
	submitter := &render.RecordingSubmitter{}
	engine, err := app.NewEngine(app.Options{
		Session:    session,
		Scene:      built.Scene,
		Submitter:  submitter,
		Interactor: interaction.NewInteractor(cfg.Interaction, logger.Sublogger("interaction")),
		Renderer:   render.NewRenderer(logger.Sublogger("render"), cfg.Render.Debug || c.Bool(debugFlag)),
		Rig:        built.Rig,
		Pointers:   built.Pointers,
		OnFrame: func(*xr.FrameState, interaction.Result) {
			submitter.Reset()
		},
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := engine.Run(ctx); err != nil {
		return err
	}

	stats := engine.Stats()
	printf(c.App.Writer, "scene %q: %d frames, %d draws, %d teleports, %d presses",
		built.Scene.Name(), stats.Frames, stats.Draws, stats.Teleports, stats.Presses)
	if stats.RenderErrored > 0 {
		printf(c.App.ErrWriter, "%d frames rendered with errors", stats.RenderErrored)
	}
	return nil
}

// ValidateAction reads a config and prints the nodes of the scene it builds, parents first. With --watch it
// keeps doing so each time the file is saved, until interrupted.
func ValidateAction(c *cli.Context) error {
	logger, closer, cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(closer.Close)

	if err := describe(c.App.Writer, cfg, logger); err != nil {
		return err
	}
	if !c.Bool(watchFlag) {
		return nil
	}

	watcher, err := config.NewWatcher(c.String(configFlag), config.DefaultSettle, logger.Sublogger("watcher"))
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(watcher.Close)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watcher.Run(ctx, func(cfg *config.Config, err error) {
		if err == nil {
			err = describe(c.App.Writer, cfg, logger)
		}
		if err != nil {
			printf(c.App.ErrWriter, "config is invalid: %v", err)
		}
	})
}

func describe(w io.Writer, cfg *config.Config, logger logging.Logger) error {
	built, err := config.BuildScene(cfg, logger.Sublogger("scene"))
	if err != nil {
		return err
	}
	defer built.Scene.Teardown()

	printf(w, "scene %q is valid: %d nodes, %d tracks", built.Scene.Name(), built.Scene.Len(),
		len(cfg.Simulation.Tracks))
	if len(cfg.Nodes) > 0 {
		printf(w, "%s", cfg.NodeTable())
	}
	return nil
}

// SchemaAction prints the JSON schema of config files.
func SchemaAction(c *cli.Context) error {
	raw, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", raw)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setup reads the config named by the command and returns a logger configured by it. The closer releases
// the log file, if one is configured.
func setup(c *cli.Context) (logging.Logger, io.Closer, *config.Config, error) {
	logger := logging.NewLogger("xrsim")
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}

	cfg, err := config.Read(c.String(configFlag), logger)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.Log.Level != "" && !c.Bool(debugFlag) {
		level, err := logging.LevelFromString(cfg.Log.Level)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.SetLevel(level)
	}
	var closer io.Closer = nopCloser{}
	if cfg.Log.File != nil {
		appender, fileCloser := logging.NewFileAppender(logging.FileAppenderConfig{
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
		})
		logger.AddAppender(appender)
		closer = fileCloser
	}
	return logger, closer, cfg, nil
}
