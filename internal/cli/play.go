package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/reel/internal/host"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/manager"
	"github.com/dshills/reel/internal/input/replay"
	"github.com/dshills/reel/internal/logging"
	"github.com/dshills/reel/internal/script"
	"github.com/dshills/reel/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	ID     string
	Script string
	Follow bool
}

// PlayResult is the JSON payload of a headless replay.
type PlayResult struct {
	ID       string         `json:"id"`
	Frames   int            `json:"frames"`
	Duration string         `json:"duration"`
	Events   []Notification `json:"events"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play [FILE]",
		Short: "Replay a recording through the binding table",
		Long: `Replay a recording headlessly and print the action and pointer
notifications a consumer would receive.

The recording is stepped from zero to its last frame at the configured
step. Actions still held at the end are released.

With --follow, FILE is a JSON-lines stream written by 'reel record --stream'.
New frames are replayed in real time until interrupted.

Examples:
  reel play session.json
  reel play --db reel.db --id 6f1c2d1e-...
  reel play session.json --script consumer.lua
  reel play --follow live.jsonl --lag 100ms`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runPlay(cmd, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "recording id to load from the database")
	cmd.Flags().String("db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Script, "script", "", "Lua script to attach as a consumer")
	cmd.Flags().BoolVar(&opts.Follow, "follow", false, "tail a JSON-lines stream in real time")
	cmd.Flags().String("lag", "", "replay lag (e.g. 100ms)")
	cmd.Flags().String("step", "", "update step (e.g. 16ms)")

	return cmd
}

func runPlay(cmd *cobra.Command, opts *PlayOptions, path string) error {
	if err := opts.load(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := opts.newManager()
	if err != nil {
		return err
	}

	stream := opts.Follow || opts.Format == FormatText
	p := newPrinter(cmd.OutOrStdout(), opts.Format, stream)
	m.AddHandler(p)
	m.AddPointerHandler(p)

	var consumer *script.Handler
	if opts.Script != "" {
		consumer, err = opts.attachScript(cmd, m)
		if err != nil {
			return err
		}
		defer consumer.Close()
	}

	if opts.Follow {
		if path == "" {
			return NewExitError(ExitCommandError, "--follow requires a stream file")
		}
		if err := opts.follow(ctx, m, p, path); err != nil {
			return err
		}
		return scriptError(consumer)
	}

	rec, err := opts.loadRecording(ctx, path, opts.ID)
	if err != nil {
		return err
	}

	cfg := opts.Config.Replay
	cursor := replay.NewCursor(rec, replay.WithNeutral(input.Pos(cfg.Neutral.X, cfg.Neutral.Y)))
	if err := m.AttachReplay(cursor, cfg.Lag.Std()); err != nil {
		return WrapExitError(ExitCommandError, "failed to attach replay", err)
	}

	end := rec.Duration() + cfg.Lag.Std()
	opts.Logger.Info("replaying", "id", rec.ID(), "frames", rec.Len(), "duration", rec.Duration())
	if err := host.Steps(m, 0, end, cfg.Step.Std(), p.flush); err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	m.Detach()
	p.flush(end)
	opts.logMetrics(m, "replay finished")

	if err := scriptError(consumer); err != nil {
		return err
	}
	if opts.Format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), PlayResult{
			ID:       rec.ID().String(),
			Frames:   rec.Len(),
			Duration: rec.Duration().String(),
			Events:   p.Notifications(),
		})
	}
	return nil
}

// follow replays a growing stream until ctx is done or the process is
// interrupted.
func (o *PlayOptions) follow(ctx context.Context, m *manager.Manager, p *printer, path string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := store.Follow(ctx, path, store.WithFollowLogger(logging.Component(o.Logger, "follow")))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to follow stream", err)
	}

	cfg := o.Config.Replay
	rec := f.NewRecording()
	cursor := replay.NewCursor(rec, replay.WithNeutral(input.Pos(cfg.Neutral.X, cfg.Neutral.Y)))
	if err := m.AttachReplay(cursor, cfg.Lag.Std()); err != nil {
		return WrapExitError(ExitCommandError, "failed to attach replay", err)
	}

	loop := host.New(m,
		host.WithStep(cfg.Step.Std()),
		host.WithFrames(f.Frames(), rec),
		host.WithLogger(logging.Component(o.Logger, "host")),
		host.OnStep(p.flush),
	)
	o.Logger.Info("following stream", "path", path, "id", f.ID())
	if err := loop.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "replay loop failed", err)
	}
	m.Detach()
	p.flush(loop.Elapsed())
	o.logMetrics(m, "follow finished")

	if err := f.Err(); err != nil {
		return WrapExitError(ExitFailure, "stream failed", err)
	}
	return nil
}

// attachScript loads the Lua consumer and registers it after the printer.
func (o *PlayOptions) attachScript(cmd *cobra.Command, m *manager.Manager) (*script.Handler, error) {
	var out io.Writer = cmd.OutOrStdout()
	if o.Format == FormatJSON {
		out = cmd.ErrOrStderr()
	}
	h, err := script.Load(o.Script,
		script.WithOutput(out),
		script.WithLogger(logging.Component(o.Logger, "script")),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to load script %s", o.Script), err)
	}
	m.AddHandler(h)
	m.AddPointerHandler(h)
	return h, nil
}

// scriptError reports the first callback failure of h, if any.
func scriptError(h *script.Handler) error {
	if h == nil || h.Err() == nil {
		return nil
	}
	return WrapExitError(ExitFailure, "script failed", h.Err())
}
