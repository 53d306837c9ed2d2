package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/reel/internal/device/terminal"
	"github.com/dshills/reel/internal/host"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/replay"
	"github.com/dshills/reel/internal/logging"
	"github.com/dshills/reel/internal/store"
)

// statusEvery is how many loop steps pass between status line redraws.
const statusEvery = 8

// DeviceFactory opens the live input device.
type DeviceFactory func(opts ...terminal.Option) (*terminal.Device, error)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Out    string
	Stream string

	// OpenDevice defaults to terminal.Open.
	OpenDevice DeviceFactory
}

// RecordResult is the JSON payload of a finished recording.
type RecordResult struct {
	ID       string `json:"id"`
	Frames   int    `json:"frames"`
	Duration string `json:"duration"`
	File     string `json:"file,omitempty"`
	Database string `json:"database,omitempty"`
	Stream   string `json:"stream,omitempty"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts, OpenDevice: terminal.Open}
	return newRecordCommand(opts)
}

func newRecordCommand(opts *RecordOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record pointer and button input from the terminal",
		Long: `Record mouse and key input from the terminal as frames of logical actions.

Press Esc or Ctrl-C to stop. The recording is written to --out as JSON
and/or saved in the --db database. --stream additionally writes each frame
as it is captured to a JSON-lines file that 'reel play --follow' can tail.

Examples:
  reel record --out session.json
  reel record --db reel.db --stream live.jsonl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the recording to this JSON file")
	cmd.Flags().String("db", "", "save the recording in this SQLite database")
	cmd.Flags().StringVar(&opts.Stream, "stream", "", "stream frames to this JSON-lines file")
	cmd.Flags().String("step", "", "update step (e.g. 16ms)")

	return cmd
}

func runRecord(cmd *cobra.Command, opts *RecordOptions) error {
	if err := opts.load(cmd); err != nil {
		return err
	}
	if opts.Out == "" && opts.Config.Store.Path == "" {
		return NewExitError(ExitCommandError, "nothing to save to: set --out or --db")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rec := replay.NewRecording()
	recOpts := []replay.RecorderOption{
		replay.WithRecorderLogger(logging.Component(opts.Logger, "recorder")),
	}

	var sw *store.StreamWriter
	if opts.Stream != "" {
		var err error
		sw, err = store.CreateStream(opts.Stream, rec)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create stream", err)
		}
		defer sw.Close()
		recOpts = append(recOpts, replay.WithObserver(sw.Observe))
	}

	recorder, err := replay.NewRecorder(rec, recOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create recorder", err)
	}
	m, err := opts.newManager()
	if err != nil {
		return err
	}
	if err := m.AttachRecorder(recorder); err != nil {
		return WrapExitError(ExitFailure, "failed to attach recorder", err)
	}

	dev, err := opts.OpenDevice(terminal.WithLogger(logging.Component(opts.Logger, "terminal")))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	shutdown := sync.OnceFunc(dev.Shutdown)
	defer shutdown()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan input.Event, 256)
	devErr := make(chan error, 1)
	go func() {
		devErr <- dev.Run(ctx, events)
		close(events)
	}()

	var loop *host.Loop
	status := func(now time.Duration) {
		if loop.Ticks()%statusEvery == 1 {
			dev.Status(fmt.Sprintf("recording %s  frames %d  active %s  (Esc to stop)",
				now.Truncate(time.Millisecond), rec.Len(), m.Active()))
		}
	}
	loop = host.New(m,
		host.WithStep(opts.Config.Replay.Step.Std()),
		host.WithEvents(events),
		host.WithLogger(logging.Component(opts.Logger, "host")),
		host.OnStep(status),
	)

	opts.Logger.Info("recording started", "id", rec.ID())
	if err := loop.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "record loop failed", err)
	}
	stop()
	if err := <-devErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "terminal failed", err)
	}
	m.DetachRecorder()
	shutdown()
	opts.logMetrics(m, "recording finished")
	opts.Logger.Info("recording stopped", "frames", rec.Len(), "duration", rec.Duration())

	result := RecordResult{
		ID:       rec.ID().String(),
		Frames:   rec.Len(),
		Duration: rec.Duration().String(),
		Stream:   opts.Stream,
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			return WrapExitError(ExitFailure, "failed to write stream", err)
		}
	}
	if opts.Out != "" {
		if err := store.SaveFile(rec, opts.Out); err != nil {
			return WrapExitError(ExitFailure, "failed to save recording", err)
		}
		result.File = opts.Out
	}
	if opts.Config.Store.Path != "" {
		if err := opts.saveToStore(ctx, rec); err != nil {
			return err
		}
		result.Database = opts.Config.Store.Path
	}

	if opts.Format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Recorded %s: %d frame(s) over %s\n", result.ID, result.Frames, result.Duration)
	if result.File != "" {
		fmt.Fprintf(w, "  file:     %s\n", result.File)
	}
	if result.Database != "" {
		fmt.Fprintf(w, "  database: %s\n", result.Database)
	}
	if result.Stream != "" {
		fmt.Fprintf(w, "  stream:   %s\n", result.Stream)
	}
	return nil
}

func (o *RootOptions) saveToStore(ctx context.Context, rec *replay.Recording) error {
	st, err := o.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(context.WithoutCancel(ctx), rec); err != nil {
		return WrapExitError(ExitFailure, "failed to save recording", err)
	}
	return nil
}
