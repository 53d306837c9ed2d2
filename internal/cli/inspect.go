package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/replay"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	ID      string
	Summary bool
}

// FrameInfo is one frame in an inspect listing.
type FrameInfo struct {
	Micros  int64    `json:"t_us"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Actions []string `json:"actions"`
}

// InspectResult is the JSON payload of the inspect command.
type InspectResult struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Frames    int         `json:"frames"`
	Duration  string      `json:"duration"`
	Actions   []string    `json:"actions"`
	Listing   []FrameInfo `json:"listing,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Show a recording's summary and frames",
		Long: `Show a recording's identity, length and the actions it uses, followed
by a per-frame listing.

Examples:
  reel inspect session.json
  reel inspect --db reel.db --id 6f1c2d1e-... --summary`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runInspect(cmd, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "recording id to load from the database")
	cmd.Flags().String("db", "", "path to SQLite database")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "omit the frame listing")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions, path string) error {
	if err := opts.load(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rec, err := opts.loadRecording(ctx, path, opts.ID)
	if err != nil {
		return err
	}

	result := describe(rec, !opts.Summary)
	if opts.Format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	writeInspectText(cmd.OutOrStdout(), rec, result, !opts.Summary)
	return nil
}

// describe summarizes rec. The action list is the union over all frames.
func describe(rec *replay.Recording, listing bool) InspectResult {
	var used action.Set
	frames := rec.Frames()
	result := InspectResult{
		ID:        rec.ID().String(),
		CreatedAt: rec.CreatedAt().UTC(),
		Frames:    len(frames),
		Duration:  rec.Duration().String(),
	}
	for _, f := range frames {
		for _, a := range f.Actions.Slice() {
			used = used.With(a)
		}
		if listing {
			result.Listing = append(result.Listing, FrameInfo{
				Micros:  f.Time.Microseconds(),
				X:       f.Position.X,
				Y:       f.Position.Y,
				Actions: actionNames(f.Actions),
			})
		}
	}
	result.Actions = actionNames(used)
	return result
}

func actionNames(s action.Set) []string {
	names := make([]string, 0, s.Len())
	for _, a := range s.Slice() {
		names = append(names, string(a))
	}
	return names
}

func writeInspectText(w io.Writer, rec *replay.Recording, r InspectResult, listing bool) {
	fmt.Fprintf(w, "Recording %s\n", r.ID)
	fmt.Fprintf(w, "  created:  %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  frames:   %d\n", r.Frames)
	fmt.Fprintf(w, "  duration: %s\n", r.Duration)
	fmt.Fprintf(w, "  actions:  {%s}\n", strings.Join(r.Actions, ", "))
	if !listing || r.Frames == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%6s  %10s  %-16s %s\n", "#", "TIME", "POSITION", "ACTIONS")
	for i, f := range rec.Frames() {
		fmt.Fprintf(w, "%6d  %10s  %-16s %s\n", i, f.Time, f.Position, f.Actions)
	}
}
