package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dshills/reel/internal/store"
)

// DBEntry is one row of 'reel db ls'.
type DBEntry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	SavedAt    time.Time `json:"saved_at"`
	FrameCount int       `json:"frames"`
	Duration   string    `json:"duration"`
}

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage recordings in a SQLite database",
		Long: `Manage recordings stored in a SQLite database.

Examples:
  reel db ls --db reel.db
  reel db import --db reel.db session.json live.jsonl
  reel db export --db reel.db 6f1c2d1e-... session.json
  reel db rm --db reel.db 6f1c2d1e-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("db", "", "path to SQLite database")

	cmd.AddCommand(
		newDBListCommand(rootOpts),
		newDBImportCommand(rootOpts),
		newDBExportCommand(rootOpts),
		newDBRemoveCommand(rootOpts),
	)
	return cmd
}

// withStore loads the configuration, opens the database and calls fn.
func withStore(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, st *store.SQLStore) error) error {
	if err := opts.load(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", s), err)
	}
	return id, nil
}

func newDBListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ls",
		Short:         "List stored recordings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.SQLStore) error {
				summaries, err := st.List(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to list recordings", err)
				}

				entries := make([]DBEntry, 0, len(summaries))
				for _, s := range summaries {
					entries = append(entries, DBEntry{
						ID:         s.ID.String(),
						CreatedAt:  s.CreatedAt.UTC(),
						SavedAt:    s.SavedAt.UTC(),
						FrameCount: s.FrameCount,
						Duration:   s.Duration.String(),
					})
				}

				if opts.Format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				w := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(w, "No recordings found.")
					return nil
				}
				fmt.Fprintf(w, "%-36s  %-20s  %7s  %s\n", "ID", "CREATED", "FRAMES", "DURATION")
				for _, e := range entries {
					fmt.Fprintf(w, "%-36s  %-20s  %7d  %s\n",
						e.ID, e.CreatedAt.Format(time.RFC3339), e.FrameCount, e.Duration)
				}
				return nil
			})
		},
	}
}

func newDBImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import FILE...",
		Short:         "Import recording files into the database",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.SQLStore) error {
				var imported []string
				for _, path := range args {
					rec, err := store.LoadFile(path)
					if err != nil {
						return WrapExitError(ExitCommandError, "failed to load "+path, err)
					}
					if err := st.Save(ctx, rec); err != nil {
						return WrapExitError(ExitFailure, "failed to save "+path, err)
					}
					opts.Logger.Debug("imported recording", "path", path, "id", rec.ID())
					imported = append(imported, rec.ID().String())
				}

				if opts.Format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), map[string][]string{"imported": imported})
				}
				for i, id := range imported {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %s\n", args[i], id)
				}
				return nil
			})
		},
	}
}

func newDBExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export ID FILE",
		Short:         "Export a stored recording to a JSON file",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.SQLStore) error {
				rec, err := st.Load(ctx, id)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to load recording", err)
				}
				if err := store.SaveFile(rec, args[1]); err != nil {
					return WrapExitError(ExitFailure, "failed to write "+args[1], err)
				}

				if opts.Format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"id": id.String(), "file": args[1]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", id, args[1])
				return nil
			})
		},
	}
}

func newDBRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm ID...",
		Short:         "Delete stored recordings",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.SQLStore) error {
				for _, id := range ids {
					if err := st.Delete(ctx, id); err != nil {
						return WrapExitError(ExitCommandError, "failed to delete "+id.String(), err)
					}
					if opts.Format != FormatJSON {
						fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
					}
				}
				if opts.Format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": len(ids)})
				}
				return nil
			})
		},
	}
}
