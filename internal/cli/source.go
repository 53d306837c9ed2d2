package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/reel/internal/input/binding"
	"github.com/dshills/reel/internal/input/manager"
	"github.com/dshills/reel/internal/input/replay"
	"github.com/dshills/reel/internal/logging"
	"github.com/dshills/reel/internal/store"
)

// loadRecording reads a recording from path, or from the database by id
// when path is empty.
func (o *RootOptions) loadRecording(ctx context.Context, path, id string) (*replay.Recording, error) {
	if path != "" {
		rec, err := store.LoadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load recording", err)
		}
		return rec, nil
	}
	if id == "" {
		return nil, NewExitError(ExitCommandError, "a recording file or --id is required")
	}

	recID, err := uuid.Parse(id)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", id), err)
	}
	st, err := o.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rec, err := st.Load(ctx, recID)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load recording", err)
	}
	return rec, nil
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.SQLStore, error) {
	path := o.Config.Store.Path
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or store.path")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	o.Logger.Debug("database opened", "path", path)
	return st, nil
}

// newManager builds a manager over the configured binding table.
func (o *RootOptions) newManager() (*manager.Manager, error) {
	table, err := o.Config.BindingTable()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid bindings", err)
	}
	mode, err := o.Config.Mode()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid mode", err)
	}

	router := binding.NewRouter(table, mode,
		binding.WithLogger(logging.Component(o.Logger, "binding")))
	return manager.New(router, manager.WithLogger(logging.Component(o.Logger, "manager"))), nil
}

// logMetrics reports the manager's counters at debug level.
func (o *RootOptions) logMetrics(m *manager.Manager, msg string) {
	snap := m.Metrics().Snapshot()
	o.Logger.Debug(msg,
		"updates", snap.Updates,
		"polls", snap.Polls,
		"key_events", snap.KeyEvents,
		"state_events", snap.StateEvents,
		"dropped_events", snap.DroppedEvents,
		"avg_update", snap.AvgUpdateLatency,
		"p99_update", snap.P99UpdateLatency,
	)
}
