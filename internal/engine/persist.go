package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mork-fetch/internal/models"
)

// ErrStateNotFound is returned by Reload and RestoreBackup when the
// snapshot file does not exist.
var ErrStateNotFound = errors.New("state file not found")

// stateFile is the persisted snapshot schema.
type stateFile struct {
	Rules     []*models.Rule                `json:"rules"`
	Watch     map[string]*models.WatchEntry `json:"watch"`
	WatchSens float64                       `json:"watch_sens"`
	Interval  int                           `json:"interval"`
	Alerts    bool                          `json:"alerts"`
	Ledger    models.Ledger                 `json:"ledger"`
}

// saveState persists the current state after a mutation, logging any
// failure instead of surfacing it. Mutating calls rely on this being
// safe to call unconditionally.
func (e *Engine) saveState() {
	if e.statePath == "" {
		return
	}
	if err := e.ForceSave(); err != nil {
		e.log.Warn().Err(err).Msg("state save failed")
	}
}

// ForceSave serializes the state to the primary file via a temp file
// and atomic rename, so a concurrent reader never observes a partial
// snapshot. A secondary backup copy is attempted afterwards, best
// effort.
func (e *Engine) ForceSave() error {
	data, err := e.marshalState()
	if err != nil {
		return err
	}
	if err := writeAtomic(e.statePath, data); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if e.backupPath != "" {
		// Secondary copy failure never fails the save.
		if err := writeAtomic(e.backupPath, data); err != nil {
			e.log.Debug().Err(err).Msg("backup copy failed")
		}
	}
	return nil
}

// BackupState writes an on-demand snapshot to the backup path.
func (e *Engine) BackupState() error {
	if e.backupPath == "" {
		return fmt.Errorf("no backup path configured")
	}
	data, err := e.marshalState()
	if err != nil {
		return err
	}
	if err := writeAtomic(e.backupPath, data); err != nil {
		return fmt.Errorf("writing backup file: %w", err)
	}
	return nil
}

// Reload restores state from the primary file. Missing file returns
// ErrStateNotFound; a parse error is logged and returned. Restoring
// only repopulates data structures, it never re-enables the loop.
func (e *Engine) Reload() error {
	return e.restoreFrom(e.statePath)
}

// RestoreBackup restores state from the secondary backup file.
func (e *Engine) RestoreBackup() error {
	return e.restoreFrom(e.backupPath)
}

func (e *Engine) restoreFrom(path string) error {
	if path == "" {
		return ErrStateNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrStateNotFound
		}
		return fmt.Errorf("reading state file: %w", err)
	}

	var snap stateFile
	if err := json.Unmarshal(data, &snap); err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("state file corrupt")
		return fmt.Errorf("parsing state file: %w", err)
	}

	e.mu.Lock()
	e.rules = snap.Rules
	e.watch = snap.Watch
	if e.watch == nil {
		e.watch = make(map[string]*models.WatchEntry)
	}
	if snap.WatchSens != 0 {
		e.watchSens = clampSens(snap.WatchSens)
	}
	if snap.Interval > 0 {
		sec := snap.Interval
		if sec < int(minInterval/time.Second) {
			sec = int(minInterval / time.Second)
		}
		e.interval = time.Duration(sec) * time.Second
	}
	e.alertsOn = snap.Alerts
	e.ledger = snap.Ledger
	if e.ledger.Positions == nil {
		e.ledger.Positions = make(map[string]*models.Position)
	}
	e.mu.Unlock()

	e.logEvent("[cfg] state restored from %s", filepath.Base(path))
	return nil
}

// marshalState snapshots the persisted subset under the lock.
func (e *Engine) marshalState() ([]byte, error) {
	e.mu.Lock()
	snap := stateFile{
		Rules:     make([]*models.Rule, len(e.rules)),
		Watch:     make(map[string]*models.WatchEntry, len(e.watch)),
		WatchSens: e.watchSens,
		Interval:  int(e.interval / time.Second),
		Alerts:    e.alertsOn,
		Ledger:    models.NewLedger(),
	}
	for i, r := range e.rules {
		snap.Rules[i] = r.Clone()
	}
	for m, w := range e.watch {
		cp := *w
		snap.Watch[m] = &cp
	}
	snap.Ledger.Realized = e.ledger.Realized
	for m, p := range e.ledger.Positions {
		cp := *p
		snap.Ledger.Positions[m] = &cp
	}
	e.mu.Unlock()

	data, err := json.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("marshaling state: %w", err)
	}
	return data, nil
}

// writeAtomic writes data to path via a temp file in the same
// directory and an atomic rename, so the old file survives a failed
// write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
