// Copyright (c) 2026 CLinCoDa. All rights reserved.

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
)

// envelope is the on-disk snapshot format: one whole collection per file.
//
// # Versioning
//
// The original prototype serialized bare record lists with no version field;
// SchemaVersion was added so future format changes can be detected instead of
// silently mis-read.
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Records       json.RawMessage `json:"records"`
}

// snapshotter serializes whole collections to JSON files under a data
// directory. Writes are atomic (temp file + rename) so a crash mid-write can
// never leave a truncated snapshot behind.
type snapshotter struct {
	dir string
	now func() time.Time
}

func newSnapshotter(dir string, now func() time.Time) (*snapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: failed to create data dir %s: %w", dir, err)
	}
	return &snapshotter{dir: dir, now: now}, nil
}

// write serializes records and atomically replaces the named snapshot file.
//
// It is called synchronously by every mutating store operation; callers must
// treat a returned error as "the mutation did not happen".
func (s *snapshotter) write(name string, records any) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: failed to serialize %s: %w", name, err)
	}

	wrapped, err := json.MarshalIndent(envelope{
		SchemaVersion: constants.SnapshotSchemaVersion,
		SavedAt:       s.now(),
		Records:       payload,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("store: failed to serialize %s envelope: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	temp := target + ".tmp"

	if err := os.WriteFile(temp, wrapped, 0o644); err != nil {
		return fmt.Errorf("store: failed to write %s: %w", name, err)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("store: failed to commit %s: %w", name, err)
	}

	return nil
}

// loadSnapshot reads a collection snapshot into memory.
//
// A missing file is not an error — it simply means the collection starts
// empty (first boot in durable mode).
func loadSnapshot[T any](s *snapshotter, name string) ([]T, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: failed to read %s: %w", name, err)
	}

	var wrapped envelope
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("store: failed to parse %s: %w", name, err)
	}
	if wrapped.SchemaVersion > constants.SnapshotSchemaVersion {
		return nil, fmt.Errorf("store: snapshot %s has schema version %d, this build supports up to %d",
			name, wrapped.SchemaVersion, constants.SnapshotSchemaVersion)
	}

	var records []T
	if err := json.Unmarshal(wrapped.Records, &records); err != nil {
		return nil, fmt.Errorf("store: failed to parse %s records: %w", name, err)
	}

	return records, nil
}
