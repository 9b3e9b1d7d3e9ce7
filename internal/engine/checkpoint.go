package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

// CheckpointSink receives a fresh Snapshot every time an SG's FSMState
// changes, so a restarted engine can warm-start from the last known SU/SI
// bindings instead of rediscovering them from scratch.
type CheckpointSink interface {
	Checkpoint(snapshot Snapshot)
}

// NoopCheckpoint discards every snapshot. The default when an Engine is
// built without persistence, e.g. `serve` without a checkpoint file.
type NoopCheckpoint struct{}

func (NoopCheckpoint) Checkpoint(Snapshot) {}

// FileCheckpoint persists the latest Snapshot as a single JSON file,
// overwritten in place on every call. This mirrors config.Storage's own
// persistence style (plain os.WriteFile, no atomic rename) rather than
// reaching for a dependency the rest of the tree does not use for disk I/O.
type FileCheckpoint struct {
	path string
}

// NewFileCheckpoint returns a sink that writes to path, creating its parent
// directory if necessary.
func NewFileCheckpoint(path string) (*FileCheckpoint, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileCheckpoint{path: path}, nil
}

func (c *FileCheckpoint) Checkpoint(snapshot Snapshot) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		logging.Error(subsystem, err, "marshal checkpoint snapshot")
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		logging.Error(subsystem, err, "write checkpoint file %s", c.path)
	}
}

// LoadFileCheckpoint reads a previously written checkpoint file. Callers
// use it to warm-start registries before the engine's Run loop starts
// processing live events; the engine itself never reads a checkpoint.
func LoadFileCheckpoint(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse checkpoint file %s: %w", path, err)
	}
	return snapshot, nil
}
