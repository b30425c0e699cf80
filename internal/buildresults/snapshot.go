package buildresults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotSchema uint16 = 1

type snapshotPayload struct {
	Schema uint16
	Files  map[string][]Diagnostic
}

// Save writes the table to path, replacing any previous snapshot
// atomically.
func (t *Table) Save(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	payload := snapshotPayload{Schema: snapshotSchema, Files: t.snapshot()}
	if err = msgpack.NewEncoder(f).Encode(&payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load replaces the table content with the snapshot at path. A missing
// file leaves the table empty and reports false.
func (t *Table) Load(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	var payload snapshotPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("buildresults: decode %s: %w", path, err)
	}
	if payload.Schema != snapshotSchema {
		return false, fmt.Errorf("buildresults: %s has schema %d, want %d", path, payload.Schema, snapshotSchema)
	}
	t.Replace(payload.Files)
	return true, nil
}
