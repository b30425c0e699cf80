package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the Database layout changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned when a snapshot was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("analysis: schema mismatch")

// Encode writes db to w stamped with SchemaVersion. db is not modified.
func Encode(w io.Writer, db *Database) error {
	out := *db
	out.Schema = SchemaVersion
	return msgpack.NewEncoder(w).Encode(&out)
}

// Decode reads a database from r.
func Decode(r io.Reader) (*Database, error) {
	var db Database
	if err := msgpack.NewDecoder(r).Decode(&db); err != nil {
		return nil, err
	}
	if db.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, db.Schema, SchemaVersion)
	}
	return &db, nil
}

// Save writes db to path, replacing any existing file atomically.
func Save(path string, db *Database) (err error) {
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
	if err = Encode(f, db); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads the database at path.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("analysis: load %s: %w", path, err)
	}
	return db, nil
}

// Open loads the database at path and indexes it.
func Open(path string) (*Index, error) {
	db, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(db), nil
}
