// Package vfs is the virtual file store: editor overlays for open
// documents on top of a lazily filled disk cache.
package vfs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"lodestar/internal/span"
)

var (
	// ErrBinary is returned when text is requested from a binary file.
	ErrBinary = errors.New("vfs: binary file")
	// ErrLineOutOfRange is returned by LoadLine and LoadSpan for rows past
	// the end of the file.
	ErrLineOutOfRange = errors.New("vfs: line out of range")
)

// FileContents is the content of a file as the store sees it.
type FileContents struct {
	Text   string
	Binary bool
	// Raw holds the bytes of a binary file.
	Raw []byte
}

// Change is one content change of an open document. A nil Range replaces
// the whole document.
type Change struct {
	Range *span.Range
	Text  string
}

type document struct {
	text    string
	version int32
}

// Store is safe for concurrent use.
type Store struct {
	readFile func(string) ([]byte, error)

	mu      sync.RWMutex
	overlay map[string]document
	disk    map[string]FileContents
}

// New returns an empty store reading from the local file system.
func New() *Store {
	return &Store{
		readFile: os.ReadFile,
		overlay:  make(map[string]document),
		disk:     make(map[string]FileContents),
	}
}

func classify(data []byte) FileContents {
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return FileContents{Binary: true, Raw: data}
	}
	return FileContents{Text: string(data)}
}

// Open records the editor's copy of path.
func (s *Store) Open(path, text string, version int32) {
	s.mu.Lock()
	s.overlay[path] = document{text: text, version: version}
	s.mu.Unlock()
}

// Change applies changes in order to the open document at path. Changes to
// a document that is not open are applied on top of its disk content.
func (s *Store) Change(path string, changes []Change, version int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.overlay[path]
	if !ok {
		fc, err := s.loadDiskLocked(path)
		if err != nil {
			return err
		}
		if fc.Binary {
			return fmt.Errorf("%w: %s", ErrBinary, path)
		}
		doc.text = fc.Text
	}
	for _, c := range changes {
		doc.text = apply(doc.text, c)
	}
	doc.version = version
	s.overlay[path] = doc
	return nil
}

// Close drops the overlay for path; later reads go to disk.
func (s *Store) Close(path string) {
	s.mu.Lock()
	delete(s.overlay, path)
	delete(s.disk, path)
	s.mu.Unlock()
}

// Invalidate forgets the cached disk content of path.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.disk, path)
	s.mu.Unlock()
}

// Version returns the editor version of an open document.
func (s *Store) Version(path string) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.overlay[path]
	return doc.version, ok
}

func (s *Store) loadDiskLocked(path string) (FileContents, error) {
	if fc, ok := s.disk[path]; ok {
		return fc, nil
	}
	data, err := s.readFile(path)
	if err != nil {
		return FileContents{}, fmt.Errorf("vfs: %w", err)
	}
	fc := classify(data)
	s.disk[path] = fc
	return fc, nil
}

// LoadFile returns the current content of path.
func (s *Store) LoadFile(path string) (FileContents, error) {
	s.mu.RLock()
	if doc, ok := s.overlay[path]; ok {
		s.mu.RUnlock()
		return FileContents{Text: doc.text}, nil
	}
	if fc, ok := s.disk[path]; ok {
		s.mu.RUnlock()
		return fc, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadDiskLocked(path)
}

// Text returns the text of path or ErrBinary.
func (s *Store) Text(path string) (string, error) {
	fc, err := s.LoadFile(path)
	if err != nil {
		return "", err
	}
	if fc.Binary {
		return "", fmt.Errorf("%w: %s", ErrBinary, path)
	}
	return fc.Text, nil
}

// LoadLine returns row of path without its terminator.
func (s *Store) LoadLine(path string, row span.Row) (string, error) {
	text, err := s.Text(path)
	if err != nil {
		return "", err
	}
	lines := span.Lines(text)
	if int(row) >= len(lines) {
		return "", fmt.Errorf("%w: %s:%d", ErrLineOutOfRange, path, row.OneIndexed())
	}
	return lines[row], nil
}

// LoadSpan returns the text covered by sp.
func (s *Store) LoadSpan(sp span.Span) (string, error) {
	text, err := s.Text(sp.File)
	if err != nil {
		return "", err
	}
	lines := span.Lines(text)
	r := sp.Range
	if rows := len(lines); int(r.RowEnd) > rows || (int(r.RowEnd) == rows && r.ColEnd > 0) {
		return "", fmt.Errorf("%w: %s:%d", ErrLineOutOfRange, sp.File, r.RowEnd.OneIndexed())
	}
	start := offsetOf(text, r.Start())
	end := offsetOf(text, r.End())
	if end < start {
		end = start
	}
	return text[start:end], nil
}

// offsetOf returns the byte offset of pos in text, clamped to the text.
func offsetOf(text string, pos span.Position) int {
	off := 0
	for row := span.Row(0); row < pos.Row; row++ {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return len(text)
		}
		off += nl + 1
	}
	lineEnd := len(text)
	if nl := strings.IndexByte(text[off:], '\n'); nl >= 0 {
		lineEnd = off + nl
	}
	return off + span.ByteOffset(text[off:lineEnd], pos.Col)
}

func apply(text string, c Change) string {
	if c.Range == nil {
		return c.Text
	}
	start := offsetOf(text, c.Range.Start())
	end := offsetOf(text, c.Range.End())
	if end < start {
		end = start
	}
	return text[:start] + c.Text + text[end:]
}
