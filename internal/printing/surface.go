package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Surface is an output target that print documents are emitted to.
type Surface interface {
	Open(ctx context.Context) (Sink, error)
}

// Sink receives exactly one document per Open.
type Sink interface {
	Emit(ctx context.Context, doc Document) (Receipt, error)
	Close() error
}

// Receipt describes an emitted document.
type Receipt struct {
	Location string `json:"location,omitempty"`
	Cards    int    `json:"cards"`
	Bytes    int    `json:"bytes"`
}

// MemorySurface keeps the last emitted document in memory, e.g. to be
// written into an HTTP response.
type MemorySurface struct {
	mu  sync.Mutex
	doc Document
}

// Open implements Surface.
func (m *MemorySurface) Open(context.Context) (Sink, error) {
	return memorySink{surface: m}, nil
}

// Document returns the last emitted document.
func (m *MemorySurface) Document() Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc
}

type memorySink struct {
	surface *MemorySurface
}

func (s memorySink) Emit(_ context.Context, doc Document) (Receipt, error) {
	s.surface.mu.Lock()
	defer s.surface.mu.Unlock()
	s.surface.doc = doc
	return Receipt{Cards: doc.Cards, Bytes: len(doc.HTML)}, nil
}

func (memorySink) Close() error { return nil }

// FileSurface writes the document to a file path. The target is replaced
// only once a document has been emitted; a failed run leaves it untouched.
type FileSurface struct {
	Path string
}

// Open creates a temporary sibling of the target file.
func (f FileSurface) Open(context.Context) (Sink, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("output path must not be empty")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &fileSink{tmp: tmp, target: f.Path}, nil
}

type fileSink struct {
	tmp       *os.File
	target    string
	committed bool
}

func (s *fileSink) Emit(_ context.Context, doc Document) (Receipt, error) {
	n, err := s.tmp.Write(doc.HTML)
	if err != nil {
		return Receipt{}, err
	}
	if err := s.tmp.Chmod(0o644); err != nil {
		return Receipt{}, err
	}
	if err := s.tmp.Close(); err != nil {
		return Receipt{}, err
	}
	if err := os.Rename(s.tmp.Name(), s.target); err != nil {
		return Receipt{}, err
	}
	s.committed = true
	return Receipt{Location: s.target, Cards: doc.Cards, Bytes: n}, nil
}

// Close discards the temporary file unless it was renamed into place.
func (s *fileSink) Close() error {
	if s.committed {
		return nil
	}
	_ = s.tmp.Close()
	if err := os.Remove(s.tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Uploader stores a named document and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ArchiveSurface uploads documents through an Uploader.
type ArchiveSurface struct {
	Uploader Uploader
	Name     string
}

// Open fails when no uploader has been configured.
func (a ArchiveSurface) Open(context.Context) (Sink, error) {
	if a.Uploader == nil {
		return nil, errors.New("archive storage is not configured")
	}
	name := a.Name
	if strings.TrimSpace(name) == "" {
		name = "report-cards.html"
	}
	return archiveSink{uploader: a.Uploader, name: name}, nil
}

type archiveSink struct {
	uploader Uploader
	name     string
}

func (s archiveSink) Emit(ctx context.Context, doc Document) (Receipt, error) {
	url, err := s.uploader.Upload(ctx, s.name, bytes.NewReader(doc.HTML))
	if err != nil {
		return Receipt{}, fmt.Errorf("archive %s: %w", s.name, err)
	}
	return Receipt{Location: url, Cards: doc.Cards, Bytes: len(doc.HTML)}, nil
}

func (archiveSink) Close() error { return nil }
