package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// Format identifies how a source encodes its entries.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatFromPath picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Source supplies raw corpus content.
type Source interface {
	// Name identifies the source in logs and stats.
	Name() string
	// Read returns the encoded corpus.
	Read(ctx context.Context) ([]byte, error)
	// Format reports how Read's content is encoded.
	Format() Format
}

// EntrySource is a Source that can hand over decoded entries directly.
// Entries are still validated before they enter the corpus.
type EntrySource interface {
	Source
	Entries(ctx context.Context) ([]core.FAQEntry, error)
}

// FileSource reads a corpus file from disk.
type FileSource struct {
	Path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return s.Path
}

func (s *FileSource) Format() Format {
	return FormatFromPath(s.Path)
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
	}
	return data, err
}

// BytesSource serves a corpus held in memory.
type BytesSource struct {
	name   string
	data   []byte
	format Format
}

var _ Source = (*BytesSource)(nil)

// NewBytesSource creates a BytesSource. data is not copied.
func NewBytesSource(name string, data []byte, format Format) *BytesSource {
	return &BytesSource{name: name, data: data, format: format}
}

func (s *BytesSource) Name() string {
	return s.name
}

func (s *BytesSource) Format() Format {
	return s.format
}

func (s *BytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}

// RepositorySource reads entries persisted in an entry repository.
type RepositorySource struct {
	name string
	repo storage.EntryRepository
}

var _ EntrySource = (*RepositorySource)(nil)

// NewRepositorySource creates a source backed by repo.
func NewRepositorySource(name string, repo storage.EntryRepository) *RepositorySource {
	return &RepositorySource{name: name, repo: repo}
}

func (s *RepositorySource) Name() string {
	return s.name
}

func (s *RepositorySource) Format() Format {
	return FormatJSON
}

func (s *RepositorySource) Entries(ctx context.Context) ([]core.FAQEntry, error) {
	return s.repo.ListEntries(ctx)
}

// Read encodes the stored entries as JSON.
func (s *RepositorySource) Read(ctx context.Context) ([]byte, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entries)
}
