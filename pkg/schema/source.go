package schema

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Source identifies where a form document comes from so loaders can read
// files, fs.FS entries or the embedded default alike.
type Source interface {
	Kind() SourceKind
	Location() string
	Read() ([]byte, error)
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile     SourceKind = "file"
	SourceKindFS       SourceKind = "fs"
	SourceKindEmbedded SourceKind = "embedded"
)

type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

func (s fileSource) Read() ([]byte, error) {
	return os.ReadFile(s.path)
}

// SourceFromFile returns a Source reading a document from disk.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

func (s fsSource) Read() ([]byte, error) {
	return fs.ReadFile(s.fsys, s.name)
}

// SourceFromFS returns a Source reading name from fsys.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

type embeddedSource struct{}

func (embeddedSource) Kind() SourceKind      { return SourceKindEmbedded }
func (embeddedSource) Location() string      { return "feedback.openapi.yaml" }
func (embeddedSource) Read() ([]byte, error) { return DefaultDocument(), nil }

// EmbeddedSource returns the built-in document.
func EmbeddedSource() Source {
	return embeddedSource{}
}

// LoadSource reads src and converts operationID into a Form, then runs the
// decorators in order.
func LoadSource(ctx context.Context, src Source, operationID string, decorators ...Decorator) (Form, error) {
	if src == nil {
		return Form{}, ErrSourceMissing
	}
	raw, err := src.Read()
	if err != nil {
		return Form{}, fmt.Errorf("schema: read %s %q: %w", src.Kind(), src.Location(), err)
	}
	form, err := LoadFromData(ctx, raw, operationID)
	if err != nil {
		return Form{}, err
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return Form{}, fmt.Errorf("schema: decorate: %w", err)
		}
	}
	return form, nil
}
