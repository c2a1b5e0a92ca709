// Package docstore persists uploaded documents and serves generated audio
// artifacts from the local filesystem.
package docstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
	ErrNotPDF       = errors.New("file is not a valid PDF")
	ErrNotWAV       = errors.New("only wav audio files are served")
	ErrTraversal    = errors.New("file name must not contain path separators")
	ErrEmptyContent = errors.New("file is empty")
)

// SavedFile describes a successfully persisted document.
type SavedFile struct {
	Path  string
	Size  int64
	Pages int
}

// FileInfo describes a stored document for registry loading.
type FileInfo struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Store is the filesystem-backed document store contract.
type Store interface {
	// Save persists content under name, verifying it parses as a PDF and
	// recording its page count.
	Save(ctx context.Context, name string, content []byte) (SavedFile, error)
	// List returns the stored PDF documents in name order. A missing
	// store directory yields an empty list, not an error.
	List(ctx context.Context) ([]FileInfo, error)
	// Open returns the document bytes for serving. ErrNotFound when absent.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Delete removes the backing file. An already-absent file is not an
	// error.
	Delete(ctx context.Context, name string) error
	// OpenAudio serves a generated podcast artifact by file name. The
	// name is strictly validated: no path separators, wav only.
	OpenAudio(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// AbsolutePath resolves a stored document name to the absolute path
	// handed to the ingestion script.
	AbsolutePath(name string) (string, error)
}
