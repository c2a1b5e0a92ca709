package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FS stores documents under docsDir and audio artifacts under audioDir.
type FS struct {
	docsDir  string
	audioDir string
}

func NewFS(docsDir, audioDir string) *FS {
	return &FS{docsDir: docsDir, audioDir: audioDir}
}

func (s *FS) Save(_ context.Context, name string, content []byte) (SavedFile, error) {
	if err := validateName(name); err != nil {
		return SavedFile{}, err
	}
	if len(content) == 0 {
		return SavedFile{}, ErrEmptyContent
	}
	pages, err := countPages(content)
	if err != nil {
		return SavedFile{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create docs dir: %w", err)
	}
	path := filepath.Join(s.docsDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return SavedFile{}, fmt.Errorf("write %s: %w", name, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return SavedFile{Path: abs, Size: int64(len(content)), Pages: pages}, nil
}

func (s *FS) List(_ context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.docsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	return out, nil
}

func (s *FS) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	if err := validateName(name); err != nil {
		return nil, 0, err
	}
	return openFile(filepath.Join(s.docsDir, name))
}

func (s *FS) Delete(_ context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.docsDir, name))
	if os.IsNotExist(err) {
		return nil // already gone
	}
	return err
}

func (s *FS) OpenAudio(_ context.Context, name string) (io.ReadCloser, int64, error) {
	if err := validateName(name); err != nil {
		return nil, 0, err
	}
	if !strings.HasSuffix(name, ".wav") {
		return nil, 0, ErrNotWAV
	}
	return openFile(filepath.Join(s.audioDir, name))
}

func (s *FS) AbsolutePath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(s.docsDir, name))
}

func openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrTraversal
	}
	return nil
}

// countPages verifies the content parses as a PDF and returns its page
// count.
func countPages(content []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
