package docstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	return NewFS(filepath.Join(dir, "docs"), filepath.Join(dir, "audio"))
}

func TestSaveRejectsNonPDF(t *testing.T) {
	s := newTestFS(t)
	_, err := s.Save(context.Background(), "a.pdf", []byte("plain text, not a pdf"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestSaveRejectsEmptyContent(t *testing.T) {
	s := newTestFS(t)
	_, err := s.Save(context.Background(), "a.pdf", nil)
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestNameValidation(t *testing.T) {
	s := newTestFS(t)
	tests := []struct {
		name    string
		wantErr error
	}{
		{"", ErrInvalidName},
		{"../escape.pdf", ErrTraversal},
		{"dir/a.pdf", ErrTraversal},
		{`dir\a.pdf`, ErrTraversal},
	}
	for _, tt := range tests {
		if _, err := s.Save(context.Background(), tt.name, []byte("x")); !errors.Is(err, tt.wantErr) {
			t.Errorf("Save(%q): expected %v, got %v", tt.name, tt.wantErr, err)
		}
		if _, _, err := s.Open(context.Background(), tt.name); !errors.Is(err, tt.wantErr) {
			t.Errorf("Open(%q): expected %v, got %v", tt.name, tt.wantErr, err)
		}
		if _, err := s.AbsolutePath(tt.name); !errors.Is(err, tt.wantErr) {
			t.Errorf("AbsolutePath(%q): expected %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	s := newTestFS(t)
	if _, _, err := s.Open(context.Background(), "nope.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	s := newTestFS(t)
	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestListFiltersNonPDF(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"a.pdf", "B.PDF", "notes.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(docs, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(docs, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewFS(docs, filepath.Join(dir, "audio"))
	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 pdf files, got %d", len(files))
	}
}

func TestDeleteMissingIsBenign(t *testing.T) {
	s := newTestFS(t)
	if err := s.Delete(context.Background(), "nope.pdf"); err != nil {
		t.Fatalf("deleting an absent file must not fail: %v", err)
	}
}

func TestOpenAudio(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio")
	if err := os.MkdirAll(audio, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(audio, "p.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFS(filepath.Join(dir, "docs"), audio)

	rc, size, err := s.OpenAudio(context.Background(), "p.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	if size != 4 {
		t.Errorf("expected size 4, got %d", size)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "RIFF" {
		t.Errorf("unexpected content %q", data)
	}

	if _, _, err := s.OpenAudio(context.Background(), "p.mp3"); !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV for non-wav name, got %v", err)
	}
	if _, _, err := s.OpenAudio(context.Background(), "missing.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAbsolutePath(t *testing.T) {
	s := newTestFS(t)
	path, err := s.AbsolutePath("a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("expected an absolute path, got %q", path)
	}
}
