package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	content := []byte("%PDF-1.4 fake cv")
	key, size, err := store.Save(context.Background(), "user-1", "cv.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), size)
	}
	if key == "" || strings.Contains(key, "cv.pdf") {
		t.Fatalf("expected opaque timestamped key, got %q", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("expected key to keep extension, got %q", key)
	}

	body, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestSaveRejectsTraversalName(t *testing.T) {
	store := New(t.TempDir())
	if _, _, err := store.Save(context.Background(), "user-1", "../escape.pdf", bytes.NewReader([]byte("x"))); err == nil {
		t.Fatalf("expected error for traversal file name")
	}
}

func TestOpenRejectsTraversalKey(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../secret", "/etc/passwd"} {
		if _, err := store.Open(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
