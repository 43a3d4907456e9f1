package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/ports"
)

func TestPutObjectWritesAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	fs := New(root, "http://localhost:8080/")

	out, err := fs.PutObject(context.Background(), putInput("u1/j1.mp4", "video bytes"))
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	if out.URL != "http://localhost:8080/artifacts/u1/j1.mp4" {
		t.Errorf("unexpected URL: %s", out.URL)
	}
	if out.Size != int64(len("video bytes")) {
		t.Errorf("unexpected size: %d", out.Size)
	}

	data, err := os.ReadFile(filepath.Join(root, "u1", "j1.mp4"))
	if err != nil {
		t.Fatalf("expected object on disk: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestPutObjectOverwritesOnKeyReuse(t *testing.T) {
	fs := New(t.TempDir(), "http://x")
	ctx := context.Background()

	if _, err := fs.PutObject(ctx, putInput("u1/j1.mp4", "first")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := fs.PutObject(ctx, putInput("u1/j1.mp4", "second")); err != nil {
		t.Fatalf("second put: %v", err)
	}

	rc, _, _, err := fs.GetObject(ctx, "u1/j1.mp4")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Errorf("expected overwrite semantics, got %q", data)
	}
}

func TestPutObjectRequiresKey(t *testing.T) {
	fs := New(t.TempDir(), "http://x")

	if _, err := fs.PutObject(context.Background(), putInput("", "data")); err == nil {
		t.Error("expected error for empty object key")
	}
}

func TestGetObjectContentType(t *testing.T) {
	fs := New(t.TempDir(), "http://x")
	ctx := context.Background()

	_, _ = fs.PutObject(ctx, putInput("u1/j1.mp4", "data"))

	rc, contentType, size, err := fs.GetObject(ctx, "u1/j1.mp4")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()

	if contentType != "video/mp4" {
		t.Errorf("expected video/mp4, got %s", contentType)
	}
	if size != 4 {
		t.Errorf("expected size 4, got %d", size)
	}
}

func TestDeleteObject(t *testing.T) {
	fs := New(t.TempDir(), "http://x")
	ctx := context.Background()

	_, _ = fs.PutObject(ctx, putInput("u1/j1.mp4", "data"))

	if err := fs.DeleteObject(ctx, "u1/j1.mp4"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if _, _, _, err := fs.GetObject(ctx, "u1/j1.mp4"); err == nil {
		t.Error("expected GetObject to fail after delete")
	}
}

func putInput(key, content string) ports.PutObjectInput {
	return ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: "video/mp4",
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
	}
}
