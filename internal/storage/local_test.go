package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "license_images"), "/license-images")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Save(context.Background(), "../cnh front.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/license-images/") || !strings.HasSuffix(url, "_cnh_front.png") {
		t.Fatalf("unexpected url %s", url)
	}
	name := strings.TrimPrefix(url, "/license-images/")
	data, err := os.ReadFile(filepath.Join(store.Dir, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestLocalStoreRejectsOversize(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/license-images")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	big := bytes.NewReader(make([]byte, MaxLicenseSize+10))
	if _, err := store.Save(context.Background(), "big.jpg", big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	entries, _ := os.ReadDir(store.Dir)
	if len(entries) != 0 {
		t.Fatalf("oversize file must be removed, found %d entries", len(entries))
	}
}
