// Package storage keeps uploaded driver-license images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"locacar/internal/utils"

	"github.com/google/uuid"
)

// MaxLicenseSize caps a single upload at 5 MiB.
const MaxLicenseSize = 5 << 20

var ErrTooLarge = errors.New("file exceeds 5 MiB")

// LocalStore writes files below Dir and exposes them under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return LocalStore{}, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return LocalStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

// Save stores r as "<uuid>_<sanitized name>" and returns the public URL.
// A partial file is removed when copying fails.
func (s LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + "_" + utils.SanitizeFileName(originalName)
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxLicenseSize+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	case n > MaxLicenseSize:
		_ = os.Remove(path)
		return "", ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return "", closeErr
	}
	return s.URLPrefix + "/" + name, nil
}
