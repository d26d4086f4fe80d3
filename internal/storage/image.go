// Package storage keeps uploaded room photos on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/upload/"

var (
	// ErrEmptyUpload is returned when no file or an empty file is supplied.
	ErrEmptyUpload = errors.New("uploaded file is empty")
	// ErrUnsupportedImage is returned for extensions outside allowedExt.
	ErrUnsupportedImage = errors.New("only image files (jpg, jpeg, png, gif, webp) are allowed")
)

var allowedExt = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}

// LocalImageStore writes images into Dir under random names.
type LocalImageStore struct {
	Dir string
}

// NewLocalImageStore returns a store rooted at dir.  The directory is
// created lazily on first save.
func NewLocalImageStore(dir string) *LocalImageStore { return &LocalImageStore{Dir: dir} }

// SaveUpload stores a multipart upload and returns its public URL.
func (s *LocalImageStore) SaveUpload(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", ErrEmptyUpload
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.Save(fh.Filename, f)
}

// Save copies r into a new file named <uuid>.<ext> where ext comes from
// originalName, and returns /upload/<file>.
func (s *LocalImageStore) Save(originalName string, r io.Reader) (string, error) {
	ext := fileExtension(filepath.Base(originalName))
	if !allowedExt[ext] {
		return "", ErrUnsupportedImage
	}
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir upload dir: %w", err)
	}
	name := uuid.NewString() + "." + ext
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if n == 0 {
		_ = os.Remove(out.Name())
		return "", ErrEmptyUpload
	}
	return PublicPrefix + name, nil
}

func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
