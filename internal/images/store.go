// Package images keeps product image files under the public web root.
package images

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"webshop/internal/models"
)

// ProductDir is the public directory uploads are written to.
const ProductDir = "/images/products"

// ErrForeignPath is returned when asked to delete a file that is not a product upload.
var ErrForeignPath = errors.New("path is not a product image")

// Store saves and removes image files below root.
type Store struct {
	root string
}

// NewStore creates a store rooted at the static-asset directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the static-asset directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes r to a fresh "<uuid>_<name>" file in the products directory
// and returns its public path.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(ProductDir, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString() + "_" + cleanName(originalName)
	dst := filepath.Join(dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close image file: %w", err)
	}
	return path.Join(ProductDir, name), nil
}

// Delete removes the file behind publicPath. The empty path and the default
// image are never touched, and a file that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, publicPath string) error {
	if publicPath == "" || publicPath == models.DefaultImageURL {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := s.clean(publicPath)
	if path.Dir(rel) != ProductDir {
		return fmt.Errorf("%w: %q", ErrForeignPath, publicPath)
	}
	p := s.Path(rel)
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// Path returns the file system location of publicPath. Cleaning the path as
// rooted keeps ".." segments from climbing above root.
func (s *Store) Path(publicPath string) string {
	rel := s.clean(publicPath)
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

func (s *Store) clean(publicPath string) string {
	return path.Clean("/" + strings.TrimLeft(publicPath, "/"))
}

// EnsureDefault writes a placeholder at the default image path if nothing is there.
func (s *Store) EnsureDefault() error {
	p := s.Path(models.DefaultImageURL)
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat default image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create default image: %w", err)
	}
	defer f.Close()
	return png.Encode(f, placeholder())
}

func placeholder() image.Image {
	const size = 64
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: 0xdd})
		}
	}
	return img
}

// cleanName keeps only the final element of an uploaded file name.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "image"
	}
	return name
}
