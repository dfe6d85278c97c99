package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/h2non/filetype"
)

// ErrNotImage is returned when an upload's content is not a known image format.
var ErrNotImage = errors.New("file is not an image")

const headerSize = 261

// Sniff checks the leading bytes of r and returns a reader that yields the
// full content again, or ErrNotImage.
func Sniff(r io.Reader) (io.Reader, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !filetype.IsImage(head) {
		return nil, ErrNotImage
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}
