// internal/archive/archive.go
//
// In-memory ZIP builder for normalized images.
// Entry names follow "{id}-{n}.jpg" where n is the smallest positive integer
// not yet used for that id in this archive, so repeated SKUs become
// sku-1.jpg, sku-2.jpg, ... in the order they were added. The id is escaped
// with SafeName first.

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filename and MIME type used when the archive is downloaded.
const (
	Filename    = "images.zip"
	ContentType = "application/zip"
)

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("archive closed")

// Writer accumulates entries into a deflate-compressed ZIP held in memory.
// It is not safe for concurrent use.
type Writer struct {
	buf    bytes.Buffer
	zw     *zip.Writer
	names  map[string]struct{}
	order  []string
	closed bool
	now    func() time.Time
}

// NewWriter returns an empty archive.
func NewWriter() *Writer {
	w := &Writer{names: make(map[string]struct{}), now: time.Now}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// Add stores data under the next free name for id and returns that name.
func (w *Writer) Add(id string, data []byte) (string, error) {
	if w.closed {
		return "", ErrClosed
	}
	name := w.nextName(SafeName(id))

	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.now(),
	})
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	w.names[name] = struct{}{}
	w.order = append(w.order, name)
	return name, nil
}

// nextName tries base-1.jpg, base-2.jpg, ... until one is unused.
func (w *Writer) nextName(base string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s-%d.jpg", base, n)
		if _, taken := w.names[name]; !taken {
			return name
		}
	}
}

// Names returns entry names in insertion order.
func (w *Writer) Names() []string {
	return append([]string{}, w.order...)
}

// Len is the number of entries written.
func (w *Writer) Len() int { return len(w.order) }

// Close finalises the central directory and returns the archive bytes.
// Calling Close twice returns the same bytes.
func (w *Writer) Close() ([]byte, error) {
	if !w.closed {
		w.closed = true
		if err := w.zw.Close(); err != nil {
			return nil, fmt.Errorf("close zip: %w", err)
		}
	}
	return w.buf.Bytes(), nil
}

// unsafeChars are escaped by SafeName. '%' is included so the escaping
// stays reversible.
const unsafeChars = `%/\:*?"<>|`

// SafeName makes an identifier usable as a flat entry name. Path separators,
// characters archive tools trip over, control bytes and '%' are written as
// %XX. Distinct identifiers always map to distinct names, so each SKU keeps
// its own -1, -2, ... sequence.
func SafeName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x20 || c == 0x7f || strings.IndexByte(unsafeChars, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
