// Package capture reads recorded HTTP responses and extracts their
// Set-Cookie headers. Captures may be stored compressed; the encoding is
// picked from the file extension.
package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// extensions maps file extensions to Content-Encoding tokens
var extensions = map[string]string{
	".gz":      "gzip",
	".gzip":    "gzip",
	".br":      "br",
	".zst":     "zstd",
	".zstd":    "zstd",
	".zz":      "deflate",
	".deflate": "deflate",
}

// EncodingForPath returns the Content-Encoding implied by path's extension,
// or "identity".
func EncodingForPath(path string) string {
	if enc, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return enc
	}
	return "identity"
}

// NewDecompressor wraps r in a reader for the given Content-Encoding.
// "", "identity" and unknown encodings are passed through.
func NewDecompressor(r io.Reader, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return reader, nil
	case "br":
		return io.NopCloser(brotli.NewReader(r)), nil
	case "deflate":
		return flate.NewReader(r), nil
	case "zstd":
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return decoder.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// fileReader closes both the decoder and the file underneath it
type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (f *fileReader) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open opens a capture file, decompressing it according to its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := NewDecompressor(f, EncodingForPath(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	return &fileReader{ReadCloser: rc, file: f}, nil
}
