package feed

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/backtester/market"
)

// Compression suffixes understood by the CSV source.
const (
	extXZ   = ".xz"
	extGzip = ".gz"
)

func compression(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extXZ, extGzip:
		return ext
	}
	return ""
}

// decompress wraps r according to the compression suffix of path.
func decompress(path string, r io.Reader) (io.Reader, error) {
	switch compression(path) {
	case extXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, malformedf("%s: %v", path, err)
		}
		return xr, nil
	case extGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, malformedf("%s: %v", path, err)
		}
		return gr, nil
	}
	return r, nil
}

// CreateCSV writes s to path with WriteCSV, compressing with xz or gzip
// when the path ends in .xz or .gz.
func CreateCSV(path string, s market.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.WriteCloser
	switch compression(path) {
	case extXZ:
		w, err = xz.NewWriter(f)
	case extGzip:
		w = gzip.NewWriter(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if w == nil {
		if err := WriteCSV(f, s); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	if err := WriteCSV(w, s); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
