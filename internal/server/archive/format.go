package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format names the container detected for an upload.
type Format string

const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGz   Format = "tar.gz"
	FormatTarZstd Format = "tar.zst"
	FormatTarLZ4  Format = "tar.lz4"
	FormatTarBz2  Format = "tar.bz2"
)

var errUnknownFormat = errors.New("unrecognised archive format")

var (
	magicZip       = []byte("PK\x03\x04")
	magicZipEmpty  = []byte("PK\x05\x06")
	magicZipSpan   = []byte("PK\x07\x08")
	magicGzip      = []byte{0x1f, 0x8b}
	magicZstd      = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4       = []byte{0x04, 0x22, 0x4d, 0x18}
	magicBzip2     = []byte("BZh")
	tarMagicOffset = 257
)

// entry is one archive member in stream order.
type entry struct {
	name    string
	dir     bool
	regular bool
	open    func() (io.ReadCloser, error)
}

// iterator walks archive members sequentially. next returns io.EOF after the
// last member.
type iterator interface {
	next() (*entry, error)
	close() error
}

func detect(head []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(head, magicZip), bytes.HasPrefix(head, magicZipEmpty), bytes.HasPrefix(head, magicZipSpan):
		return FormatZip, nil
	case bytes.HasPrefix(head, magicGzip):
		return FormatTarGz, nil
	case bytes.HasPrefix(head, magicZstd):
		return FormatTarZstd, nil
	case bytes.HasPrefix(head, magicLZ4):
		return FormatTarLZ4, nil
	case bytes.HasPrefix(head, magicBzip2):
		return FormatTarBz2, nil
	case len(head) >= tarMagicOffset+5 && string(head[tarMagicOffset:tarMagicOffset+5]) == "ustar":
		return FormatTar, nil
	}
	return "", errUnknownFormat
}

// open sniffs r and returns an iterator over its members. Zip archives need
// random access, so they are spooled to a temporary file under tempDir first.
func open(r io.Reader, tempDir string) (iterator, Format, error) {
	br := bufio.NewReaderSize(r, 1024)
	head, _ := br.Peek(512)

	format, err := detect(head)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatZip:
		it, err := openZip(br, tempDir)
		return it, format, err
	case FormatTar:
		return newTarIterator(br, nil), format, nil
	case FormatTarGz:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, err
		}
		return newTarIterator(zr, zr.Close), format, nil
	case FormatTarZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, format, err
		}
		return newTarIterator(zr, func() error { zr.Close(); return nil }), format, nil
	case FormatTarLZ4:
		return newTarIterator(lz4.NewReader(br), nil), format, nil
	case FormatTarBz2:
		return newTarIterator(bzip2.NewReader(br), nil), format, nil
	}
	return nil, "", errUnknownFormat
}

type tarIterator struct {
	tr      *tar.Reader
	closeFn func() error
}

func newTarIterator(r io.Reader, closeFn func() error) *tarIterator {
	return &tarIterator{tr: tar.NewReader(r), closeFn: closeFn}
}

func (t *tarIterator) next() (*entry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	mode := hdr.FileInfo().Mode()
	return &entry{
		name:    hdr.Name,
		dir:     hdr.Typeflag == tar.TypeDir || strings.HasSuffix(hdr.Name, "/"),
		regular: mode.IsRegular(),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(t.tr), nil
		},
	}, nil
}

func (t *tarIterator) close() error {
	if t.closeFn == nil {
		return nil
	}
	return t.closeFn()
}

type zipIterator struct {
	spool *os.File
	files []*zip.File
	pos   int
}

func openZip(r io.Reader, tempDir string) (*zipIterator, error) {
	spool, err := os.CreateTemp(tempDir, "upload-*.zip")
	if err != nil {
		return nil, fmt.Errorf("spool archive: %w", err)
	}
	it := &zipIterator{spool: spool}

	size, err := io.Copy(spool, r)
	if err != nil {
		_ = it.close()
		return nil, fmt.Errorf("spool archive: %w", err)
	}

	zr, err := zip.NewReader(spool, size)
	if err != nil {
		_ = it.close()
		return nil, err
	}
	it.files = zr.File
	return it, nil
}

func (z *zipIterator) next() (*entry, error) {
	if z.pos >= len(z.files) {
		return nil, io.EOF
	}
	f := z.files[z.pos]
	z.pos++

	mode := f.Mode()
	return &entry{
		name:    f.Name,
		dir:     mode.IsDir() || strings.HasSuffix(f.Name, "/"),
		regular: mode.IsRegular(),
		open:    f.Open,
	}, nil
}

func (z *zipIterator) close() error {
	name := z.spool.Name()
	err := z.spool.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
