// Package archive extracts uploaded sequence-file archives into a staging
// directory, accepting only whitelisted raw-read files at the archive root.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/filex"
	"github.com/dmitrijs2005/seqsubmit/internal/logging"
)

// DefaultSuffixes are the accepted raw-read file extensions.
var DefaultSuffixes = []string{"fq", "fastq", "gz", "gzip", "bz2"}

// Result is the outcome of one extraction.
type Result struct {
	Format Format
	// Files maps accepted entry names to their extracted location.
	Files map[string]string
	// Invalid lists rejected entry names as they appeared in the archive.
	Invalid []string
}

// Extractor materialises archive members into a staging directory.
type Extractor struct {
	suffixes map[string]struct{}
	tempDir  string
	logger   logging.Logger
}

// NewExtractor builds an Extractor accepting the given suffixes
// (case-insensitive, leading dot optional). tempDir is where zip uploads are
// spooled; "" means os.TempDir.
func NewExtractor(suffixes []string, tempDir string, logger logging.Logger) *Extractor {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	set := make(map[string]struct{}, len(suffixes))
	for _, s := range suffixes {
		set[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))] = struct{}{}
	}
	return &Extractor{suffixes: set, tempDir: tempDir, logger: logger.With("module", "archive")}
}

// Extract reads r entry by entry and writes accepted files into dir.
//
// Only a stream that cannot be read at all fails the call, with
// common.ErrCorruptArchive; problems with single entries end up in
// Result.Invalid.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, dir string) (*Result, error) {
	it, format, err := open(r, e.tempDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptArchive, err)
	}
	defer func() {
		if err := it.close(); err != nil {
			e.logger.Warn(ctx, "closing archive", "error", err)
		}
	}()

	res := &Result{Format: format, Files: make(map[string]string)}

	ent, err := it.next()

	// a leading directory entry is the archive root, unless it is noise
	root := ""
	if err == nil && ent.dir && !isNoise(ent.name) {
		root = dirPrefix(ent.name)
		ent, err = it.next()
	}

	for {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorruptArchive, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		name := strings.TrimPrefix(ent.name, root)

		noise := isNoise(ent.name) || isNoise(name)
		reason := "noise"
		if !noise {
			reason = e.reject(ent, name, res)
		}

		if reason != "" {
			e.logger.Debug(ctx, "ignoring archive entry", "entry", ent.name, "reason", reason)

			if !noise {
				res.Invalid = append(res.Invalid, ent.name)
			}

			if ent.dir {
				// the whole subtree goes with its directory
				prefix := dirPrefix(ent.name)
				for {
					ent, err = it.next()
					if err != nil || !strings.HasPrefix(ent.name, prefix) {
						break
					}
				}
				continue
			}

			ent, err = it.next()
			continue
		}

		path, werr := filex.SafeJoin(dir, name)
		if werr == nil {
			werr = writeEntry(ent, path)
		}
		if werr != nil {
			e.logger.Debug(ctx, "failed to extract entry", "entry", ent.name, "error", werr)
			res.Invalid = append(res.Invalid, ent.name)
		} else {
			res.Files[name] = path
		}

		ent, err = it.next()
	}
}

// reject returns why an entry must not be extracted, or "" if it is fine.
func (e *Extractor) reject(ent *entry, name string, res *Result) string {
	switch {
	case ent.dir:
		return "directory"
	case name == "" || strings.ContainsAny(name, `/\`):
		return "nested path"
	case !ent.regular:
		return "not a regular file"
	}
	if _, err := filex.SafeJoin("/", name); err != nil {
		return "unsafe path"
	}
	if _, ok := e.suffixes[strings.ToLower(extension(name))]; !ok {
		return "unsupported suffix"
	}
	if _, dup := res.Files[name]; dup {
		return "duplicate name"
	}
	return ""
}

func writeEntry(ent *entry, path string) (err error) {
	src, err := ent.open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	_, err = io.Copy(dst, src)
	return err
}

// extension returns the text after the last dot, or "" when there is none.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

func dirPrefix(name string) string {
	if strings.HasSuffix(name, "/") {
		return name
	}
	return name + "/"
}

// isNoise matches metadata that macOS adds to archives.
func isNoise(name string) bool {
	return strings.HasPrefix(name, "__MACOSX") || strings.HasSuffix(name, ".DS_Store")
}
