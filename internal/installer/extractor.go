package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/spf13/afero"
	"github.com/xi2/xz" // For reading .xz compressed data
)

// archiveExtensions lists the supported archive suffixes, longest first so that
// ".tar.gz" wins over ".gz".
var archiveExtensions = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".tar", ".zip", ".7z"}

// ErrUnsupportedArchive is returned for sources whose suffix matches no known format.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// archiveExtension returns the archive suffix of name, or "" if it has none.
func archiveExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// ExtractArchive unpacks the archive at src into dest, both on fsys.
// The format is picked from the file suffix. The first strip path elements of
// every entry are dropped, like tar's --strip-components; entries that would land
// outside dest are rejected.
func ExtractArchive(fsys afero.Fs, src, dest string, strip int) error {
	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return fsError("create directory", dest, err)
	}

	switch archiveExtension(src) {
	case ".zip":
		return extractZip(fsys, src, dest, strip)
	case ".7z":
		return extract7z(fsys, src, dest, strip)
	case ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz":
		return extractTarArchive(fsys, src, dest, strip)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, src)
	}
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(fsys afero.Fs, src, dest string, strip int) error {
	f, err := fsys.Open(src)
	if err != nil {
		return fsError("open", src, err)
	}
	defer f.Close()

	var reader io.Reader = f
	switch archiveExtension(src) {
	case ".tar.gz", ".tgz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream of %s: %w", src, err)
		}
		defer gr.Close()
		reader = gr
	case ".tar.bz2":
		reader = bzip2.NewReader(f)
	case ".tar.xz":
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return fmt.Errorf("failed to read xz stream of %s: %w", src, err)
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src, err)
		}

		target, ok, err := entryTarget(dest, hdr.Name, strip)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fsError("create directory", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(fsys, target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		}
		// Links and special files are not needed to build a component.
	}
}

// extractZip extracts a .zip archive
func extractZip(fsys afero.Fs, src, dest string, strip int) error {
	f, size, err := openSized(fsys, src)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", src, err)
	}

	for _, zf := range r.File {
		if err := extractFile(fsys, dest, strip, zf.Name, zf.FileInfo().Mode(), zf.Open); err != nil {
			return err
		}
	}
	return nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(fsys afero.Fs, src, dest string, strip int) error {
	f, size, err := openSized(fsys, src)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive %s: %w", src, err)
	}

	for _, sf := range r.File {
		if err := extractFile(fsys, dest, strip, sf.Name, sf.FileInfo().Mode(), sf.Open); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes one random-access archive entry (zip, 7z) below dest.
func extractFile(fsys afero.Fs, dest string, strip int, name string, mode fs.FileMode, open func() (io.ReadCloser, error)) error {
	target, ok, err := entryTarget(dest, name, strip)
	if err != nil || !ok {
		return err
	}

	if mode.IsDir() {
		return fsError("create directory", target, fsys.MkdirAll(target, 0o755))
	}
	if !mode.IsRegular() {
		return nil
	}

	rc, err := open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", name, err)
	}
	defer rc.Close()
	return writeEntry(fsys, target, rc, mode)
}

// writeEntry creates target with the entry's permissions and copies r into it.
func writeEntry(fsys afero.Fs, target string, r io.Reader, mode fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fsError("create directory", filepath.Dir(target), err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := fsys.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fsError("create", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fsError("extract", target, err)
	}
	return fsError("close", target, out.Close())
}

// entryTarget maps an archive entry name to its destination path. Leading
// slashes are dropped and any ".." element is rejected. ok is false for entries
// that disappear entirely after stripping.
func entryTarget(dest, name string, strip int) (string, bool, error) {
	var parts []string
	for _, p := range strings.Split(strings.ReplaceAll(name, "\\", "/"), "/") {
		switch p {
		case "", ".":
			continue
		case "..":
			return "", false, fsError("extract", name, errors.New("entry escapes the destination directory"))
		}
		parts = append(parts, p)
	}

	if len(parts) <= strip {
		return "", false, nil
	}
	return filepath.Join(append([]string{dest}, parts[strip:]...)...), true, nil
}

// openSized opens src and returns its size for readers that need random access.
func openSized(fsys afero.Fs, src string) (afero.File, int64, error) {
	f, err := fsys.Open(src)
	if err != nil {
		return nil, 0, fsError("open", src, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fsError("stat", src, err)
	}
	return f, info.Size(), nil
}
