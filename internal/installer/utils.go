package installer

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// downloadFile downloads the content located at url and saves it to destPath on fsys.
// It returns an error if the request, a non-200 status, or the file write fails.
func downloadFile(client *http.Client, fsys afero.Fs, url, destPath string) error {
	// Make an HTTP GET request to the given URL
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Anything but 200 is an error page, not an archive
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	// Create or truncate the file at destPath to write the downloaded content
	out, err := fsys.Create(destPath)
	if err != nil {
		return fsError("create", destPath, err)
	}

	// Copy the entire response body into the destination file
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write response to %s: %w", destPath, err)
	}
	return fsError("close", destPath, out.Close())
}

// copyFile copies src to dst on fsys, creating missing parent directories.
// A non-zero mode is applied to dst; otherwise the source mode is kept.
//
// The content is written to a temporary file next to dst and renamed over it, so
// dst may be an executable that is currently running (e.g. mclang-up updating itself).
func copyFile(fsys afero.Fs, src, dst string, mode os.FileMode) (err error) {
	// Open the source file
	in, err := fsys.Open(src)
	if err != nil {
		return fsError("open", src, err)
	}
	defer in.Close()

	// Use the override if provided, otherwise preserve the source mode
	info, err := in.Stat()
	if err != nil {
		return fsError("stat", src, err)
	}
	if mode == 0 {
		mode = info.Mode().Perm()
	}

	// Ensure the destination directory exists
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fsError("create directory", filepath.Dir(dst), err)
	}

	// Stage into a hidden temp file in the same directory so the rename stays on one filesystem
	out, err := afero.TempFile(fsys, filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return fsError("create", dst, err)
	}
	tmp := out.Name()
	defer func() {
		// Drop the temp file whenever it did not make it to dst
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	// Copy contents
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fsError("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return fsError("close", tmp, err)
	}

	// TempFile always creates with 0600
	if err := fsys.Chmod(tmp, mode); err != nil {
		return fsError("chmod", tmp, err)
	}

	// Replace dst in one step; a running binary keeps its old inode
	return fsError("rename", dst, fsys.Rename(tmp, dst))
}

// copyDir recursively copies the directory tree at src into dst, depth first.
// Entries for which skip returns true are left out, along with their contents.
func copyDir(fsys afero.Fs, src, dst string, skip func(name string) bool) error {
	if err := fsys.MkdirAll(dst, 0o755); err != nil {
		return fsError("create directory", dst, err)
	}

	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return fsError("read directory", src, err)
	}

	for _, entry := range entries {
		// Skipped entries take their whole subtree with them
		if skip != nil && skip(entry.Name()) {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		// Recurse into directories, copy regular files, ignore everything else (symlinks, devices)
		switch {
		case entry.IsDir():
			if err := copyDir(fsys, from, to, skip); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := copyFile(fsys, from, to, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipVCS leaves version control metadata out of staged directories.
func skipVCS(name string) bool {
	return name == ".git"
}
