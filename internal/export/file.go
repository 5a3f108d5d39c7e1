package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drummonds/gpframes/internal/style"
)

// File is an encoded image ready to leave the process.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Downloader saves a file locally: into a directory, or as an HTTP
// attachment for a browser to save.
type Downloader interface {
	Download(ctx context.Context, f File) error
}

// Filename builds <prefix>-<key>.<ext>. Keys are reduced to characters
// safe in a file name; a key with nothing left uses the default style.
func Filename(prefix, key string, format Format) string {
	key = SanitizeFilename(key)
	if key == "" {
		key = style.Default
	}
	if prefix == "" {
		return fmt.Sprintf("%s.%s", key, format.Ext())
	}
	return fmt.Sprintf("%s-%s.%s", prefix, key, format.Ext())
}

// SanitizeFilename replaces path separators and other characters that are
// invalid in file names with underscores.
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\x00"}
	result := filename
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, result)
	// Remove leading/trailing spaces and dots
	return strings.Trim(result, " .")
}

// DirDownloader writes files into Dir, creating it when missing. Files
// appear atomically under their final name.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(d.Dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d.Dir, f.Name))
}

// Path reports where a file named name ends up.
func (d DirDownloader) Path(name string) string {
	return filepath.Join(d.Dir, name)
}
