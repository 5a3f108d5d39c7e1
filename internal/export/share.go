package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

var ErrShareUnsupported = errors.New("share is not supported on this platform")

// Payload is what a share sheet receives.
type Payload struct {
	Title string
	Text  string
	Files []File
}

type Sharer interface {
	Share(ctx context.Context, p Payload) error
}

// NoShare is a Sharer for platforms without a share capability.
type NoShare struct{}

func (NoShare) Share(context.Context, Payload) error { return ErrShareUnsupported }

// CommandSharer hands shared files to an external program, for example a
// desktop share helper or an upload script. The title and text are passed
// in GPFRAMES_SHARE_TITLE and GPFRAMES_SHARE_TEXT, and the file paths are
// appended to Args.
type CommandSharer struct {
	Command string
	Args    []string
	TmpDir  string
}

func (s CommandSharer) Share(ctx context.Context, p Payload) error {
	if s.Command == "" {
		return ErrShareUnsupported
	}
	path, err := exec.LookPath(s.Command)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShareUnsupported, err)
	}
	if len(p.Files) == 0 {
		return errors.New("share: nothing to share")
	}

	dir, err := os.MkdirTemp(s.TmpDir, "gpframes-share-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	args := append([]string(nil), s.Args...)
	for _, f := range p.Files {
		name := filepath.Join(dir, SanitizeFilename(f.Name))
		if err := os.WriteFile(name, f.Data, 0o600); err != nil {
			return err
		}
		args = append(args, name)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(),
		"GPFRAMES_SHARE_TITLE="+p.Title,
		"GPFRAMES_SHARE_TEXT="+p.Text,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("share command %s: %w: %s", s.Command, err, out)
	}
	return nil
}
