package screenshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrCaptureFailed is returned when the capture program cannot be started
// or exits unsuccessfully
var ErrCaptureFailed = errors.New("screenshot capture failed")

const (
	PlaceholderMessageID = "{message_id}"
	PlaceholderImagePath = "{image_path}"
	PlaceholderBaseURL   = "{base_url}"
)

// Driver runs the capture program
type Driver struct {
	command []string
	baseURL string
	timeout time.Duration
	workDir string
	stdout  io.Writer
	stderr  io.Writer
}

type Option func(*Driver)

// WithBaseURL sets the value substituted for {base_url}
func WithBaseURL(u string) Option {
	return func(d *Driver) {
		d.baseURL = u
	}
}

// WithTimeout kills the capture program after t. Zero waits indefinitely.
func WithTimeout(t time.Duration) Option {
	return func(d *Driver) {
		d.timeout = t
	}
}

// WithWorkDir sets the directory the program runs in
func WithWorkDir(dir string) Option {
	return func(d *Driver) {
		d.workDir = dir
	}
}

// WithOutput sets where the program's output is streamed
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Driver) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

func NewDriver(command []string, opts ...Option) *Driver {
	d := &Driver{
		command: command,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Args returns the argv the driver runs for a capture
func (d *Driver) Args(messageID int64, imagePath string) []string {
	r := strings.NewReplacer(
		PlaceholderMessageID, strconv.FormatInt(messageID, 10),
		PlaceholderImagePath, imagePath,
		PlaceholderBaseURL, d.baseURL,
	)
	args := make([]string, len(d.command))
	for i, a := range d.command {
		args[i] = r.Replace(a)
	}
	return args
}

// Capture renders the message into imagePath and blocks until the program
// exits
func (d *Driver) Capture(ctx context.Context, messageID int64, imagePath string) error {
	if len(d.command) == 0 {
		return fmt.Errorf("%w: no capture command configured", ErrCaptureFailed)
	}

	if dir := filepath.Dir(imagePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create image directory %s: %w", dir, err)
		}
	}

	// the program resolves paths against its own directory
	if d.workDir != "" && !filepath.IsAbs(imagePath) {
		abs, err := filepath.Abs(imagePath)
		if err != nil {
			return fmt.Errorf("cannot resolve image path %s: %w", imagePath, err)
		}
		imagePath = abs
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := d.Args(messageID, imagePath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = d.workDir
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", ErrCaptureFailed, strings.Join(args, " "), ctx.Err())
		}
		return fmt.Errorf("%w: %s: %v", ErrCaptureFailed, strings.Join(args, " "), err)
	}
	return nil
}
