package screenshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Args(t *testing.T) {
	d := NewDriver([]string{"node", "capture.js", "{message_id}", "{image_path}", "--server={base_url}"},
		WithBaseURL("http://localhost:9991"))

	assert.Equal(t,
		[]string{"node", "capture.js", "42", "out/001.png", "--server=http://localhost:9991"},
		d.Args(42, "out/001.png"))
}

func TestDriver_Capture(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "images", "github", "001.png")
	var stdout bytes.Buffer

	d := NewDriver([]string{"sh", "-c", `echo "capturing $0"; printf png > "$1"`, "{message_id}", "{image_path}"},
		WithOutput(&stdout, &stdout))

	require.NoError(t, d.Capture(context.Background(), 42, imagePath))
	assert.Equal(t, "capturing 42\n", stdout.String())

	data, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestDriver_CaptureWorkDir(t *testing.T) {
	t.Chdir(t.TempDir())
	workDir := t.TempDir()

	d := NewDriver([]string{"sh", "-c", `touch ran-here; printf png > "$0"`, "{image_path}"},
		WithWorkDir(workDir), WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, d.Capture(context.Background(), 42, filepath.Join("shots", "001.png")))

	assert.FileExists(t, filepath.Join(workDir, "ran-here"))
	data, err := os.ReadFile(filepath.Join("shots", "001.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.NoFileExists(t, filepath.Join(workDir, "shots", "001.png"))
}

func TestDriver_CaptureFailures(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		opts    []Option
	}{
		{name: "non-zero exit", command: []string{"sh", "-c", "exit 3"}},
		{name: "missing program", command: []string{"hookshot-no-such-capture-program"}},
		{name: "no command", command: nil},
		{name: "timeout", command: []string{"sh", "-c", "exec sleep 5"}, opts: []Option{WithTimeout(50 * time.Millisecond)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts := append([]Option{WithOutput(&out, &out)}, tt.opts...)
			err := NewDriver(tt.command, opts...).Capture(context.Background(), 1, filepath.Join(t.TempDir(), "001.png"))
			assert.ErrorIs(t, err, ErrCaptureFailed)
		})
	}
}
