package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/abdul-hamid-achik/hookshot/packages/core/screenshot"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("%w: accepts 2 arg(s), received 1", errUsage), ExitUsageError},
		{"custom headers", fmt.Errorf("%w: not valid JSON", fixture.ErrInvalidCustomHeaders), ExitUsageError},
		{"unknown integration", fmt.Errorf("%w: nope", integrations.ErrUnknownIntegration), ExitUsageError},
		{"malformed fixture", fmt.Errorf("%w: push.json", fixture.ErrInvalidFixture), ExitParseError},
		{"config", fmt.Errorf("%w: bad json", errConfig), ExitConfigError},
		{"server unreachable", fmt.Errorf("%w: http://localhost:9991", replay.ErrServerUnreachable), ExitNetworkError},
		{"capture", fmt.Errorf("%w: exit status 1", screenshot.ErrCaptureFailed), ExitCaptureError},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"0", 0},
		{"1500", 1500 * time.Millisecond},
		{"30s", 30 * time.Second},
		{"1m", time.Minute},
	}
	for _, tt := range tests {
		got, err := parseTimeout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseTimeout("soon")
	assert.ErrorIs(t, err, errUsage)
}

// writeProject lays out a config file and a github fixture in a temp dir
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "fixtures", "github")
	require.NoError(t, os.MkdirAll(fixtures, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "push__1_commit.json"), []byte(`{"ref":"refs/heads/main"}`), 0644))

	configPath := filepath.Join(dir, "hookshot.config.json")
	config := fmt.Sprintf(`{"fixturesDir": %q, "imageDir": "out/{integration}"}`,
		filepath.Join(dir, "fixtures", "{integration}"))
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestValidateCommand(t *testing.T) {
	configPath := writeProject(t)

	out, err := execute(t, "validate", "github", "push__1_commit", "--config", configPath, "--no-color",
		"--base-url", "http://localhost:9991", "-H", `{"X-Custom": "yes"}`, "--image-name", "001.png")
	require.NoError(t, err)
	assert.Contains(t, out, "POST http://localhost:9991/api/v1/external/github?api_key=")
	assert.Contains(t, out, "X-GITHUB-EVENT: push")
	assert.Contains(t, out, "X-Custom: yes")
	assert.Contains(t, out, "bot: github-bot@example.com")
	assert.Contains(t, out, filepath.Join("out", "github", "001.png"))
}

func TestValidateCommand_Errors(t *testing.T) {
	configPath := writeProject(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"malformed custom headers", []string{"validate", "github", "push__1_commit", "--config", configPath, "-H", `{"X-Custom":`}, ExitUsageError},
		{"unknown integration", []string{"validate", "nope", "push", "--config", configPath, "-H", ""}, ExitUsageError},
		{"missing argument", []string{"validate", "github", "--config", configPath, "-H", ""}, ExitUsageError},
		{"missing config file", []string{"validate", "github", "push__1_commit", "--config", filepath.Join(t.TempDir(), "none.json"), "-H", ""}, ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}
}

func TestValidateCommand_EnvFile(t *testing.T) {
	configPath := writeProject(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(fmt.Sprintf(
		"HOOKSHOT_CONFIG=%s\nHOOKSHOT_IMAGE_NAME=from-env.png\nHOOKSHOT_IMAGE_DIR=shots\n", configPath)), 0644))

	// registered so the exported values are dropped after the test
	for _, key := range []string{"HOOKSHOT_CONFIG", "HOOKSHOT_IMAGE_NAME", "HOOKSHOT_IMAGE_DIR"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	out, err := execute(t, "validate", "github", "push__1_commit", "--env-file", envFile, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("shots", "from-env.png"))

	t.Run("flag beats env file", func(t *testing.T) {
		out, err := execute(t, "validate", "github", "push__1_commit", "--env-file", envFile, "--no-color",
			"--image-name", "002.png")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join("shots", "002.png"))
	})
}
