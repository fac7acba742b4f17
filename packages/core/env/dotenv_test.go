package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "simple key-value",
			content:  "HOOKSHOT_BASE_URL=http://localhost:9991",
			expected: map[string]string{"HOOKSHOT_BASE_URL": "http://localhost:9991"},
		},
		{
			name:     "export prefix",
			content:  "export HOOKSHOT_DB=sqlite://dev.db",
			expected: map[string]string{"HOOKSHOT_DB": "sqlite://dev.db"},
		},
		{
			name:     "quoted values",
			content:  "A=\"with spaces\"\nB='single # not a comment'",
			expected: map[string]string{"A": "with spaces", "B": "single # not a comment"},
		},
		{
			name:     "comments and blank lines skipped",
			content:  "# comment\n\nKEY=value\n",
			expected: map[string]string{"KEY": "value"},
		},
		{
			name:     "trailing comment on unquoted value",
			content:  "KEY=value # explained",
			expected: map[string]string{"KEY": "value"},
		},
		{
			name:     "value with equals sign",
			content:  "URL=http://host/path?a=b",
			expected: map[string]string{"URL": "http://host/path?a=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDotEnv(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadDotEnvFileNotFound(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	assert.Error(t, err)
}

func TestLoadAndExportDotEnv(t *testing.T) {
	t.Setenv("HOOKSHOT_TEST_PRESET", "from-env")
	// t.Setenv restores the variable; make sure it starts unset
	t.Setenv("HOOKSHOT_TEST_FRESH", "")
	require.NoError(t, os.Unsetenv("HOOKSHOT_TEST_FRESH"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HOOKSHOT_TEST_PRESET=from-file\nHOOKSHOT_TEST_FRESH=fresh\n"), 0644))

	vars, err := LoadAndExportDotEnv(path)
	require.NoError(t, err)
	assert.Len(t, vars, 2)

	assert.Equal(t, "from-env", os.Getenv("HOOKSHOT_TEST_PRESET"))
	assert.Equal(t, "fresh", os.Getenv("HOOKSHOT_TEST_FRESH"))
}

func TestLookup(t *testing.T) {
	t.Setenv("HOOKSHOT_NAME", "value")
	t.Setenv("HOOKSHOT_FLAG", "yes")
	t.Setenv("HOOKSHOT_OFF", "0")
	t.Setenv("HOOKSHOT_PORT", "8080")
	t.Setenv("HOOKSHOT_BAD_PORT", "eighty")

	assert.Equal(t, "value", String("NAME", "default"))
	assert.Equal(t, "default", String("UNSET_NAME", "default"))

	assert.True(t, Bool("FLAG", false))
	assert.False(t, Bool("OFF", true))
	assert.True(t, Bool("UNSET_FLAG", true))

	assert.Equal(t, 8080, Int("PORT", 1))
	assert.Equal(t, 1, Int("BAD_PORT", 1))
}
