package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestConsole(verbose bool) (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := NewConsole(WithWriter(&out), WithErrWriter(&errOut), WithNoColor(true), WithVerbose(verbose))
	return c, &out, &errOut
}

func TestConsole_Lines(t *testing.T) {
	c, out, errOut := newTestConsole(false)

	c.Info("plain %d", 1)
	c.Success("done %s", "github")
	c.Warn("careful")
	c.Failure("broken")
	c.Block("Response:", "{\n  \"result\": \"error\"\n}\n")
	c.Error(errors.New("boom"))

	assert.Equal(t, "plain 1\n✓ done github\n! careful\n✗ broken\nResponse:\n  {\n    \"result\": \"error\"\n  }\n", out.String())
	assert.Equal(t, "Error: boom\n", errOut.String())
}

func TestConsole_Detail(t *testing.T) {
	quiet, quietOut, _ := newTestConsole(false)
	quiet.Detail("hidden")
	assert.Empty(t, quietOut.String())
	assert.False(t, quiet.Verbose())

	loud, loudOut, _ := newTestConsole(true)
	loud.Detail("shown %s", "here")
	assert.Equal(t, "  shown here\n", loudOut.String())
}

func TestConsole_Header(t *testing.T) {
	c, out, _ := newTestConsole(false)
	c.Header("dev")
	assert.Equal(t, "hookshot dev\n\n", out.String())
}
