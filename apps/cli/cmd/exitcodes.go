package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/abdul-hamid-achik/hookshot/packages/core/screenshot"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
)

// Exit codes for hookshot CLI
const (
	// ExitSuccess indicates the screenshot was captured, or the run stopped
	// early because the server rejected the webhook or posted nothing
	ExitSuccess = 0

	// ExitFailure indicates an unexpected error
	ExitFailure = 1

	// ExitParseError indicates a fixture that is not valid JSON
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates the development server could not be reached
	ExitNetworkError = 4

	// ExitCaptureError indicates the capture program failed
	ExitCaptureError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

var (
	errUsage  = errors.New("usage error")
	errConfig = errors.New("configuration error")
)

// exitCode maps an error returned by a command to the process exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, fixture.ErrInvalidCustomHeaders),
		errors.Is(err, integrations.ErrUnknownIntegration):
		return ExitUsageError
	case errors.Is(err, fixture.ErrInvalidFixture):
		return ExitParseError
	case errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, replay.ErrServerUnreachable):
		return ExitNetworkError
	case errors.Is(err, screenshot.ErrCaptureFailed):
		return ExitCaptureError
	default:
		return ExitFailure
	}
}
