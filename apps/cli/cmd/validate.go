package cmd

import (
	"net/url"
	"slices"

	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/pipeline"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <integration> <fixture>",
	Short: "Check a fixture and show the request it would replay",
	Long: `Resolve a fixture and its headers without touching the development server
or the database. Prints the webhook URL, the effective headers and the path
the screenshot would be written to.

Examples:
  hookshot validate github push
  hookshot validate github push -H '{"X-GitHub-Event": "ping"}'`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: validateCommand,
}

var (
	validateHeadersFlag   string
	validateImageNameFlag string
	validateImageDirFlag  string
)

func init() {
	validateCmd.Flags().StringVarP(&validateHeadersFlag, "custom-headers", "H", "", "JSON object of headers overriding the fixture's headers")
	validateCmd.Flags().StringVar(&validateImageNameFlag, "image-name", pipeline.DefaultImageName, "File name of the screenshot (env: HOOKSHOT_IMAGE_NAME)")
	validateCmd.Flags().StringVar(&validateImageDirFlag, "image-dir", "", "Directory the screenshot is written to (default from config) (env: HOOKSHOT_IMAGE_DIR)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	customHeaders, err := fixture.ParseCustomHeaders(validateHeadersFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	console := newConsole(cmd, cfg)

	plan, err := pipeline.New(cfg, pipeline.Deps{}, console).Prepare(pipeline.Request{
		Integration:   args[0],
		Fixture:       args[1],
		ImageName:     stringSetting(cmd, "image-name", validateImageNameFlag, "IMAGE_NAME"),
		ImageDir:      stringSetting(cmd, "image-dir", validateImageDirFlag, "IMAGE_DIR"),
		CustomHeaders: customHeaders,
	})
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("api_key", "<bot api key>")
	query.Set("stream", plan.Integration.Stream)

	console.Success("Valid: %s (%d bytes)", plan.Fixture.Path, len(plan.Fixture.Body))
	console.Info("POST %s?%s", replay.Endpoint(cfg.BaseURL, plan.Integration), query.Encode())

	keys := make([]string, 0, len(plan.Headers))
	for k := range plan.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		console.Info("%s: %s", k, plan.Headers[k])
	}

	console.Info("\nbot: %s", plan.Integration.BotEmail())
	console.Info("image: %s", plan.ImagePath)
	if console.Verbose() {
		console.Block("\npayload:", string(plan.Fixture.Body))
	}
	return nil
}
