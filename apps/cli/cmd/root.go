package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/pipeline"
	"github.com/abdul-hamid-achik/hookshot/packages/core/provision"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/abdul-hamid-achik/hookshot/packages/core/screenshot"
	"github.com/abdul-hamid-achik/hookshot/packages/http"
	"github.com/abdul-hamid-achik/hookshot/packages/output"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	imageNameFlag     string
	imageDirFlag      string
	customHeadersFlag string
	timeoutFlag       string
	watchFlag         bool
)

var rootCmd = &cobra.Command{
	Use:   "hookshot <integration> <fixture>",
	Short: "Screenshot the message an integration webhook produces",
	Long: `hookshot replays a recorded webhook fixture against the development
server and captures a screenshot of the message it posts.

The integration's bot and channel are created on first use. Every earlier
message of the bot is deleted before the replay, so runs for the same
integration must not overlap.

Examples:
  hookshot github push
  hookshot github push__1_commit.json --image-name 002.png
  hookshot gitlab push --image-dir docs/images/gitlab
  hookshot github push -H '{"X-GitHub-Event": "ping"}'
  hookshot github push --watch`,
	Args:              usageArgs(cobra.ExactArgs(2)),
	PersistentPreRunE: loadEnvFile,
	RunE:              captureCommand,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.Flags().StringVar(&imageNameFlag, "image-name", pipeline.DefaultImageName, "File name of the screenshot (env: HOOKSHOT_IMAGE_NAME)")
	rootCmd.Flags().StringVar(&imageDirFlag, "image-dir", "", "Directory the screenshot is written to (default from config) (env: HOOKSHOT_IMAGE_DIR)")
	rootCmd.Flags().StringVarP(&customHeadersFlag, "custom-headers", "H", "", "JSON object of headers overriding the fixture's headers")
	rootCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "Replay request timeout, 0 waits forever (e.g., 30s) (env: HOOKSHOT_TIMEOUT)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the fixture and re-run on changes")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// usageArgs marks argument validation failures as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

func captureCommand(cmd *cobra.Command, args []string) error {
	customHeaders, err := fixture.ParseCustomHeaders(customHeadersFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if value := stringSetting(cmd, "timeout", timeoutFlag, "TIMEOUT"); value != "" {
		timeout, err := parseTimeout(value)
		if err != nil {
			return err
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}

	console := newConsole(cmd, cfg)
	console.Header(version)

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	defer st.Close()

	p := newPipeline(cmd, cfg, st, console)
	req := pipeline.Request{
		Integration:   args[0],
		Fixture:       args[1],
		ImageName:     stringSetting(cmd, "image-name", imageNameFlag, "IMAGE_NAME"),
		ImageDir:      stringSetting(cmd, "image-dir", imageDirFlag, "IMAGE_DIR"),
		CustomHeaders: customHeaders,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !watchFlag {
		_, err := p.Run(ctx, req)
		return err
	}
	return watch(ctx, cfg, p, req, console)
}

func newPipeline(cmd *cobra.Command, cfg *config.Config, st *store.Store, console *output.Console) *pipeline.Pipeline {
	clientOpts := []http.ClientOption{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithDefaultHeader("User-Agent", "hookshot/"+version),
	}
	for k, v := range cfg.Headers {
		clientOpts = append(clientOpts, http.WithDefaultHeader(k, v))
	}
	client := http.NewClient(clientOpts...)

	// An explicit base URL pins every replay; otherwise the bot's realm decides.
	var replayOpts []replay.ReplayerOption
	if stringSetting(cmd, "base-url", baseURLFlag, "BASE_URL") == "" {
		replayOpts = append(replayOpts, replay.WithRealms(st))
	}

	actors := provision.NewActorProvisioner(st, cfg.AdminEmail, cfg.BotAPIKey,
		provision.WithNotifier(newNotifier(cmd, cfg)),
		provision.WithWarnFunc(console.Warn),
	)

	capturer := screenshot.NewDriver(cfg.CaptureCommand,
		screenshot.WithBaseURL(cfg.BaseURL),
		screenshot.WithTimeout(cfg.CaptureTimeoutDuration()),
		screenshot.WithWorkDir(cfg.CaptureWorkDir),
		screenshot.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)

	return pipeline.New(cfg, pipeline.Deps{
		Actors:   actors,
		Channels: provision.NewChannelProvisioner(st),
		Replayer: replay.NewReplayer(client, st, cfg.BaseURL, console, replayOpts...),
		Locator:  replay.NewLocator(st, console),
		Capturer: capturer,
	}, console)
}
