package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/devserver"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
	"github.com/spf13/cobra"
)

var (
	servePortFlag      int
	serveDelayFlag     string
	serveSeedFlag      bool
	serveRateLimitFlag float64
	serveBurstFlag     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development webhook receiver",
	Long: `Start an HTTP server that accepts replayed webhooks the way the messaging
server does and stores one message per accepted payload.

The server:
- Serves every integration's webhook path (see 'hookshot list')
- Authenticates the integration bot by its API key
- Posts into the channel named by the stream parameter
- Answers 429 when webhooks arrive faster than the rate limit

Examples:
  hookshot serve
  hookshot serve --port 9991 --seed
  hookshot serve --delay 200ms --rate-limit 5`,
	Args: usageArgs(cobra.NoArgs),
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&servePortFlag, "port", "p", 0, "Port to listen on (default from config) (env: HOOKSHOT_PORT)")
	serveCmd.Flags().StringVarP(&serveDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	serveCmd.Flags().BoolVar(&serveSeedFlag, "seed", true, "Create the development realm and admin account if missing (env: HOOKSHOT_SEED)")
	serveCmd.Flags().Float64Var(&serveRateLimitFlag, "rate-limit", 0, "Webhooks accepted per second, 0 uses the config (default from config)")
	serveCmd.Flags().IntVar(&serveBurstFlag, "burst", 0, "Webhooks accepted in a burst (default from config)")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if serveDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(serveDelayFlag)
		if err != nil {
			return fmt.Errorf("%w: invalid delay value %q: %v", errUsage, serveDelayFlag, err)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	port, rps, burst := cfg.Serve.Port, cfg.Serve.RateLimit, cfg.Serve.Burst
	if p := intSetting(cmd, "port", servePortFlag, "PORT"); p > 0 {
		port = p
	}
	if serveRateLimitFlag > 0 {
		rps = serveRateLimitFlag
	}
	if serveBurstFlag > 0 {
		burst = serveBurstFlag
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := newConsole(cmd, cfg)
	seed, ok := boolSetting(cmd, "seed", serveSeedFlag, "SEED")
	if !ok {
		seed = serveSeedFlag
	}
	if seed {
		admin, err := st.Seed(ctx, store.SeedOptions{
			RealmSubdomain: "zulip",
			RealmName:      "Zulip Dev",
			RealmURI:       fmt.Sprintf("http://localhost:%d", port),
			AdminEmail:     cfg.AdminEmail,
			AdminName:      "Iago",
		})
		if err != nil {
			return err
		}
		console.Detail("admin %s in realm %d", admin.Email, admin.RealmID)
	}
	console.Info("Database: %s", st.DataSource())

	opts := []devserver.Option{
		devserver.WithPort(port),
		devserver.WithDelay(delay),
		devserver.WithVerbose(cfg.GetVerbose()),
		devserver.WithRateLimit(rps, burst),
	}
	if cfg.Serve.MaxPayloadSize > 0 {
		opts = append(opts, devserver.WithMaxPayloadSize(cfg.Serve.MaxPayloadSize))
	}
	return devserver.NewServer(st, opts...).StartWithContext(ctx)
}
