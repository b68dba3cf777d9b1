package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mediamail/internal/firehose"
	"mediamail/internal/mailbox"
	"mediamail/internal/mailer"
	"mediamail/internal/metrics"
	"mediamail/internal/platform"
	"mediamail/internal/redisclient"
	"mediamail/internal/responder"
	"mediamail/worker"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the service workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		// Redis client
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := buildStore(cfg, rdb)

		var ws []worker.Worker

		var pc *platform.Client
		if cfg.Platform.BaseURL != "" {
			pc = platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token)
		}

		// Firehose collector setup, only when a platform API and tracked
		// keywords are configured.
		if pc != nil && len(cfg.Firehose.Tracks) > 0 {
			interval, err := time.ParseDuration(cfg.Firehose.FetchInterval)
			if err != nil {
				return err
			}
			var limiter *rate.Limiter
			if cfg.Firehose.RatePerSec > 0 {
				burst := cfg.Firehose.Burst
				if burst <= 0 {
					burst = 1
				}
				limiter = rate.NewLimiter(rate.Limit(cfg.Firehose.RatePerSec), burst)
			}
			collector := &worker.FirehoseCollector{
				Client:     pc,
				Normalizer: firehose.NewNormalizer("firehose", cfg.Firehose, buildClassifier(cfg)),
				Store:      store,
				Tracks:     cfg.Firehose.Tracks,
				Interval:   interval,
				Limiter:    limiter,
			}
			slog.Info("starting firehose collector for tracks", "tracks", collector.Tracks)
			ws = append(ws, collector)
		}

		// Digest reporter, only when a recipient is configured.
		if cfg.Email.UserAddress != "" && cfg.Email.SMTPHost != "" {
			checkInterval, err := time.ParseDuration(cfg.Report.CheckInterval)
			if err != nil {
				return err
			}
			reporter := &worker.Reporter{
				Engine:    buildEngine(cfg, store),
				Store:     store,
				Mailer:    mailer.New(cfg.Email),
				Topics:    cfg.Topics(),
				Title:     cfg.Email.Title,
				Frequency: strings.ToLower(cfg.Report.Frequency),
				Interval:  checkInterval,

				OpenBracket:  cfg.Index.OpenBracket,
				CloseBracket: cfg.Index.CloseBracket,
			}
			slog.Info("starting digest reporter", "frequency", reporter.Frequency, "topics", len(reporter.Topics))
			ws = append(ws, reporter)
		}

		// Reply watcher, only when a mailbox and a platform API are configured.
		if pc != nil && cfg.Email.POP3Host != "" {
			watcher := &worker.ReplyWatcher{
				Mailbox:   mailbox.New(cfg.Email),
				Responder: responder.New(buildParser(cfg), store, pc),
			}
			slog.Info("starting reply watcher", "host", cfg.Email.POP3Host)
			ws = append(ws, watcher)
		}

		if cfg.App.MetricsAddr != "" {
			metrics.StartServer(cfg.App.MetricsAddr)
		}

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		if err := mgr.Start(ctx); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
