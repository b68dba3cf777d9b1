package cmd

import (
	"context"
	"fmt"
	"time"

	"mediamail/internal/mailer"
	"mediamail/internal/redisclient"
	"mediamail/internal/report"

	"github.com/spf13/cobra"
)

var reportSend bool

// reportCmd runs a single aggregation cycle immediately, ignoring the
// per-period reported state. By default the rendered digest goes to stdout.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one aggregation cycle and print or send the digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := buildStore(cfg, rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		d := buildEngine(cfg, store).RunCycle(ctx, cfg.Topics())
		title := report.ExpandVars(cfg.Email.Title, time.Now())
		body, err := report.Render(report.Build(d, title, cfg.Index.OpenBracket, cfg.Index.CloseBracket))
		if err != nil {
			return err
		}

		if !reportSend {
			fmt.Print(body)
			return nil
		}
		if cfg.Email.SMTPHost == "" || cfg.Email.UserAddress == "" {
			return fmt.Errorf("email is not configured")
		}
		return mailer.New(cfg.Email).Send(ctx, report.Subject, body)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportSend, "send", false, "send the digest by email instead of printing it")
	rootCmd.AddCommand(reportCmd)
}
