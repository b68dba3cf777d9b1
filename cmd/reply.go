package cmd

import (
	"context"
	"fmt"
	"time"

	"mediamail/internal/mailbox"
	"mediamail/internal/platform"
	"mediamail/internal/redisclient"
	"mediamail/internal/responder"

	"github.com/spf13/cobra"
)

// replyCmd polls the reply mailbox once and executes any commands found.
var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Poll the reply mailbox once and act on commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Email.POP3Host == "" {
			return fmt.Errorf("pop3 is not configured")
		}
		if cfg.Platform.BaseURL == "" {
			return fmt.Errorf("platform api is not configured")
		}
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := buildStore(cfg, rdb)
		pc := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token)
		r := responder.New(buildParser(cfg), store, pc)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		bodies, err := mailbox.New(cfg.Email).Fetch()
		if err != nil {
			return err
		}
		acted := 0
		for _, body := range bodies {
			acted += r.Process(ctx, body)
		}
		fmt.Printf("processed %d messages, %d actions\n", len(bodies), acted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replyCmd)
}
