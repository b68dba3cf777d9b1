package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

// configShowCmd prints the effective configuration after defaults are
// applied, with credentials masked.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		cfg.Redis.Password = mask(cfg.Redis.Password)
		cfg.Email.SMTPPassword = mask(cfg.Email.SMTPPassword)
		cfg.Email.POP3Password = mask(cfg.Email.POP3Password)
		cfg.OpenAI.APIKey = mask(cfg.OpenAI.APIKey)
		cfg.Platform.Token = mask(cfg.Platform.Token)
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
