package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/normalize"
	"github.com/wikibots/redirect-patroller/internal/policy"
	"github.com/wikibots/redirect-patroller/internal/rules"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
)

func newClassifyCmd() *cobra.Command {
	var configPath string
	var title, target, creator string
	var trusted []string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Decide a single title/target pair offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || target == "" {
				return errors.New("title and target are required")
			}

			cfg := config.Default()
			if configPath != "" {
				loaded, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = *loaded
			}
			engine, err := rules.BuildEngine(&cfg)
			if err != nil {
				return err
			}

			pair := normalize.Normalize(title, target)
			decision := engine.Decide(pair.Title, pair.Target, creator, trustlist.NewSet(trusted...))

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, policy.AuditLine(pair.Title, pair.Target, creator, decision.Patrol)); err != nil {
				return err
			}
			switch {
			case decision.Trusted:
				_, err = fmt.Fprintln(out, "matched: trusted creator")
			case decision.Patrol:
				rule, _ := rules.Lookup(string(decision.Rule))
				_, err = fmt.Fprintf(out, "matched: %s %s\n", rule.ID, rule.Name)
			default:
				active := make([]string, 0, len(engine.Rules()))
				for _, id := range engine.Rules() {
					active = append(active, string(id))
				}
				_, err = fmt.Fprintf(out, "no match (checked %s)\n", strings.Join(active, " "))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (for disabled rules)")
	cmd.Flags().StringVar(&title, "title", "", "Redirect title")
	cmd.Flags().StringVar(&target, "target", "", "Redirect target")
	cmd.Flags().StringVar(&creator, "creator", "", "Redirect creator")
	cmd.Flags().StringSliceVar(&trusted, "trusted", nil, "Trusted creators (comma separated)")

	return cmd
}
