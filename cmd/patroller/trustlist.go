package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wikibots/redirect-patroller/internal/mediawiki"
	"github.com/wikibots/redirect-patroller/internal/patroller"
	"go.uber.org/zap"
)

func newTrustListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "trustlist",
		Short: "Fetch and print the parsed trust list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.TrustList.Page == "" {
				return errors.New("trustList.page is not configured")
			}

			client, err := mediawiki.New(cfg.Wiki, zap.NewNop())
			if err != nil {
				return err
			}
			set, err := patroller.LoadTrustList(cmd.Context(), client, cfg.TrustList.Page, patroller.TrustMarkers(cfg.TrustList))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range set.Names() {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(out, "%d trusted creators\n", set.Len())
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
