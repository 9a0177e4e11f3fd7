package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chronofact/fact/runtime/rules"
)

// newRulesCmd validates the authorization/distribution/purge blocks of a
// source file and summarizes how many of each it found.
func newRulesCmd(logger hclog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [file]",
		Short: "Parse authorization, distribution, and purge blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			rs, err := rules.Parse(src)
			if err != nil {
				return err
			}
			logger.Debug("parsed rule set",
				"authorization", len(rs.Authorization),
				"distribution", len(rs.Distribution),
				"purge", len(rs.Purge))
			fmt.Fprintf(cmd.OutOrStdout(), "authorization: %d\ndistribution: %d\npurge: %d\n",
				len(rs.Authorization), len(rs.Distribution), len(rs.Purge))
			return nil
		},
	}
}
