package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chronofact/fact/runtime/spec/parser"
)

// newParseCmd validates a descriptive-string specification, reporting
// the structural and connectivity errors a writer would hit first.
func newParseCmd(logger hclog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse and validate a specification, reading from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			s, err := parser.Parse(src)
			if err != nil {
				return err
			}
			logger.Debug("parsed specification", "givens", len(s.Given), "matches", len(s.Matches))
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// newPrintCmd round-trips a specification through the parser and the
// canonical pretty-printer.
func newPrintCmd(logger hclog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "print [file]",
		Short: "Parse a specification and print its canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			s, err := parser.Parse(src)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), parser.Print(s))
			return nil
		},
	}
}
