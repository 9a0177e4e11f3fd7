package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chronofact/fact/runtime/declaration"
)

// newDeclareCmd resolves a declaration list and prints each entry's
// reference, one "name type hash" line per entry, in declaration order.
func newDeclareCmd(logger hclog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "declare [file]",
		Short: "Resolve a declaration list, printing each entry's hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			decl, err := declaration.Parse(src)
			if err != nil {
				return err
			}
			refs, _, err := declaration.Resolve(decl)
			if err != nil {
				return err
			}
			for _, entry := range decl {
				ref := refs[entry.Name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", entry.Name, ref.Type, ref.Hash)
			}
			logger.Debug("resolved declaration", "entries", len(decl))
			return nil
		},
	}
}
