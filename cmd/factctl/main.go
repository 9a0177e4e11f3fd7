package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "factctl",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	root := &cobra.Command{
		Use:           "factctl",
		Short:         "Inspect and validate fact specifications and declarations",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newParseCmd(logger),
		newPrintCmd(logger),
		newDeclareCmd(logger),
		newRulesCmd(logger),
	)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readSource(args []string) (string, error) {
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(content), nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(content), nil
}
