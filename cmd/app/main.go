package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "app",
		Short:         "FAQ relay: answers questions from a shared FAQ document over chat and HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(authCmd())
	root.AddCommand(tokenCmd())
	return root
}
