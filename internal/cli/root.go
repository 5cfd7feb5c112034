package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the miniloan command tree. Running it bare starts the server.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "miniloan",
		Short:         "Loan application and EMI management service",
		SilenceUsage:  true,
	}
	serve := newServeCmd()
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newMigrateCmd(), newQuoteCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
