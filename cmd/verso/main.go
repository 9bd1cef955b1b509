package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verso",
		Short: "Pattern router and server-action framework for Go",
		Long: `Verso is a server-action web framework for Go.

It pairs an ordered pattern router with a server-action protocol:
plain HTML forms and payload-aware clients post to the same action
endpoint, and redirects issued inside actions are forwarded
server-side so payload clients never lose a round trip.

  • Ordered route chain with continuation middleware
  • Server actions over fetch or progressive-enhancement forms
  • Request-scoped redirect/revalidation/cookie storage
  • Static serving from a directory or S3
  • Hot reload development mode`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
