// Package cli implements the x509ext command line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	log := logrus.New()
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "x509ext",
		Short: "Inspect and build X.509 certificate extensions",
		Long: `Inspect and build X.509 certificate extensions.

Understands NameConstraints and OCSPNoCheck, and prints any other
extension as its raw value.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		newPrintCmd(log),
		newDecodeCmd(log),
		newNoCheckCmd(log),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
