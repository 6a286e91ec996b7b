package main

import (
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "haste",
	Short: "Edge triage of streamed documents, prioritizing the interesting ones under constrained uplink",
	Long: cli.Dedent(`
		haste prioritizes the documents of a stream waiting at the cloud edge: a
		bounded queue decides which document to preprocess next (to confirm its
		interestingness) and which document to send next, then a storage policy
		routes every sent document according to its interestingness.
	`),
	SilenceUsage: true,
}
