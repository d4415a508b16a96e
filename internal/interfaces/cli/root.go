package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	appCtx      = NewContext()
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:           "swarmops",
	Short:         "Docker Swarm host and stack operations",
	Long:          "Swarmops hardens Ubuntu hosts, initializes Docker Swarm and deploys catalogue stacks behind Traefik.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(Version)
			os.Exit(0)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(appCtx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&appCtx.Env, "env", "e", "dev", "Environment (prod/staging/dev)")
	rootCmd.PersistentFlags().StringVarP(&appCtx.ConfigDir, "config", "c", ".", "Configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newHostCommand(appCtx))
	rootCmd.AddCommand(newSwarmCommand(appCtx))
	rootCmd.AddCommand(newStackCommand(appCtx))
	rootCmd.AddCommand(newDNSCommand(appCtx))
	rootCmd.AddCommand(newValidateCommand(appCtx))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
