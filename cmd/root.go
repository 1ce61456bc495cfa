package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jagaapp/jaga/version"
)

var isDevEnv bool

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "jaga",
		Short: `jaga is a personal-safety escalation server.

It keeps each account's emergency contacts & push tokens current, and runs
the escalation flow that notifies those contacts when the account holder
raises an alert & does not mark themself safe in time.`,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}
