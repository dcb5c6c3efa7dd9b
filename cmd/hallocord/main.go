package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/hallocord/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitFatalClose = 2
	exitAuthFailed = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hallocord",
		Short: "Connect to a real-time gateway and watch its events",
		Long: `hallocord keeps a single gateway connection open, identifies with a
bot token, answers the server's heartbeat schedule and prints every
dispatch event it receives.

The token is read from HALLOCORD_TOKEN or --token. Other settings come
from hallocord.json in the current directory or any parent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		connectCmd(),
		initCmd(),
		intentsCmd(),
		versionCmd(),
	)
	return rootCmd
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch errors.Code(err) {
	case "H010":
		return exitAuthFailed
	case "H011":
		return exitFatalClose
	}
	return exitError
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
