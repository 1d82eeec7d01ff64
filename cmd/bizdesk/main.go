package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sadopc/bizdesk/pkg/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitPartial = 1
	exitError   = 2
)

// partialError reports a command that finished but not for every item,
// such as an upload batch with failed files.
type partialError struct {
	msg string
}

func (e *partialError) Error() string { return e.msg }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := newApp(stdout, stderr)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var partial *partialError
	if errors.As(err, &partial) {
		fmt.Fprintln(stderr, partial.msg)
		return exitPartial
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bizdesk",
		Short:         "Terminal client for the company, contract and file management API",
		Version:       fmt.Sprintf("%s (%s) built %s", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.flags.configPath, "config", "c", "", "path to the config file (default ~/.config/bizdesk/config.yaml)")
	f.StringVar(&a.flags.baseURL, "base-url", "", "API base address, including the /api prefix")
	f.DurationVar(&a.flags.timeout, "timeout", 0, "per-request timeout")
	f.StringVar(&a.flags.proxy, "proxy", "", "proxy URL (http, https or socks5)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.flags.state, "state", "", "session store backend: memory, sqlite or redis")
	f.BoolVar(&a.flags.json, "json", false, "print results as JSON")

	root.AddCommand(
		newCompaniesCmd(a),
		newContractsCmd(a),
		newFilesCmd(a),
		newRawCmd(a),
		newRoutesCmd(a),
		newMockCmd(a),
		newTUICmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no config or network
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bizdesk %s (%s) built %s\n", version.Version, version.Commit, version.Date)
		},
	}
}
