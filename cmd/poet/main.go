package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newApp(stdin, stdout, stderr).rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}

	var cmdErr *commandErr
	if errors.As(err, &cmdErr) {
		if cmdErr.msg != "" {
			fmt.Fprintln(stderr, cmdErr.Error())
		}
		return cmdErr.code
	}
	// flag and argument errors from cobra
	fmt.Fprintf(stderr, FmtErrorCause+"\n", ErrMsgCommandFailed, err)
	return ExitCodeUsageError
}

// app carries the per-invocation state shared by the commands
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	viper      *viper.Viper
	configPath string
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, viper: viper.New()}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIShort,
		Long:          CLILong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	persistentFlags(root, a.viper, &a.configPath)

	root.AddCommand(
		a.serveCommand(),
		a.listCommand(),
		a.getCommand(),
		a.validateCommand(),
		a.versionCommand(),
	)
	return root
}

// commandErr carries the exit code for a failed command. An empty msg
// means the command already reported the failure.
type commandErr struct {
	code int
	msg  string
	err  error
}

func (e *commandErr) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf(FmtErrorCause, e.msg, e.err)
}

func (e *commandErr) Unwrap() error { return e.err }

func commandError(code int, msg string, err error) error {
	return &commandErr{code: code, msg: msg, err: err}
}

func usageError(msg string, err error) error {
	return commandError(ExitCodeUsageError, msg, err)
}

// reported signals a failure already written to the output
func reported(code int) error {
	return &commandErr{code: code}
}
