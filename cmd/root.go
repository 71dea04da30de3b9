package cmd

import (
	"errors"
	"fmt"
	"os"

	"rewrite-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rewrite-manager",
	Short: "Catalog URL rewrite maintenance",
	Long: `Rewrite Manager rebuilds the canonical URL rewrites of a Magento catalog.
It regenerates whole category trees or selected products, store by store,
and reports every URL that could not be written because of a collision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the root command and exits with the code of the returned error.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	code := 1
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	// Console output with ISO8601 timestamps, independent of the configured log format.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr == nil {
		l.Error("command failed", zap.Error(err), zap.Int("exit_code", code))
		_ = l.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}
