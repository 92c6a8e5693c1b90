package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rbx-lang/rubix/diag"
	"github.com/rbx-lang/rubix/source"
)

type app struct {
	verbose bool
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "rubix",
		Short:         "parse Ruby source and convert trees to and from the binary format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if a.verbose {
				log, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				a.log = log
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log per-file timing")
	cmd.AddCommand(newParseCmd(a), newEncodeCmd(a), newDecodeCmd(a))
	return cmd
}

func (a *app) loadBuffer(path string) (*source.Buffer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return source.NewBuffer(path, b), nil
}

// printDiags renders diagnostics to stderr, colorized when stderr is a
// terminal.
func printDiags(buf *source.Buffer, diags []diag.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	colorize := term.IsTerminal(int(os.Stderr.Fd()))
	fmt.Fprint(os.Stderr, diag.RenderAll(buf, diags, colorize))
}

func parallelism() int {
	return runtime.GOMAXPROCS(0)
}
