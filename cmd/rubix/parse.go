package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rbx-lang/rubix/parser"
	"github.com/rbx-lang/rubix/source"
)

func newParseCmd(a *app) *cobra.Command {
	var noTree bool
	cmd := &cobra.Command{
		Use:   "parse file...",
		Short: "parse Ruby files and print their trees as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			results, err := a.parseAll(args)
			if err != nil {
				return err
			}
			failed := 0
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			for i, r := range results {
				printDiags(r.buf, append(r.res.Errors, r.res.Warnings...))
				if !r.res.Success() {
					failed++
				}
				if !noTree {
					if len(args) > 1 {
						fmt.Printf("=== %s\n", args[i])
					}
					if err := enc.Encode(r.res.Root); err != nil {
						return err
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files had syntax errors", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noTree, "no-tree", false, "report diagnostics only")
	return cmd
}

type parsed struct {
	buf *source.Buffer
	res *parser.Result
}

// parseAll parses the files concurrently, preserving argument order in
// the returned slice.
func (a *app) parseAll(paths []string) ([]parsed, error) {
	results := make([]parsed, len(paths))
	var g errgroup.Group
	g.SetLimit(parallelism())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			buf, err := a.loadBuffer(path)
			if err != nil {
				return err
			}
			t0 := time.Now()
			res := parser.Parse(buf)
			a.log.Info("parsed",
				zap.String("file", path),
				zap.Int("bytes", buf.Len()),
				zap.Int("errors", len(res.Errors)),
				zap.Duration("elapsed", time.Since(t0)))
			results[i] = parsed{buf: buf, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
