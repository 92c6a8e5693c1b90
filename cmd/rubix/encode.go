package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rbx-lang/rubix/parser"
	"github.com/rbx-lang/rubix/wire"
)

func newEncodeCmd(a *app) *cobra.Command {
	var out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "encode file...",
		Short: "parse Ruby files and write binary tree streams next to them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if out != "" && len(args) > 1 {
				return fmt.Errorf("--out requires a single input file")
			}
			results, err := a.parseAll(args)
			if err != nil {
				return err
			}
			failed := 0
			for i, r := range results {
				printDiags(r.buf, append(r.res.Errors, r.res.Warnings...))
				if !r.res.Success() {
					failed++
				}
				data, err := serialize(r.res, raw)
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = args[i] + ".rbxt"
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				a.log.Info("encoded",
					zap.String("file", args[i]),
					zap.String("out", path),
					zap.Int("bytes", len(data)))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files had syntax errors", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (single input only)")
	cmd.Flags().BoolVar(&raw, "raw", false, "store the body uncompressed")
	return cmd
}

func serialize(res *parser.Result, raw bool) ([]byte, error) {
	if raw {
		return wire.Serialize(res)
	}
	return wire.SerializeCompressed(res)
}
