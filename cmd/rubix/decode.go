package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbx-lang/rubix/wire"
)

func newDecodeCmd(a *app) *cobra.Command {
	var srcPath string
	cmd := &cobra.Command{
		Use:   "decode stream.rbxt",
		Short: "decode a binary tree stream and print it as JSON",
		Long: `Decode reads a stream produced by encode and prints the tree as
JSON.  Locations in the stream are byte offsets into the original
source, which is read from --source or inferred by trimming the .rbxt
extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if srcPath == "" {
				srcPath = strings.TrimSuffix(args[0], ".rbxt")
				if srcPath == args[0] {
					return fmt.Errorf("cannot infer the source path from %q; pass --source", args[0])
				}
			}
			buf, err := a.loadBuffer(srcPath)
			if err != nil {
				return err
			}
			res, err := wire.Deserialize(buf.Bytes(), data)
			if err != nil {
				return err
			}
			printDiags(buf, append(res.Errors, res.Warnings...))
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Root)
		},
	}
	cmd.Flags().StringVarP(&srcPath, "source", "s", "", "path to the original Ruby source")
	return cmd
}
