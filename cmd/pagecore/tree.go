package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTreeCmd(a *app) *cobra.Command {
	var boxesOnly, nodesOnly bool
	cmd := &cobra.Command{
		Use:   "tree <url-or-file>",
		Short: "Print the node tree and the box tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator, err := toLocator(args[0])
			if err != nil {
				return err
			}
			page, fetcher := a.newPage()
			defer fetcher.Close()
			if err := page.Load(cmd.Context(), locator); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !boxesOnly {
				fmt.Fprintln(out, page.Tree().Dump())
			}
			if !nodesOnly {
				fmt.Fprintln(out, page.Boxes().Dump())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&boxesOnly, "boxes", false, "print only the box tree")
	cmd.Flags().BoolVar(&nodesOnly, "nodes", false, "print only the node tree")
	cmd.MarkFlagsMutuallyExclusive("boxes", "nodes")
	return cmd
}
