package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/papergraph/client"
)

func newTreeCmd() *cobra.Command {
	var (
		opts      client.TreeOptions
		collapsed string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tag hierarchy",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if collapsed != "" {
				opts.Collapsed = strings.Split(collapsed, ",")
			}

			tree, err := apiClient.Graph.TagTree(context.Background(), opts)
			if err != nil {
				fatal("tag tree", err)
			}

			if flagFmt == "table" {
				formatTree(tree.Visible)
				for _, d := range tree.Dropped {
					fmt.Printf("dropped: %q (%s)\n", d.Record.Path, d.Reason)
				}
				return
			}
			output(tree, fmt.Sprint(len(tree.Visible)))
		},
	}
	cmd.Flags().StringVar(&opts.Order, "order", "", "Sibling order: sorted|insertion")
	cmd.Flags().StringVar(&opts.Duplicates, "duplicates", "", "Duplicate path policy: overwrite|keep_first|fail")
	cmd.Flags().StringVar(&opts.EmptySegments, "empty-segments", "", "Empty segment policy: skip|reject")
	cmd.Flags().StringVar(&collapsed, "collapsed", "", "Comma-separated tag paths to collapse")
	return cmd
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Dump the full node/link graph",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			g, err := apiClient.Graph.Get(context.Background())
			if err != nil {
				fatal("graph", err)
			}

			if flagFmt == "table" {
				headers := []string{"ID", "TYPE", "TITLE", "VAL"}
				rows := make([][]string, 0, len(g.Nodes))
				for _, n := range g.Nodes {
					rows = append(rows, []string{n.ID, string(n.Type), n.Title, fmt.Sprint(n.Val)})
				}
				formatTable(headers, rows)
				return
			}
			output(g, fmt.Sprint(len(g.Nodes)))
		},
	}
}
