package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Inspect nodes",
	}
	cmd.AddCommand(nodeGetCmd())
	cmd.AddCommand(nodeMetadataCmd())
	return cmd
}

func nodeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a node by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			node, err := apiClient.Nodes.Get(context.Background(), args[0])
			if err != nil {
				fatal("get node", err)
			}
			output(node, node.ID)
		},
	}
}

func nodeMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <id>",
		Short: "Show bibliographic metadata for a document node",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			meta, err := apiClient.Nodes.Metadata(context.Background(), args[0])
			if err != nil {
				fatal("node metadata", err)
			}
			output(meta, meta.Record.Title)
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <reference>",
		Short: "Resolve a link or title to title, authors and abstract",
		Long: "Resolve runs the server's lookup chain (arXiv, DOI services, then title search) " +
			"without storing the result.",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rec, err := apiClient.Metadata.Resolve(context.Background(), args[0])
			if err != nil {
				fatal("resolve", err)
			}

			if flagFmt == "table" {
				formatTable([]string{"FIELD", "VALUE"}, [][]string{
					{"title", rec.Title},
					{"author", rec.Authors},
					{"publisher", rec.Publisher},
					{"date", rec.Date},
					{"doi", rec.DOI},
					{"source", string(rec.Source)},
				})
				return
			}
			output(rec, rec.Title)
		},
	}
}
