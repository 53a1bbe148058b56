package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/papergraph/client"
)

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Submit documents",
	}
	cmd.AddCommand(entryAddCmd())
	return cmd
}

func entryAddCmd() *cobra.Command {
	var e client.Entry
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a document under a tag path",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			e.Name = args[0]
			results, err := apiClient.Entries.Add(context.Background(), e)
			if err != nil {
				fatal("add entry", err)
			}
			output(results, results[0].Document.ID)
		},
	}
	cmd.Flags().StringVar(&e.Tag, "tag", "", "Slash-delimited tag path, e.g. ML/Transformers")
	cmd.Flags().StringVar(&e.Link, "link", "", "Document URL")
	cmd.Flags().StringVar(&e.Date, "date", "", "Date added (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&e.Owner, "user", "", "Submitting user")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import entries from a Name,Tag,Link,Date Added CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("open csv", err)
			}
			defer f.Close() //nolint:errcheck // read-only.

			res, err := apiClient.Entries.ImportCSV(context.Background(), f)
			if err != nil {
				fatal("import", err)
			}

			if flagFmt == "table" {
				fmt.Printf("imported: %d  skipped: %d\n", res.Imported, res.Skipped)
				for _, e := range res.Errors {
					fmt.Println("  " + e)
				}
				return
			}
			output(res, fmt.Sprint(res.Imported))
		},
	}
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	var limit int
	backfill := &cobra.Command{
		Use:   "backfill-metadata",
		Short: "Queue metadata resolution for documents without it",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if limit < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit must be non-negative\n")
				os.Exit(1)
			}
			queued, err := apiClient.Admin.BackfillMetadata(context.Background(), limit)
			if err != nil {
				fatal("backfill", err)
			}
			output(map[string]int{"queued": queued}, fmt.Sprint(queued))
		},
	}
	backfill.Flags().IntVar(&limit, "limit", 0, "Max documents to queue (0 = server default)")

	cmd.AddCommand(backfill)
	return cmd
}
