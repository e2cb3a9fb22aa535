package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flickbridge/internal/dupindex"
)

func newIndexCommand(cmdCtx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Duplicate index utilities",
	}

	indexCmd.AddCommand(newIndexLookupCommand(cmdCtx))
	indexCmd.AddCommand(newIndexMergeCommand(cmdCtx))
	indexCmd.AddCommand(newIndexPruneCommand(cmdCtx))
	indexCmd.AddCommand(newIndexInfoCommand(cmdCtx))

	return indexCmd
}

func withIndex(cmdCtx *commandContext, fn func(*cobra.Command, *dupindex.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdCtx.ensureConfig()
		if err != nil {
			return err
		}
		store, err := dupindex.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}

func newIndexLookupCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "lookup <photo-id...>",
		Short: "Look up Flickr photo ids in the duplicate index",
		Args:  cobra.MinimumNArgs(1),
		RunE: withIndex(cmdCtx, func(cmd *cobra.Command, store *dupindex.Store, args []string) error {
			entries, err := store.LookupMany(cmd.Context(), args)
			if err != nil {
				return err
			}

			if jsonOut {
				type entryView struct {
					PhotoID string `json:"photo_id"`
					Title   string `json:"title"`
					PageID  string `json:"page_id"`
				}
				views := make([]entryView, 0, len(entries))
				for _, entry := range entries {
					views = append(views, entryView{entry.PhotoID, entry.Title, entry.PageID})
				}
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.PhotoID, entry.Title, entry.PageID})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Photo", "Title", "Page"},
				rows,
				nil,
			))
			fmt.Fprintf(out, "%d of %d photo ids found\n", len(entries), len(args))
			if link := dupindex.MediaSearchLink(entries); link != "" {
				fmt.Fprintf(out, "View on Commons: %s\n", link)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")
	return cmd
}

func newIndexMergeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <index-file>",
		Short: "Merge another index into this one (newest scan wins)",
		Args:  cobra.ExactArgs(1),
		RunE: withIndex(cmdCtx, func(cmd *cobra.Command, store *dupindex.Store, args []string) error {
			merged, err := store.Merge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d entries from %s\n", merged, args[0])
			return nil
		}),
	}
}

func newIndexPruneCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <photo-id...>",
		Short: "Remove photo ids from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: withIndex(cmdCtx, func(cmd *cobra.Command, store *dupindex.Store, args []string) error {
			removed, err := store.Prune(cmd.Context(), args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d of %d photo ids\n", removed, len(args))
			return nil
		}),
	}
}

func newIndexInfoCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show index location and size",
		RunE: withIndex(cmdCtx, func(cmd *cobra.Command, store *dupindex.Store, args []string) error {
			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Index: %s\n", store.Path())
			fmt.Fprintf(out, "Indexed photos: %d\n", count)
			return nil
		}),
	}
}
