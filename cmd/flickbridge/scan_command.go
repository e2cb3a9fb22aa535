package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flickbridge/internal/dupindex"
	"flickbridge/internal/snapshot"
)

func newScanCommand(cmdCtx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "scan <dump-file>",
		Short: "Scan a Commons dump into the duplicate index",
		Long: "Scan streams a structured-data dump (JSON array, optionally .gz or " +
			".bz2) or a revision-history XML export, indexes every Flickr photo " +
			"reference it finds, and appends anomalies to warnings.log and " +
			"errors.log in the log directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			lock := dupindex.NewBuildLock(cfg.Paths.IndexDir)
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := dupindex.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sink, err := snapshot.NewBuildSink(store, cfg.Paths.LogDir)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			if workers <= 0 {
				workers = cfg.Scanner.Workers
			}
			scanner := snapshot.NewScanner(workers, logger)
			scanErr := scanner.Scan(ctx, args[0], sink)
			if closeErr := sink.Close(ctx); scanErr == nil {
				scanErr = closeErr
			}
			if scanErr != nil {
				return scanErr
			}

			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed photos: %d\nIndex: %s\nAnomaly logs: %s\n",
				count, store.Path(), cfg.Paths.LogDir)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Parser workers (defaults to the configured count)")
	return cmd
}
