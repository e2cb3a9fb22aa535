package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flickbridge/internal/commons"
	"flickbridge/internal/config"
	"flickbridge/internal/dupindex"
	"flickbridge/internal/flickr"
	"flickbridge/internal/reconcile"
)

func newReconcileCommand(cmdCtx *commandContext) *cobra.Command {
	var fromFile string
	var useIndex bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "reconcile [file titles...]",
		Short: "Add missing structured data statements from Flickr metadata",
		Long: "Reconcile reads each file's structured data, finds its Flickr " +
			"source, fetches current Flickr metadata, and writes exactly the " +
			"statements that are missing. Existing statements are never changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			targets, err := collectTargets(args, fromFile)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				return fmt.Errorf("no targets: pass file titles or --from-file")
			}

			opts := []reconcile.ReconcilerOption{reconcile.WithLogger(logger)}
			if useIndex {
				index, err := dupindex.Open(cfg)
				if err != nil {
					return err
				}
				defer index.Close()
				opts = append(opts, reconcile.WithIndex(index))
			}

			reconciler := reconcile.NewReconciler(
				newCommonsClient(cfg),
				newFlickrClient(cfg),
				opts...,
			)
			runner := reconcile.NewRunner(reconciler, cfg.Reconcile, logger)

			ctx, stop := signalContext()
			defer stop()

			summary := runner.Run(ctx, targets)

			if jsonOut {
				if err := writeJSON(cmd, summaryView(summary)); err != nil {
					return err
				}
			} else {
				renderSummary(cmd, summary)
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d targets failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read file titles from a file, one per line")
	cmd.Flags().BoolVar(&useIndex, "use-index", false, "Cross-check photo locations against the duplicate index")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON")
	return cmd
}

func newFlickrClient(cfg *config.Config) *flickr.Client {
	return flickr.NewClient(
		flickr.Config{
			APIKey:         cfg.Flickr.APIKey,
			BaseURL:        cfg.Flickr.BaseURL,
			TimeoutSeconds: cfg.Flickr.TimeoutSeconds,
		},
		flickr.WithRetryPolicy(cfg.Reconcile.RetryAttempts,
			time.Duration(cfg.Reconcile.RetryBaseMilli)*time.Millisecond, 0),
	)
}

func newCommonsClient(cfg *config.Config) *commons.HTTPClient {
	return commons.NewHTTPClient(
		commons.Config{
			APIURL:         cfg.Commons.APIURL,
			UserAgent:      cfg.Commons.UserAgent,
			AccessToken:    cfg.Commons.AccessToken,
			TimeoutSeconds: cfg.Commons.TimeoutSeconds,
		},
		commons.WithRetryPolicy(cfg.Reconcile.RetryAttempts,
			time.Duration(cfg.Reconcile.RetryBaseMilli)*time.Millisecond, 0),
	)
}

func collectTargets(args []string, fromFile string) ([]string, error) {
	targets := append([]string(nil), args...)
	if fromFile == "" {
		return targets, nil
	}

	f, err := os.Open(fromFile)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read target list: %w", err)
	}
	return targets, nil
}

type resultView struct {
	Target  string `json:"target"`
	PhotoID string `json:"photo_id,omitempty"`
	Status  string `json:"status"`
	Written int    `json:"written,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type runView struct {
	RunID     string       `json:"run_id"`
	Unchanged int          `json:"unchanged"`
	Updated   int          `json:"updated"`
	Failed    int          `json:"failed"`
	Results   []resultView `json:"results"`
}

func summaryView(summary reconcile.Summary) runView {
	view := runView{
		RunID:     summary.RunID,
		Unchanged: summary.Unchanged,
		Updated:   summary.Updated,
		Failed:    summary.Failed,
	}
	for _, result := range summary.Results {
		rv := resultView{
			Target:  result.Target,
			PhotoID: result.PhotoID,
			Status:  string(result.Status),
			Written: result.Written,
			Reason:  result.Reason,
			Warning: result.Warning,
		}
		if result.Err != nil {
			rv.Error = result.Err.Error()
		}
		view.Results = append(view.Results, rv)
	}
	return view
}

func renderSummary(cmd *cobra.Command, summary reconcile.Summary) {
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		detail := result.Reason
		if detail == "" {
			detail = result.Warning
		}
		rows = append(rows, []string{
			result.Target,
			result.PhotoID,
			string(result.Status),
			fmt.Sprintf("%d", result.Written),
			detail,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Target", "Photo", "Status", "Written", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Run %s: %d unchanged, %d updated, %d failed\n",
		summary.RunID, summary.Unchanged, summary.Updated, summary.Failed)
}
