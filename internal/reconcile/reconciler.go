package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"flickbridge/internal/commons"
	"flickbridge/internal/dupindex"
	"flickbridge/internal/flickr"
	"flickbridge/internal/flickrid"
	"flickbridge/internal/logging"
	"flickbridge/internal/sdc"
	"flickbridge/internal/services"
)

// Status classifies the outcome of reconciling one file.
type Status string

const (
	// StatusUnchanged means the file already carried every expected statement.
	StatusUnchanged Status = "unchanged"
	// StatusUpdated means missing statements were written.
	StatusUpdated Status = "updated"
	// StatusFailed means the file could not be reconciled; Reason says why.
	StatusFailed Status = "failed"
)

// Failure reasons attached to StatusFailed results.
const (
	ReasonMissingPage     = "missing_page"
	ReasonNoSource        = "no_source"
	ReasonAmbiguousSource = "ambiguous_source"
	ReasonFetchFailed     = "fetch_failed"
	ReasonWriteRejected   = "write_rejected"
	ReasonPanic           = "panic"
)

// Result reports what happened to one target file.
type Result struct {
	Target  string
	PhotoID string
	Status  Status
	Written int
	Reason  string
	Err     error

	// Warning carries non-fatal observations, such as a duplicate-index
	// entry pointing this photo at a different page.
	Warning string
}

// Reconciler drives the per-file flow: find the Flickr source, fetch its
// metadata, diff, write what is missing.
type Reconciler struct {
	commons commons.Client
	photos  flickr.PhotoSource
	index   *dupindex.Store
	logger  *slog.Logger
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithIndex attaches a duplicate index for cross-checking photo locations.
func WithIndex(index *dupindex.Store) ReconcilerOption {
	return func(r *Reconciler) {
		r.index = index
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "reconcile")
		}
	}
}

// NewReconciler wires the collaborators together.
func NewReconciler(commonsClient commons.Client, photos flickr.PhotoSource, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		commons: commonsClient,
		photos:  photos,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReconcileFile reconciles a single Commons file, named by title.
func (r *Reconciler) ReconcileFile(ctx context.Context, target string) Result {
	result := Result{Target: target}
	title := commons.NormalizeTitle(target)

	data, err := r.commons.GetStructuredData(ctx, title)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		if errors.Is(err, commons.ErrPageMissing) {
			result.Reason = ReasonMissingPage
		} else {
			result.Reason = ReasonFetchFailed
		}
		return result
	}

	found, err := sdc.FindFlickrPhotoID(data.Statements)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = ReasonAmbiguousSource
		result.Err = err
		return result
	}
	if found == nil {
		found, err = r.findInWikitext(ctx, title)
		if err != nil {
			result.Status = StatusFailed
			result.Err = err
			if errors.Is(err, sdc.ErrAmbiguousSource) {
				result.Reason = ReasonAmbiguousSource
			} else if errors.Is(err, services.ErrNotFound) {
				result.Reason = ReasonNoSource
			} else {
				result.Reason = ReasonFetchFailed
			}
			return result
		}
	}
	result.PhotoID = found.PhotoID

	if r.index != nil {
		if entry, lookupErr := r.index.Lookup(ctx, found.PhotoID); lookupErr == nil && entry.PageID != data.PageID {
			result.Warning = fmt.Sprintf("photo %s indexed at %s (%s), not this page",
				found.PhotoID, entry.PageID, entry.Title)
			r.logger.Warn("duplicate index mismatch",
				logging.String(logging.FieldTarget, target),
				logging.String(logging.FieldPhotoID, found.PhotoID),
				logging.String(logging.FieldPageID, entry.PageID))
		}
	}

	expected, err := r.expectedStatements(ctx, found.PhotoID)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = ReasonFetchFailed
		result.Err = err
		return result
	}

	missing := sdc.Diff(expected, data.Statements)
	if len(missing) == 0 {
		result.Status = StatusUnchanged
		r.logger.Debug("already reconciled",
			logging.String(logging.FieldTarget, target),
			logging.String(logging.FieldPhotoID, found.PhotoID))
		return result
	}

	summary := fmt.Sprintf("Update structured data from Flickr photo %s", found.PhotoID)
	if err := r.commons.AddStatements(ctx, title, missing, summary); err != nil {
		result.Status = StatusFailed
		result.Reason = ReasonWriteRejected
		result.Err = err
		return result
	}

	result.Status = StatusUpdated
	result.Written = len(missing)
	r.logger.Info("statements written",
		logging.String(logging.FieldTarget, target),
		logging.String(logging.FieldPhotoID, found.PhotoID),
		logging.Int("written", len(missing)))
	return result
}

// findInWikitext falls back to scanning the file's wikitext for Flickr URLs
// when structured data carries no source.
func (r *Reconciler) findInWikitext(ctx context.Context, title string) (*sdc.FindResult, error) {
	text, err := r.commons.GetWikitext(ctx, title)
	if err != nil {
		return nil, err
	}

	candidates := map[string][]string{}
	for _, url := range flickrid.FindCandidateURLs(text) {
		ref, recognizeErr := flickrid.Recognize(url)
		if recognizeErr != nil || !ref.IsPhoto() {
			continue
		}
		candidates[ref.PhotoID] = append(candidates[ref.PhotoID], url)
	}

	switch len(candidates) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "reconcile", "find source",
			"no flickr reference in structured data or wikitext", nil)
	case 1:
		for photoID, urls := range candidates {
			return &sdc.FindResult{PhotoID: photoID, URL: flickrid.BestURL(urls)}, nil
		}
	}
	return nil, fmt.Errorf("%w: wikitext names %d distinct photos", sdc.ErrAmbiguousSource, len(candidates))
}

// expectedStatements fetches Flickr metadata and derives the expected
// statements. A deleted or private photo still gets its bare photo-id
// statement so the provenance link survives.
func (r *Reconciler) expectedStatements(ctx context.Context, photoID string) ([]sdc.Statement, error) {
	meta, err := r.photos.GetPhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, flickr.ErrPhotoNotFound) || errors.Is(err, flickr.ErrPhotoPrivate) {
			r.logger.Debug("photo gone from flickr, keeping bare id statement",
				logging.String(logging.FieldPhotoID, photoID))
			return []sdc.Statement{sdc.PhotoIDStatement(photoID)}, nil
		}
		return nil, err
	}
	return sdc.ExpectedStatements(*meta), nil
}
