package sdc

import (
	"fmt"

	"flickbridge/internal/flickrid"
	"flickbridge/internal/services"
)

// ErrAmbiguousSource reports that a file's structured data points at more
// than one Flickr photo, or at a Flickr URL that is not a single photo. It
// wraps services.ErrAmbiguous for cross-package classification.
var ErrAmbiguousSource = fmt.Errorf("%w: flickr source", services.ErrAmbiguous)

// FindResult names the Flickr photo a file's structured data points at.
// URL is empty when the ID came from a bare photo-ID statement.
type FindResult struct {
	PhotoID string
	URL     string
}

// SourceURLs returns the candidate source URLs recorded on "source of file"
// statements. Statements whose operator qualifier names a service other
// than Flickr are skipped; a missing operator is treated as potentially
// Flickr, since older uploads often omit it.
func SourceURLs(statements []Statement) []string {
	var urls []string
	for _, statement := range statements {
		if statement.Property != PropSourceOfFile {
			continue
		}
		if !operatorIsFlickr(statement) {
			continue
		}
		for _, qualifier := range statement.Qualifiers {
			if qualifier.Property != PropDescribedAtURL && qualifier.Property != PropURL {
				continue
			}
			if qualifier.Type == SnakValue && qualifier.Value.Type == ValueString {
				urls = append(urls, qualifier.Value.String)
			}
		}
	}
	return urls
}

func operatorIsFlickr(statement Statement) bool {
	for _, qualifier := range statement.Qualifiers {
		if qualifier.Property != PropOperator {
			continue
		}
		if qualifier.Type != SnakValue || qualifier.Value.Type != ValueEntity {
			return false
		}
		return qualifier.Value.EntityID == EntityFlickr
	}
	return true
}

// FindFlickrPhotoID derives the Flickr photo a file's structured data points
// at, from the source URLs and any bare photo-ID statements. It returns nil
// when the statements carry no Flickr reference at all, and
// ErrAmbiguousSource when they point at more than one photo or at a
// non-photo Flickr page.
func FindFlickrPhotoID(statements []Statement) (*FindResult, error) {
	candidates := map[string][]string{}

	for _, url := range SourceURLs(statements) {
		ref, err := flickrid.Recognize(url)
		if err != nil {
			continue
		}
		if !ref.IsPhoto() {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousSource, url)
		}
		candidates[ref.PhotoID] = append(candidates[ref.PhotoID], url)
	}

	for _, statement := range statements {
		if statement.Property != PropFlickrPhotoID {
			continue
		}
		if statement.Mainsnak.Type == SnakValue && statement.Mainsnak.Value.Type == ValueString {
			photoID := statement.Mainsnak.Value.String
			if _, seen := candidates[photoID]; !seen {
				candidates[photoID] = nil
			}
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > 1 {
		return nil, fmt.Errorf("%w: %d distinct photo ids", ErrAmbiguousSource, len(candidates))
	}

	for photoID, urls := range candidates {
		return &FindResult{PhotoID: photoID, URL: flickrid.BestURL(urls)}, nil
	}
	return nil, nil
}
