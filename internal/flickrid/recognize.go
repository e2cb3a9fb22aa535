package flickrid

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"flickbridge/internal/services"
)

// ErrNotFlickr reports that the text is not a recognizable Flickr reference.
// It wraps services.ErrNotRecognized so callers can classify without
// importing this package. Recognized-but-ambiguous shapes (albums, profiles,
// ...) are not errors; they come back as a Ref with a non-photo Kind.
var ErrNotFlickr = fmt.Errorf("%w: not a flickr reference", services.ErrNotRecognized)

var (
	photoPathRe  = regexp.MustCompile(`^/photos/([^/]+)/(\d+)(?:/.*)?$`)
	albumPathRe  = regexp.MustCompile(`^/photos/([^/]+)/(?:albums|sets)(?:/.*)?$`)
	userGalRe    = regexp.MustCompile(`^/photos/([^/]+)/galleries(?:/.*)?$`)
	userPathRe   = regexp.MustCompile(`^/photos/([^/]+)(?:/(?:page\d+|with/\d+))?$`)
	peoplePathRe = regexp.MustCompile(`^/people/([^/]+)(?:/.*)?$`)
	staticFileRe = regexp.MustCompile(`^/[^/]+/(\d+)_[0-9a-z]+(?:_[a-z0-9]+)?\.(?:jpg|jpeg|png|gif)$`)
)

// Recognize normalizes text and classifies it as a Flickr reference.
// The first matching shape wins; matchers are ordered most specific first.
func Recognize(text string) (Ref, error) {
	u, ok := normalizeCandidate(text)
	if !ok {
		return Ref{}, ErrNotFlickr
	}

	host := canonicalHost(u)
	path := strings.TrimRight(u.Path, "/")

	switch {
	case host == "flic.kr":
		return recognizeShortLink(path)
	case host == "flickr.com":
		return recognizePhotoPage(path)
	case isStaticHost(host):
		return recognizeStatic(path)
	default:
		return Ref{}, ErrNotFlickr
	}
}

// PhotoID is a convenience wrapper returning the photo ID when text
// resolves to a single photo.
func PhotoID(text string) (string, bool) {
	ref, err := Recognize(text)
	if err != nil || !ref.IsPhoto() {
		return "", false
	}
	return ref.PhotoID, true
}

// BestURL picks the canonical display URL from a set of URLs known to point
// at the same photo. Sorting alphabetically and taking the last entry
// prefers www.flickr.com links over staticflickr.com ones.
func BestURL(urls []string) string {
	kept := urls[:0:0]
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	sort.Strings(kept)
	return kept[len(kept)-1]
}

func normalizeCandidate(text string) (*url.URL, bool) {
	trimmed := strings.TrimSpace(norm.NFC.String(text))
	if trimmed == "" {
		return nil, false
	}
	if strings.Contains(trimmed, "%") {
		if decoded, err := url.QueryUnescape(trimmed); err == nil {
			trimmed = decoded
		}
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "secure."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func isStaticHost(host string) bool {
	return strings.HasSuffix(host, ".staticflickr.com") ||
		host == "staticflickr.com" ||
		strings.HasSuffix(host, ".static.flickr.com")
}

func recognizeShortLink(path string) (Ref, error) {
	// flic.kr/p/<code> encodes the numeric photo ID in base58.
	if code, ok := strings.CutPrefix(path, "/p/"); ok && code != "" && !strings.Contains(code, "/") {
		id, err := decodeBase58(code)
		if err != nil {
			return Ref{}, ErrNotFlickr
		}
		return Ref{Kind: KindSinglePhoto, PhotoID: id}, nil
	}
	return Ref{}, ErrNotFlickr
}

func recognizePhotoPage(path string) (Ref, error) {
	if path == "" {
		return Ref{Kind: KindHomepage}, nil
	}

	// Tag listings sit under /photos/tags, so they must be checked before
	// the generic /photos/{user}/... shapes.
	if path == "/photos/tags" || strings.HasPrefix(path, "/photos/tags/") {
		return Ref{Kind: KindTag}, nil
	}

	if m := albumPathRe.FindStringSubmatch(path); m != nil {
		return Ref{Kind: KindAlbum, UserID: m[1]}, nil
	}
	if m := userGalRe.FindStringSubmatch(path); m != nil {
		return Ref{Kind: KindGallery, UserID: m[1]}, nil
	}
	if m := photoPathRe.FindStringSubmatch(path); m != nil {
		return Ref{Kind: KindSinglePhoto, UserID: m[1], PhotoID: m[2]}, nil
	}
	if m := userPathRe.FindStringSubmatch(path); m != nil {
		return Ref{Kind: KindUser, UserID: m[1]}, nil
	}
	if m := peoplePathRe.FindStringSubmatch(path); m != nil {
		return Ref{Kind: KindUser, UserID: m[1]}, nil
	}

	switch {
	case strings.HasPrefix(path, "/groups"):
		return Ref{Kind: KindGroup}, nil
	case strings.HasPrefix(path, "/search"):
		return Ref{Kind: KindSearch}, nil
	case strings.HasPrefix(path, "/galleries"):
		return Ref{Kind: KindGallery}, nil
	}

	return Ref{}, ErrNotFlickr
}

func recognizeStatic(path string) (Ref, error) {
	if m := staticFileRe.FindStringSubmatch(strings.ToLower(path)); m != nil {
		return Ref{Kind: KindSinglePhoto, PhotoID: m[1]}, nil
	}
	return Ref{}, ErrNotFlickr
}
