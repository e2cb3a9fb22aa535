package dupindex

import (
	"net/url"
	"strings"
	"time"
)

// IndexEntry maps one Flickr photo id to its location on Commons.
type IndexEntry struct {
	PhotoID   string
	Title     string
	PageID    string
	ScannedAt time.Time
}

// MediaSearchLink returns a Commons URL showing the given entries. A single
// entry links straight to the file page; several entries link to a
// MediaSearch query over their page ids.
func MediaSearchLink(entries []IndexEntry) string {
	switch len(entries) {
	case 0:
		return ""
	case 1:
		title := strings.ReplaceAll(entries[0].Title, " ", "_")
		return "https://commons.wikimedia.org/wiki/" + url.PathEscape(title)
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.PageID
	}
	query := url.Values{}
	query.Set("search", "pageid:"+strings.Join(ids, "|"))
	query.Set("type", "image")
	return "https://commons.wikimedia.org/w/index.php?" + query.Encode()
}
