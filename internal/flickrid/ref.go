package flickrid

// Kind classifies a recognized Flickr reference. The set is closed: any
// shape the matchers do not produce is reported as unrecognized, never as a
// new kind.
type Kind int

const (
	// KindSinglePhoto resolves to exactly one numeric photo ID.
	KindSinglePhoto Kind = iota
	// KindAlbum is a photoset/album page.
	KindAlbum
	// KindGallery is a curated gallery page.
	KindGallery
	// KindUser is a photostream or profile page.
	KindUser
	// KindGroup is a group pool page.
	KindGroup
	// KindTag is a tag listing page.
	KindTag
	// KindSearch is a search results page.
	KindSearch
	// KindHomepage is the flickr.com front page.
	KindHomepage
)

func (k Kind) String() string {
	switch k {
	case KindSinglePhoto:
		return "single_photo"
	case KindAlbum:
		return "album"
	case KindGallery:
		return "gallery"
	case KindUser:
		return "user"
	case KindGroup:
		return "group"
	case KindTag:
		return "tag"
	case KindSearch:
		return "search"
	case KindHomepage:
		return "homepage"
	default:
		return "unknown"
	}
}

// Ref is a canonicalized Flickr reference. PhotoID is set only for
// KindSinglePhoto; UserID is set where the URL shape carries one.
type Ref struct {
	Kind    Kind
	PhotoID string
	UserID  string
}

// IsPhoto reports whether the reference resolves to a single photo.
func (r Ref) IsPhoto() bool {
	return r.Kind == KindSinglePhoto && r.PhotoID != ""
}
