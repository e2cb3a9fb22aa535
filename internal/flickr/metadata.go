package flickr

import (
	"context"
	"time"
)

// User identifies the owner of a photo.
type User struct {
	ID         string
	Username   string
	RealName   string
	ProfileURL string
}

// DisplayName prefers the owner's real name over their username, matching
// how Flickr itself renders attribution.
func (u User) DisplayName() string {
	if u.RealName != "" {
		return u.RealName
	}
	return u.Username
}

// DateGranularity is the precision Flickr records for a taken date. See
// https://www.flickr.com/services/api/misc.dates.html ("Photo Dates").
type DateGranularity string

const (
	GranularitySecond DateGranularity = "second"
	GranularityMonth  DateGranularity = "month"
	GranularityYear   DateGranularity = "year"
	GranularityCirca  DateGranularity = "circa"
)

// DateTaken is a taken date with its granularity.
type DateTaken struct {
	Value       time.Time
	Granularity DateGranularity
}

// PhotoMetadata is the current Flickr metadata for one photo. The core
// treats it as an immutable input.
type PhotoMetadata struct {
	ID          string
	Owner       User
	Title       string
	Description string
	PageURL     string
	LicenseID   string
	DateTaken   *DateTaken
	DatePosted  time.Time
	Width       int
	Height      int
}

// PhotoSource looks up current metadata for a photo ID.
type PhotoSource interface {
	GetPhoto(ctx context.Context, photoID string) (*PhotoMetadata, error)
}
