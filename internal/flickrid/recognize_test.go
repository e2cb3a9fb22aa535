package flickrid_test

import (
	"errors"
	"testing"

	"flickbridge/internal/flickrid"
	"flickbridge/internal/services"
)

func TestRecognizeSinglePhotoVariants(t *testing.T) {
	// All of these point at the same photo and must canonicalize to the
	// same ID regardless of scheme, www prefix, trailing slash, encoding,
	// or size-page suffixes.
	variants := []string{
		"http://www.flickr.com/photos/poly/6318576132/",
		"https://www.flickr.com/photos/poly/6318576132",
		"flickr.com/photos/poly/6318576132",
		"www.flickr.com/photos/poly/6318576132/",
		"HTTPS://WWW.FLICKR.COM/photos/poly/6318576132",
		"https://www.flickr.com/photos/poly/6318576132/sizes/l/",
		"https://www.flickr.com/photos/poly/6318576132/in/photostream/",
		"https://www.flickr.com/photos/poly/6318576132/lightbox",
		"https%3A%2F%2Fwww.flickr.com%2Fphotos%2Fpoly%2F6318576132%2F",
		"https://flic.kr/p/aCmmxN",
	}
	for _, text := range variants {
		t.Run(text, func(t *testing.T) {
			ref, err := flickrid.Recognize(text)
			if err != nil {
				t.Fatalf("Recognize(%q) failed: %v", text, err)
			}
			if !ref.IsPhoto() {
				t.Fatalf("Recognize(%q) = %v, want single photo", text, ref.Kind)
			}
			if ref.PhotoID != "6318576132" {
				t.Fatalf("Recognize(%q) photo id = %q, want 6318576132", text, ref.PhotoID)
			}
		})
	}
}

func TestRecognizeStaticContent(t *testing.T) {
	cases := []struct {
		text string
		id   string
	}{
		{"https://live.staticflickr.com/65535/53240661807_8a2ff3f379_b.jpg", "53240661807"},
		{"https://farm1.staticflickr.com/31/50660737_123abc.jpg", "50660737"},
		{"http://farm2.static.flickr.com/1418/1125475713_7b9da8f640.jpg", "1125475713"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			ref, err := flickrid.Recognize(tc.text)
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if ref.PhotoID != tc.id {
				t.Fatalf("photo id = %q, want %q", ref.PhotoID, tc.id)
			}
		})
	}
}

func TestRecognizeAmbiguousShapes(t *testing.T) {
	cases := []struct {
		text string
		kind flickrid.Kind
	}{
		{"https://www.flickr.com/photos/joe/albums/72157639587259838", flickrid.KindAlbum},
		{"https://www.flickr.com/photos/joe/sets/72157639587259838/", flickrid.KindAlbum},
		{"https://www.flickr.com/photos/joe/galleries/72157722565504399", flickrid.KindGallery},
		{"https://www.flickr.com/photos/joe", flickrid.KindUser},
		{"https://www.flickr.com/people/joe/", flickrid.KindUser},
		{"https://www.flickr.com/groups/slovenia/pool/", flickrid.KindGroup},
		{"https://www.flickr.com/photos/tags/sunset/", flickrid.KindTag},
		{"https://www.flickr.com/photos/tags", flickrid.KindTag},
		{"https://www.flickr.com/photos/tags/", flickrid.KindTag},
		{"https://www.flickr.com/search/?text=cats", flickrid.KindSearch},
		{"https://www.flickr.com", flickrid.KindHomepage},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			ref, err := flickrid.Recognize(tc.text)
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if ref.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", ref.Kind, tc.kind)
			}
			if ref.IsPhoto() {
				t.Fatalf("expected ambiguous reference, got photo %q", ref.PhotoID)
			}
		})
	}
}

func TestRecognizeRejectsNonFlickr(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"https://example.com/photos/joe/12345",
		"https://en.wikipedia.org/wiki/Flickr",
		"not a url at all",
		"https://www.flickr.com/help/forum",
		"https://flic.kr/p/0OIl", // characters outside the base58 alphabet
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			_, err := flickrid.Recognize(text)
			if !errors.Is(err, flickrid.ErrNotFlickr) {
				t.Fatalf("Recognize(%q) err = %v, want ErrNotFlickr", text, err)
			}
			if !errors.Is(err, services.ErrNotRecognized) {
				t.Fatalf("Recognize(%q) must classify as services.ErrNotRecognized, got %v", text, err)
			}
		})
	}
}

func TestPhotoID(t *testing.T) {
	if id, ok := flickrid.PhotoID("flickr.com/photos/poly/6318576132"); !ok || id != "6318576132" {
		t.Fatalf("PhotoID = %q, %v", id, ok)
	}
	if _, ok := flickrid.PhotoID("https://www.flickr.com/photos/joe/albums/1"); ok {
		t.Fatal("expected ambiguous reference to report no photo id")
	}
}

func TestBestURL(t *testing.T) {
	urls := []string{
		"https://live.staticflickr.com/65535/53240661807_8a2ff3f379_b.jpg",
		"https://www.flickr.com/photos/joe/53240661807/",
		"",
	}
	want := "https://www.flickr.com/photos/joe/53240661807/"
	if got := flickrid.BestURL(urls); got != want {
		t.Fatalf("BestURL = %q, want %q", got, want)
	}
	if got := flickrid.BestURL(nil); got != "" {
		t.Fatalf("BestURL(nil) = %q, want empty", got)
	}
}
