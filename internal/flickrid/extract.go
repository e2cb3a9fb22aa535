package flickrid

import "regexp"

// urlTokenRe matches URL-shaped tokens in free text such as wikitext. The
// character class stops at wikitext markup (pipes, brackets, braces) as
// well as whitespace and quotes.
var urlTokenRe = regexp.MustCompile(`(?i)https?://[^\s|\[\]{}<>"']+`)

var flickrHintRe = regexp.MustCompile(`(?i)flickr\.com|flic\.kr|staticflickr\.com`)

// FindCandidateURLs extracts the Flickr-looking URLs embedded in free text.
// The results are candidates only; callers run them through Recognize.
func FindCandidateURLs(text string) []string {
	var urls []string
	for _, token := range urlTokenRe.FindAllString(text, -1) {
		if flickrHintRe.MatchString(token) {
			urls = append(urls, token)
		}
	}
	return urls
}
