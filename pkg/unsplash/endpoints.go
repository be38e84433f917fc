package unsplash

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the production API root
	BaseURL = "https://api.unsplash.com"

	// RandomPhotoPath returns one random photo object
	RandomPhotoPath = "/photos/random"
)

// RandomPhotoURL builds the random-photo URL with the access key as client_id
func RandomPhotoURL(baseURL, accessKey string) string {
	q := url.Values{}
	q.Set("client_id", accessKey)
	return strings.TrimRight(baseURL, "/") + RandomPhotoPath + "?" + q.Encode()
}
