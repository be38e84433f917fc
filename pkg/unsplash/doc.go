// Package unsplash is a minimal client for the Unsplash random-photo endpoint
// and for downloading the image variants it points to.
//
// Authentication uses the client_id query parameter. Every non-200 status is
// returned as an *errors.Error carrying the status code, while network and
// decoding problems are returned as network or parsing errors without a code.
package unsplash
