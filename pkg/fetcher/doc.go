// Package fetcher runs the fetch loop.
//
// A run resets the output directory and then, for each 1-based index, asks
// the photo source for one random photo, downloads its regular-size rendition
// and stores it as image_<index>.jpg. Indices are processed strictly in order.
//
// Each index ends in one Outcome:
//   - saved: the file was written
//   - api_failure: the API answered with a non-200 status; the index is
//     reported and skipped and the run continues
//   - transport_failure: network error, timeout, cancellation or an
//     undecodable response; the run stops
//   - storage_failure: the file could not be written; the run stops
//
// Attribution embedding happens after the file is written and never changes
// the outcome.
package fetcher
