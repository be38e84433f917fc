// Package ratelimit paces calls to the Unsplash API.
//
// Unsplash counts requests per access key over a rolling hour (50 for demo
// applications), so the limiter is a sliding window sized in requests per
// hour. A limit of 0 yields Unlimited, which never blocks.
package ratelimit
