// Package httputil provides HTTP utilities for the expansion client.
//
// # Overview
//
// This package provides infrastructure used when talking to the external
// text-generation service:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores responses in the filesystem (~/.cache/wordmiro/) with a
// configurable TTL, so re-expanding a term the user already looked up
// does not hit the service again.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, err := cache.Get("expand:ephemeral", &result)
//	if !ok {
//	    result = fetchFromService()
//	    cache.Set("expand:ephemeral", result)
//	}
//
// Cache keys should be namespaced to avoid collisions; use
// [Cache.Namespace] to create scoped views.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures
// (network errors, 5xx responses) using exponential backoff. Wrap
// transient errors in [RetryableError] so the helper knows to retry.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/wordmiro/
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `wordmiro cache clear` or by deleting the
// cache directory.
package httputil
