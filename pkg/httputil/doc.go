// Package httputil provides the HTTP client used to fetch remote filter
// catalogs.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status classification
//     and optional response caching
//   - [Retry]: automatic retry with exponential backoff and Retry-After
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Client] wraps transport failures, 429 and 5xx responses that way;
// a 404 or any other 4xx fails immediately. When a 429 or 503 carries a
// Retry-After header, the next attempt waits that long (at most
// [MaxRetryAfter]) instead of the current backoff:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    body, err = client.GetBytes(ctx, url)
//	    return err
//	})
//
// # Caching
//
// [Client.Cached] consults a [cache.Cache] before fetching and stores the
// fetched bytes afterwards. Pass refresh=true to bypass the cache.
//
// Default settings:
//
//   - Request timeout: 10 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
