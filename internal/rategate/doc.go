// Package rategate throttles outbound calls to the photo server with a
// shared token-bucket rate limit and an in-flight concurrency cap.
package rategate
