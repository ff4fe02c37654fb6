// Package retry polls Kubernetes API operations with exponential backoff.
//
// [Until] waits for a condition and [Do] retries an operation. Both treat
// API status errors that cannot succeed on retry (not found, forbidden,
// invalid) and errors wrapped with [Fatal] as final.
package retry
