// Package internal contains private implementation details for the Loam
// client. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - chunker: file chunking and missing-parts resume math
//   - retry: HTTP retry classification and backoff pacing
//   - pool: reusable chunk buffers
//   - authapi: Cognito interface used by the login flow
//   - logging: structured logger setup for the agent
package internal
