// Package chunker splits local files into checksummed parts for upload and
// recomputes the send plan from the platform's missing-parts report when a
// transfer resumes.
package chunker
