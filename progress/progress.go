// Package progress reports chunked upload advancement to callers.
package progress

import "github.com/loamstack/loam-go/model"

// Update describes the cumulative state of one file's transfer after a
// chunk has been acknowledged.
type Update struct {
	ImportID   model.ImportID
	FileName   string
	PartNumber int64
	BytesSent  int64
	SizeTotal  int64
	Done       bool
}

// PercentDone returns transfer completion in the range [0, 100]. An empty
// file is complete by definition.
func (u Update) PercentDone() float64 {
	if u.SizeTotal == 0 {
		return 100.0
	}
	return float64(u.BytesSent) / float64(u.SizeTotal) * 100.0
}

// Callback receives progress updates. Implementations must be safe for
// concurrent use; the dispatcher invokes them from multiple goroutines.
type Callback interface {
	OnUpdate(Update)
}

// NoProgress is a Callback that discards every update.
type NoProgress struct{}

// OnUpdate implements Callback.
func (NoProgress) OnUpdate(Update) {}

// Func adapts a plain function to the Callback interface.
type Func func(Update)

// OnUpdate implements Callback.
func (f Func) OnUpdate(u Update) { f(u) }
