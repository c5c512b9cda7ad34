// Package calllogtest provides a recording sink for tests.
package calllogtest

import (
	"context"
	"sync"

	"github.com/Aman-CERP/interlog/pkg/calllog"
)

// Recorder is a calllog.Sink that keeps every record in memory.
type Recorder struct {
	mu      sync.Mutex
	records []calllog.Record
}

// Log implements calllog.Sink.
func (r *Recorder) Log(_ context.Context, rec calllog.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of the recorded entries.
func (r *Recorder) Records() []calllog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]calllog.Record(nil), r.records...)
}

// Events returns the recorded entries of one kind.
func (r *Recorder) Events(ev calllog.Event) []calllog.Record {
	var out []calllog.Record
	for _, rec := range r.Records() {
		if rec.Event == ev {
			out = append(out, rec)
		}
	}
	return out
}

// Reset drops all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
