package location

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncerDeliversLastValueOnly(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(30*time.Millisecond, rec.record)

	d.Trigger("l")
	d.Trigger("ly")
	d.Trigger("lyo")
	d.Trigger("lyon")

	assert.Eventually(t, func() bool {
		vals := rec.snapshot()
		return len(vals) == 1 && vals[0] == "lyon"
	}, time.Second, 5*time.Millisecond)

	// Nothing else arrives after settling.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"lyon"}, rec.snapshot())
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(30*time.Millisecond, rec.record)

	d.Trigger("paris")
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestDebouncerSeparateBursts(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.record)

	d.Trigger("lyon")
	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	d.Trigger("nice")
	assert.Eventually(t, func() bool {
		vals := rec.snapshot()
		return len(vals) == 2 && vals[1] == "nice"
	}, time.Second, 5*time.Millisecond)
}
