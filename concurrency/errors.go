package concurrency

import (
	"strconv"
	"strings"
)

// ErrorSlice aggregates the errors returned by a fan-out of workers
// (one generator shard, one shuffle group) so that a single round can
// report every failure instead of only the first one an errgroup
// happens to observe.
type ErrorSlice []error

func (e ErrorSlice) Error() string {
	if len(e) == 0 {
		return "ErrorSlice{}"
	}
	var b strings.Builder
	b.WriteString("ErrorSlice{")
	for i, err := range e {
		if i > 0 {
			b.WriteString(", ")
		}
		if err == nil {
			b.WriteString("nil")
			continue
		}
		b.WriteString(strconv.Quote(err.Error()))
	}
	b.WriteString("}")
	return b.String()
}

// Filter returns the errors that satisfy predicate.
func (e ErrorSlice) Filter(predicate func(error) bool) ErrorSlice {
	var out ErrorSlice
	for _, err := range e {
		if predicate(err) {
			out = append(out, err)
		}
	}
	return out
}

// IsErrorSlice reports whether err is an ErrorSlice.
func IsErrorSlice(err error) bool {
	_, ok := err.(ErrorSlice)
	return ok
}

// Collector gathers worker errors from a bounded number of slots without
// requiring a mutex on the hot path; each worker owns its own slot.
type Collector struct {
	errs []error
}

// NewCollector allocates a Collector for exactly n worker slots.
func NewCollector(n int) *Collector {
	return &Collector{errs: make([]error, n)}
}

// Set records the outcome of worker slot i. Safe to call once per slot
// from the owning goroutine; slots are never shared between workers so
// no locking is required.
func (c *Collector) Set(i int, err error) {
	c.errs[i] = err
}

// Err returns nil if every slot was nil, the lone error if exactly one
// slot failed, or an ErrorSlice joining every non-nil slot.
func (c *Collector) Err() error {
	var out ErrorSlice
	for _, err := range c.errs {
		if err != nil {
			out = append(out, err)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
