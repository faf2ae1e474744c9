package scheduler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Justype/gaussub/internal/cluster"
)

var (
	writers   = map[Dialect]func() ScriptWriter{}
	writersMu sync.RWMutex
)

// Register makes a writer available for a dialect. Registering the same
// dialect twice replaces the earlier writer.
func Register(d Dialect, newWriter func() ScriptWriter) {
	writersMu.Lock()
	defer writersMu.Unlock()
	writers[d] = newWriter
}

// Dialects lists the registered dialects.
func Dialects() []Dialect {
	writersMu.RLock()
	defer writersMu.RUnlock()
	out := make([]Dialect, 0, len(writers))
	for d := range writers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup returns a writer for the dialect.
func Lookup(d Dialect) (ScriptWriter, error) {
	writersMu.RLock()
	defer writersMu.RUnlock()
	newWriter, ok := writers[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, d)
	}
	return newWriter(), nil
}

// ForGeneration returns the writer for a cluster generation's dialect.
func ForGeneration(gen cluster.Generation) (ScriptWriter, error) {
	return Lookup(Dialect(gen.Dialect))
}
