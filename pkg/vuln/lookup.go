package vuln

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sbomlens/pkg/observability"
)

// Source answers vulnerability queries for single package versions.
// Implementations return (nil, nil) for ecosystems they do not cover.
type Source interface {
	Query(ctx context.Context, q Query) ([]Vulnerability, error)
}

const (
	DefaultConcurrency = 10
	DefaultPause       = 100 * time.Millisecond
	DefaultTimeout     = 10 * time.Second
)

// Lookup runs queries against a Source in paced batches.
type Lookup struct {
	Source      Source
	Concurrency int           // queries per batch, default 10
	Pause       time.Duration // wait between batches, default 100ms, negative disables
	Timeout     time.Duration // per query, default 10s
	Logger      *log.Logger
}

// Run queries every distinct name@version once and returns the results
// keyed by [Query.Key]. Every key is present in the result; failed,
// timed out or skipped queries map to an empty list.
func (l *Lookup) Run(ctx context.Context, queries []Query) map[string][]Vulnerability {
	results := make(map[string][]Vulnerability, len(queries))
	unique := make([]Query, 0, len(queries))
	for _, q := range queries {
		if _, ok := results[q.Key()]; ok {
			continue
		}
		results[q.Key()] = []Vulnerability{}
		unique = append(unique, q)
	}
	if l.Source == nil || len(unique) == 0 {
		return results
	}

	size := l.Concurrency
	if size <= 0 {
		size = DefaultConcurrency
	}
	pause := l.Pause
	if pause < 0 {
		pause = 0
	} else if pause == 0 {
		pause = DefaultPause
	}

	var mu sync.Mutex
	for start := 0; start < len(unique); start += size {
		if start > 0 && !Wait(ctx, pause) {
			l.debug("vulnerability lookup interrupted", "remaining", len(unique)-start)
			break
		}

		end := min(start+size, len(unique))
		var g errgroup.Group
		for _, q := range unique[start:end] {
			g.Go(func() error {
				found, err := l.query(ctx, q)
				if err != nil {
					observability.Pipeline().OnDegraded(ctx, "vulnerabilities", q.Key(), err)
					l.debug("vulnerability lookup failed", "package", q.Key(), "error", err)
					return nil
				}
				if len(found) == 0 {
					return nil
				}
				mu.Lock()
				results[q.Key()] = found
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}
	return results
}

func (l *Lookup) query(ctx context.Context, q Query) ([]Vulnerability, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return l.Source.Query(ctx, q)
}

func (l *Lookup) debug(msg string, kv ...any) {
	if l.Logger != nil {
		l.Logger.Debug(msg, kv...)
	}
}

// Wait blocks for d or until ctx is done, reporting whether the full
// duration elapsed. A non-positive d only checks ctx.
func Wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
