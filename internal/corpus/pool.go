package corpus

import (
	"context"
	"iter"
	"sync"
)

type loadResult struct {
	rec Record
	err error
}

// loadParallel decodes records on a fixed pool of workers. Each worker writes
// into the slot of the record it decoded, so results are yielded in input
// order regardless of completion order.
func (p *Pipeline) loadParallel(ctx context.Context, in iter.Seq2[Record, error]) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		var pending []Record
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			pending = append(pending, rec)
		}

		results := make([]loadResult, len(pending))
		jobs := make(chan int)
		var progressMu sync.Mutex
		var wg sync.WaitGroup

		p.opts.Progress.Start(len(pending))
		for range min(p.opts.Workers, len(pending)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range jobs {
					rec, err := p.loadOne(pending[idx])
					results[idx] = loadResult{rec: rec, err: err}
					progressMu.Lock()
					p.opts.Progress.Advance(pending[idx].Path)
					progressMu.Unlock()
				}
			}()
		}

	feed:
		for idx := range pending {
			select {
			case <-ctx.Done():
				break feed
			case jobs <- idx:
			}
		}
		close(jobs)
		wg.Wait()
		p.opts.Progress.Finish()

		if err := ctx.Err(); err != nil {
			yield(Record{}, err)
			return
		}
		for idx, res := range results {
			if res.err != nil {
				if err := p.reject(pending[idx], res.err); err != nil {
					yield(Record{}, err)
					return
				}
				continue
			}
			if !yield(res.rec, nil) {
				return
			}
		}
	}
}
