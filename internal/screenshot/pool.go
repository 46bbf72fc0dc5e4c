package screenshot

import "sync"

// Pool bounds how many captures run at once so concurrent screenshot
// commands cannot pile onto the compositor or the webview.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool starts workers goroutines. A non-positive count falls back to 2.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	p := &Pool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Do runs fn on a pool worker and blocks until it finishes. Callers past
// pool capacity queue; their work is unaffected beyond the wait. Do must
// not be called after Close.
func (p *Pool) Do(fn func()) {
	done := make(chan struct{})
	p.tasks <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Close stops the workers after in-flight tasks finish.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.tasks)
		p.wg.Wait()
	})
}
