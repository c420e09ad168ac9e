package habits

import (
	"sync"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

// persister writes snapshots to the provider. In async mode a single writer
// goroutine saves only the latest pending snapshot; older ones submitted
// while a save was in flight are skipped.
type persister struct {
	provider storage.Provider
	onError  func(error)
	async    bool

	mu        sync.Mutex
	cond      *sync.Cond
	pending   *storage.Snapshot
	submitted uint64
	written   uint64
	lastErr   error
	stopped   bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newPersister(provider storage.Provider, async bool, onError func(error)) *persister {
	p := &persister{
		provider: provider,
		onError:  onError,
		async:    async,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	if async {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *persister) submit(snapshot storage.Snapshot) {
	if !p.async {
		p.report(p.provider.Save(snapshot))
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.report(p.provider.Save(snapshot))
		return
	}
	p.pending = &snapshot
	p.submitted++
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.wake:
			p.writePending()
		case <-p.done:
			p.writePending()
			return
		}
	}
}

func (p *persister) writePending() {
	p.mu.Lock()
	snapshot := p.pending
	seq := p.submitted
	p.pending = nil
	p.mu.Unlock()

	if snapshot == nil {
		return
	}

	err := p.provider.Save(*snapshot)
	p.report(err)

	p.mu.Lock()
	p.written = seq
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *persister) report(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err == nil {
		return
	}
	logger.Error("Failed to persist habits", "path", p.provider.GetConfigPath(), "error", err)
	if p.onError != nil {
		p.onError(err)
	}
}

func (p *persister) flush() {
	if !p.async {
		return
	}
	p.mu.Lock()
	for p.written < p.submitted && !p.stopped {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

func (p *persister) close() {
	if !p.async {
		return
	}
	p.flush()

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
}

func (p *persister) lastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
