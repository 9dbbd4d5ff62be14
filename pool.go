package tflitedetect

import (
	"bytes"
	"fmt"
	"sync"
)

// Pool is a simple detector pool to run the same Model from multiple
// goroutines.  Each Detector in the pool owns its own tensor buffer.
type Pool struct {
	// pool of detectors
	detectors chan *Detector
	// size of pool
	size  int
	close sync.Once
	// mu guards closed so Return never sends on the closed channel
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool of size Detectors each initialized with the given
// model and label data
func NewPool(size int, engine Engine, modelData, labelData []byte,
	opts ...Option) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		detectors: make(chan *Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		d := NewDetector(engine, opts...)

		err := d.Initialize(bytes.NewReader(modelData), bytes.NewReader(labelData))

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(d)
	}

	return p, nil
}

// Get a detector from the pool, blocking until one is available.  Get
// returns nil once the pool is closed
func (p *Pool) Get() *Detector {
	return <-p.detectors
}

// Return a detector to the pool
func (p *Pool) Return(d *Detector) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		_ = d.Close()
		return
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full or closed
	}
}

// Recognize runs Recognize on a detector borrowed from the pool
func (p *Pool) Recognize(pixels []uint32) ([]Detection, error) {
	d := p.Get()

	if d == nil {
		return nil, ErrPoolClosed
	}

	defer p.Return(d)

	return d.Recognize(pixels)
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and all detectors in it
func (p *Pool) Close() {
	p.close.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		// close channel
		close(p.detectors)

		// close all detectors
		for next := range p.detectors {
			_ = next.Close()
		}
	})
}
