package pacelib

import "sync"

// BufferPool models the swapchain's bounded set of frame buffers. Acquired
// buffers return to the pool when their last reference drops. Resizing the
// pool mints new buffer identities and pushes swapchain feedback to the
// attached sink, mirroring how a real swapchain reconfiguration discards
// all pacing state tied to the old buffers.
type BufferPool struct {
	mu       sync.Mutex
	free     []*FrameBuffer
	depth    uint32
	gen      uint32
	nextID   uint32
	feedback func(totalBuffers uint32)
}

// NewBufferPool creates a pool holding depth buffers. Depth zero is
// clamped to one.
func NewBufferPool(depth uint32) *BufferPool {
	p := &BufferPool{}
	p.mu.Lock()
	p.resizeLocked(depth)
	p.mu.Unlock()
	return p
}

// AttachFeedback registers the swapchain feedback sink, typically the
// limiter's SetTotalBuffers, and immediately reports the current depth.
func (p *BufferPool) AttachFeedback(fn func(totalBuffers uint32)) {
	p.mu.Lock()
	p.feedback = fn
	depth := p.depth
	p.mu.Unlock()
	if fn != nil {
		fn(depth)
	}
}

// Acquire hands out a free buffer with a fresh reference count of one.
// Returns false when the pool is exhausted.
func (p *BufferPool) Acquire() (*FrameBuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.free)
	if n == 0 {
		return nil, false
	}
	buf := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	buf.refs.Store(1)
	return buf, true
}

// put is the buffer finalizer: the last reference dropped, hand the buffer
// back. Buffers from an older generation were replaced by a resize and are
// discarded instead.
func (p *BufferPool) put(buf *FrameBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if buf.gen != p.gen {
		return
	}
	p.free = append(p.free, buf)
}

// Resize reconfigures the pool to the new depth. All current buffers are
// replaced by new identities and the feedback sink is notified, flushing
// any limiter state tied to the old generation.
func (p *BufferPool) Resize(depth uint32) {
	p.mu.Lock()
	p.resizeLocked(depth)
	fn, d := p.feedback, p.depth
	p.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

// resizeLocked requires p.mu.
func (p *BufferPool) resizeLocked(depth uint32) {
	if depth == 0 {
		depth = 1
	}
	p.gen++
	p.depth = depth
	p.free = make([]*FrameBuffer, 0, depth)
	for i := uint32(0); i < depth; i++ {
		p.nextID++
		buf := NewFrameBuffer(p.nextID, p.put)
		buf.gen = p.gen
		p.free = append(p.free, buf)
	}
}

// Depth returns the configured pool depth.
func (p *BufferPool) Depth() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.depth
}

// FreeCount returns the number of buffers currently available.
func (p *BufferPool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
