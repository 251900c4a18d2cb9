// Package bufpool implements the size-tiered buffer pool described in the
// wire protocol's buffer pool component: a free list per power-of-two size
// class from 4 KiB to 1 MiB, plus an unpooled bypass for larger requests.
// Each Session owns its own Pool; there is no process-wide shared pool,
// matching the "no global mutable state" design rule.
package bufpool

import "sync"

const (
	minClassSize = 4 * 1024
	maxClassSize = 1024 * 1024
)

// Pool is a per-session set of size-class free lists.
type Pool struct {
	classes []sync.Pool // classes[i] holds buffers of size minClassSize<<i
	sizes   []int
}

// New constructs a Pool with size classes at every power of two from 4 KiB
// through 1 MiB inclusive.
func New() *Pool {
	p := &Pool{}
	for size := minClassSize; size <= maxClassSize; size *= 2 {
		classSize := size
		p.classes = append(p.classes, sync.Pool{
			New: func() interface{} {
				buf := make([]byte, classSize)
				return &buf
			},
		})
		p.sizes = append(p.sizes, size)
	}
	return p
}

// classFor returns the index of the smallest size class that fits n, or -1
// if n exceeds the largest class (the "large" bypass, which allocates
// fresh and is never pooled).
func (p *Pool) classFor(n int) int {
	for i, size := range p.sizes {
		if n <= size {
			return i
		}
	}
	return -1
}

// Get returns a buffer with length n. Buffers from a size class have
// capacity equal to that class's size and are sliced down to length n;
// buffers larger than the largest class are allocated fresh each time.
//
// Read-side buffers are not guaranteed zeroed: callers refill them before
// reuse. Write-side buffers returned via Put are cleared by the caller
// before release, per the pool's write-clears/read-refills convention.
func (p *Pool) Get(n int) []byte {
	idx := p.classFor(n)
	if idx < 0 {
		return make([]byte, n)
	}
	bufp := p.classes[idx].Get().(*[]byte)
	buf := *bufp
	if cap(buf) < n {
		buf = make([]byte, p.sizes[idx])
	}
	return buf[:n]
}

// Put returns buf to its size class's free list. Buffers not originating
// from a size class (the large bypass, or any slice whose capacity doesn't
// match a class exactly) are dropped for the GC to reclaim.
func (p *Pool) Put(buf []byte) {
	c := cap(buf)
	for i, size := range p.sizes {
		if c == size {
			full := buf[:size]
			p.classes[i].Put(&full)
			return
		}
	}
}
