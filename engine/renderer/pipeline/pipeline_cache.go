package pipeline

import (
	"errors"
	"strings"
	"sync"
)

// ErrBuildPanicked is reported to callers waiting on a build that panicked.
var ErrBuildPanicked = errors.New("pipeline build panicked")

// PipelineKey identifies a compiled render pipeline by the shader it runs, the vertex layout it
// consumes and the bind group layouts it binds, in group order.
type PipelineKey struct {
	ShaderID           string
	VertexLayoutID     string
	BindGroupLayoutIDs []string
}

// String returns the canonical form of the key used for map lookups.
// Keys with equal fields always produce equal strings.
func (k PipelineKey) String() string {
	var b strings.Builder
	b.WriteString(k.ShaderID)
	b.WriteByte('|')
	b.WriteString(k.VertexLayoutID)
	b.WriteByte('|')
	b.WriteString(strings.Join(k.BindGroupLayoutIDs, ","))
	return b.String()
}

// Handle is a compiled pipeline owned by a PipelineCache. *wgpu.RenderPipeline satisfies it.
type Handle interface {
	Release()
}

// cacheEntry tracks one key's build. finished, handle and err are written under the cache mutex
// before done is closed.
type cacheEntry struct {
	done     chan struct{}
	finished bool
	handle   Handle
	err      error

	// invalidated is set when InvalidateAll dropped the entry mid-build
	invalidated bool
}

type pipelineCache struct {
	mu      *sync.Mutex
	entries map[string]*cacheEntry

	// orphaned holds handles built for invalidated entries, released by the next InvalidateAll
	orphaned []Handle
}

// PipelineCache memoizes compiled pipelines by PipelineKey so each distinct key is compiled once
// for the lifetime of the cache (or until InvalidateAll).
type PipelineCache interface {
	// GetOrCreate returns the handle cached under key, invoking build only on a miss.
	// Concurrent callers for the same key share a single build and its result. A failed build is
	// not cached, so the next call for that key builds again.
	//
	// A build still running when InvalidateAll is called hands its handle to its callers without
	// caching it. The cache keeps ownership and releases it on the following InvalidateAll, so the
	// handle stays valid for the frame that requested it.
	//
	// Parameters:
	//   - key: the pipeline key
	//   - build: constructs the pipeline on a miss
	//
	// Returns:
	//   - Handle: the cached or newly built handle
	//   - error: the error returned by build, if it failed
	GetOrCreate(key PipelineKey, build func() (Handle, error)) (Handle, error)

	// Len returns the number of successfully built entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// InvalidateAll drops every entry and releases its handle, along with handles orphaned by the
	// previous call. Used when the surface format changes.
	InvalidateAll()
}

var _ PipelineCache = &pipelineCache{}

// NewPipelineCache creates an empty PipelineCache.
//
// Returns:
//   - PipelineCache: the new cache
func NewPipelineCache() PipelineCache {
	return &pipelineCache{
		mu:      &sync.Mutex{},
		entries: make(map[string]*cacheEntry),
	}
}

func (c *pipelineCache) GetOrCreate(key PipelineKey, build func() (Handle, error)) (Handle, error) {
	k := key.String()

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &cacheEntry{done: make(chan struct{})}
		c.entries[k] = e
		c.mu.Unlock()
		return c.build(k, e, build)
	}
	c.mu.Unlock()

	<-e.done
	if e.err != nil {
		return nil, e.err
	}
	return e.handle, nil
}

func (c *pipelineCache) build(k string, e *cacheEntry, build func() (Handle, error)) (h Handle, err error) {
	finished := false
	defer func() {
		if !finished {
			err = ErrBuildPanicked
		}
		c.mu.Lock()
		e.finished = true
		if err != nil {
			e.err = err
			if c.entries[k] == e {
				delete(c.entries, k)
			}
		} else {
			e.handle = h
			if e.invalidated && h != nil {
				c.orphaned = append(c.orphaned, h)
			}
		}
		c.mu.Unlock()
		close(e.done)
	}()

	h, err = build()
	finished = true
	return h, err
}

func (c *pipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if e.finished && e.err == nil {
			n++
		}
	}
	return n
}

func (c *pipelineCache) InvalidateAll() {
	c.mu.Lock()
	release := c.orphaned
	c.orphaned = nil
	for _, e := range c.entries {
		switch {
		case !e.finished:
			e.invalidated = true
		case e.err == nil && e.handle != nil:
			release = append(release, e.handle)
		}
	}
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	for _, h := range release {
		h.Release()
	}
}
