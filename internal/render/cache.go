package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxPools bounds the number of option sets kept. Every terminal resize
// produces a new width, so the set grows during a long chat session.
const maxPools = 32

// rendererPool keeps one sync.Pool of glamour renderers per option set.
// A TermRenderer must not be used by two Render calls at once.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[Options]*sync.Pool
}

var globalPool = &rendererPool{
	pools: make(map[Options]*sync.Pool),
}

// cacheKey normalizes options so style aliases share renderers
func cacheKey(opts Options) Options {
	opts.Style = ResolveStyle(opts.Style)
	opts.Plain = false
	return opts
}

func (p *rendererPool) getPool(opts Options) *sync.Pool {
	key := cacheKey(opts)

	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[key]; ok {
		return pool
	}
	if len(p.pools) >= maxPools {
		p.pools = make(map[Options]*sync.Pool)
	}

	pool = &sync.Pool{
		New: func() any {
			renderer, err := createRenderer(key)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	p.pools[key] = pool
	return pool
}

func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if renderer, ok := p.getPool(opts).Get().(*glamour.TermRenderer); ok && renderer != nil {
		return renderer, nil
	}
	// the pool could not build one; retry directly to get the error
	return createRenderer(cacheKey(opts))
}

func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer != nil {
		p.getPool(opts).Put(renderer)
	}
}

func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops all pooled renderers.
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[Options]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of option sets with a live pool.
func CacheSize() int {
	globalPool.mu.RLock()
	defer globalPool.mu.RUnlock()
	return len(globalPool.pools)
}
