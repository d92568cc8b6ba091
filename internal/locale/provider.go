package locale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// LoadTimeout caps one fetch from the source, whoever waits for it.
	LoadTimeout = 10 * time.Second
	// RetryAfter is how long a tag that failed to load is not fetched again.
	RetryAfter = 30 * time.Second
)

// ErrUnavailable is returned while a tag that recently failed is backing off.
var ErrUnavailable = errors.New("dictionary unavailable")

// Provider resolves and caches dictionaries by language tag.
//
// Pages may render before a dictionary resolves: Peek never blocks and
// returns an empty dictionary until Load has succeeded for that tag.
type Provider struct {
	src   Source
	group singleflight.Group
	now   func() time.Time

	mu     sync.RWMutex
	dicts  map[string]Dictionary
	failed map[string]time.Time
}

// NewProvider creates a provider reading from src.
func NewProvider(src Source) *Provider {
	return &Provider{
		src:    src,
		now:    time.Now,
		dicts:  make(map[string]Dictionary),
		failed: make(map[string]time.Time),
	}
}

// Peek returns the resolved dictionary for lang, or an empty one.
func (p *Provider) Peek(lang string) Dictionary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if dict, ok := p.dicts[lang]; ok {
		return dict
	}
	return Dictionary{}
}

// Load resolves the dictionary for lang. Concurrent loads of one tag share
// a single fetch, which keeps running when ctx ends so a later Peek can see
// its result. On failure the empty dictionary is returned with the error.
func (p *Provider) Load(ctx context.Context, lang string) (Dictionary, error) {
	if dict, ok := p.cached(lang); ok {
		return dict, nil
	}
	if until, ok := p.backingOff(lang); ok {
		return Dictionary{}, fmt.Errorf("%w: %q until %s", ErrUnavailable, lang, until.Format(time.TimeOnly))
	}

	ch := p.group.DoChan(lang, func() (any, error) {
		return p.fetch(lang)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Dictionary{}, res.Err
		}
		return res.Val.(Dictionary), nil
	case <-ctx.Done():
		return Dictionary{}, ctx.Err()
	}
}

// fetch runs inside the flight, detached from any one request.
func (p *Provider) fetch(lang string) (Dictionary, error) {
	if dict, ok := p.cached(lang); ok {
		return dict, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
	defer cancel()
	dict, err := p.src.Load(ctx, lang)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed[lang] = p.now().Add(RetryAfter)
		log.Printf("❌ Failed to load dictionary %q: %v", lang, err)
		return nil, err
	}
	delete(p.failed, lang)
	p.dicts[lang] = dict
	return dict, nil
}

func (p *Provider) cached(lang string) (Dictionary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	dict, ok := p.dicts[lang]
	return dict, ok
}

func (p *Provider) backingOff(lang string) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	until, ok := p.failed[lang]
	return until, ok && p.now().Before(until)
}
