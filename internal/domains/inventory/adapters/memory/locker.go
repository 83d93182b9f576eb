package memory

import (
	"context"
	"sync"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

var _ ports.ProductLocker = (*ProductLocker)(nil)

// ProductLocker is an in-process keyed mutex. Entries are dropped once no caller holds or waits on them.
type ProductLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewProductLocker() *ProductLocker {
	return &ProductLocker{locks: map[string]*keyedLock{}}
}

func (l *ProductLocker) Lock(ctx context.Context, product string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[product]
	if !ok {
		entry = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[product] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(product, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(product, entry)
		})
	}, nil
}

func (l *ProductLocker) release(product string, entry *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, product)
	}
}
