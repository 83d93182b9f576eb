package ports

import "context"

// ProductLocker serializes sales on a named resource, a product or an idempotency key. Different
// names never contend.
type ProductLocker interface {
	// Lock blocks until the named lock is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, name string) (unlock func(), err error)
}
