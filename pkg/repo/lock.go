package repo

import "context"

// Locker serialises read-modify-write cycles on a named resource.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
