package ranking

import "context"

// Mapper runs fn for every index in [0,n). Implementations may run calls
// concurrently; each index is visited exactly once and fn writes only to its
// own slot. Map returns after every call has finished, or with an error if the
// work could not be completed.
type Mapper interface {
	Map(ctx context.Context, n int, fn func(i int)) error
}

// SerialMapper runs every index on the calling goroutine.
type SerialMapper struct{}

// Map implements Mapper.
func (SerialMapper) Map(ctx context.Context, n int, fn func(i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range n {
		fn(i)
	}
	return nil
}
