package skiplock

import "context"

// Handler performs the work for one claimed item before it is marked DONE.
// An error leaves the item in CLAIMED.
type Handler interface {
	// Handle processes a single item.
	Handle(ctx context.Context, item Item) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, item Item) error

// Handle implements Handler.
func (fn HandlerFunc) Handle(ctx context.Context, item Item) error {
	return fn(ctx, item)
}

func nopHandler(context.Context, Item) error {
	return nil
}
