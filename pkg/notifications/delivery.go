package notifications

import "context"

// LiveChannel pushes events to recipients with an open real-time connection.
type LiveChannel interface {
	IsConnected(recipient string) bool
	Emit(ctx context.Context, recipient, event string, payload any) error
}

// Contact is the addressable identity of a recipient.
type Contact struct {
	Name  string
	Email string
}

// Directory resolves recipients to contact details for email delivery.
type Directory interface {
	Contact(ctx context.Context, recipient string) (Contact, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, recipient string) (Contact, error)

func (f DirectoryFunc) Contact(ctx context.Context, recipient string) (Contact, error) {
	return f(ctx, recipient)
}
