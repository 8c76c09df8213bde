package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Validation
	ErrEmptyGroupName = fmt.Errorf("group name is empty")
	ErrEmptyMessage   = fmt.Errorf("message text is empty")
	ErrEmptySender    = fmt.Errorf("sender id is empty")
	ErrInvalidKey     = fmt.Errorf("invalid store key")

	// Synchronization
	ErrSubscription       = fmt.Errorf("subscription failed")
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
	ErrDecode             = fmt.Errorf("child node cannot be decoded")
	ErrWrite              = fmt.Errorf("store write failed")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
	ErrAccessDenied       = fmt.Errorf("access denied")
	ErrDispatcherStopped  = fmt.Errorf("delivery dispatcher stopped")

	// Auth
	ErrNotSignedIn     = fmt.Errorf("no signed in user")
	ErrTokenGeneration = fmt.Errorf("session token generation failed")

	ErrUnknownBackend = fmt.Errorf("unknown store backend")
)
