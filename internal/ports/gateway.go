package ports

import "context"

// Gateway is the durable string key-value store the invoice and client stores persist through.
// Each store writes its whole collection as one JSON blob under a fixed key.
type Gateway interface {
	// Get returns the value stored under key.
	// MUST return ("", false, nil) when the key has never been written.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	// A nil error MUST mean the value is durable and visible to the next Get.
	Set(ctx context.Context, key string, value string) error
}
