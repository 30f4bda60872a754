package ports

import "context"

// Publisher delivers a rendered payload to a topic. It is the outbound channel for shared invoices.
type Publisher interface {
	PublishRaw(ctx context.Context, arn string, payload []byte) error
}
