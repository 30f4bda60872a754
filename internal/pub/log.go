package pub

import (
	"context"

	"invoicer/internal/ports"

	log "github.com/sirupsen/logrus"
)

// logPub prints payloads instead of delivering them. Used when no topic is configured.
type logPub struct{}

func NewLog() ports.Publisher { return logPub{} }

func (logPub) PublishRaw(_ context.Context, arn string, payload []byte) error {
	log.WithField("topic", arn).Info(string(payload))
	return nil
}
