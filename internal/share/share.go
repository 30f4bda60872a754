// Package share renders the plain-text summary of an invoice and hands it to a publisher.
package share

import (
	"context"
	"fmt"

	"invoicer/internal/billing"
	"invoicer/internal/ports"
	"invoicer/internal/types"

	log "github.com/sirupsen/logrus"
)

const (
	senderName = "Your Business"
	footer     = "Generated by Invoice Generator App"
)

// Summary is the text a user shares for an invoice.
func Summary(inv types.Invoice, client types.Client) string {
	return fmt.Sprintf("Invoice %s\n\nFrom: %s\nTo: %s\nAmount: $%s\nStatus: %s\n\n%s",
		inv.InvoiceNumber, senderName, client.Name, billing.Money(inv.Total), inv.Status, footer)
}

// Title is the subject line accompanying a shared summary.
func Title(inv types.Invoice) string {
	return "Invoice " + inv.InvoiceNumber
}

type Sharer struct {
	pub   ports.Publisher
	topic string
}

func NewSharer(pub ports.Publisher, topic string) *Sharer {
	return &Sharer{pub: pub, topic: topic}
}

// Share publishes the invoice summary and returns the text that was sent.
func (s *Sharer) Share(ctx context.Context, inv types.Invoice, client types.Client) (string, error) {
	text := Summary(inv, client)
	if err := s.pub.PublishRaw(ctx, s.topic, []byte(text)); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"invoice": inv.InvoiceNumber,
			"topic":   s.topic,
		}).Error("failed to share invoice")
		return "", err
	}
	return text, nil
}

// Export is the PDF export entry point. PDF rendering is not available, so it shares the summary instead.
func (s *Sharer) Export(ctx context.Context, inv types.Invoice, client types.Client) (string, error) {
	log.WithField("invoice", inv.InvoiceNumber).Info("PDF export is not available, sharing the invoice details instead")
	return s.Share(ctx, inv, client)
}
