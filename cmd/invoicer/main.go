package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"invoicer/cmd/invoicer/cmds"
	"invoicer/internal/backends"
	"invoicer/internal/config"
	"invoicer/internal/ports"
	"invoicer/internal/pub"
	"invoicer/internal/share"
	"invoicer/internal/store"
	"invoicer/internal/types"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Log.Apply()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gw, err := backends.GatewayFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s gateway: %v", cfg.Backend, err)
	}

	numbering, err := store.ParseNumbering(cfg.Numbering)
	if err != nil {
		log.Fatalf("Invalid numbering: %v", err)
	}
	clients := store.NewClientStore(gw)
	invoices := store.NewInvoiceStore(gw, store.WithNumbering(numbering))

	for name, load := range map[string]func(context.Context) (types.LoadOutcome, error){
		store.ClientsKey:  clients.Load,
		store.InvoicesKey: invoices.Load,
	} {
		out, err := load(ctx)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", name, err)
		}
		if out.State == types.LoadDegraded {
			log.WithError(out.Cause).WithField("key", name).Warn("Stored data is unreadable, starting from an empty collection")
		}
	}

	if cfg.SeedFile != "" {
		seed, err := cmds.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
		if _, err := clients.SeedIfEmpty(ctx, seed); err != nil {
			log.Fatalf("Failed to seed clients: %v", err)
		}
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize share publisher: %v", err)
	}

	app := &cmds.App{
		Clients:  clients,
		Invoices: invoices,
		Sharer:   share.NewSharer(publisher, cfg.Share.TopicARN),
		Out:      os.Stdout,
	}
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cmds.ErrUsage) {
			log.Error(err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// newPublisher delivers shared invoices to SNS when a topic is configured, and to the log otherwise.
func newPublisher(ctx context.Context, cfg *config.Config) (ports.Publisher, error) {
	if cfg.Share.TopicARN == "" {
		return pub.NewLog(), nil
	}
	cli, err := pub.NewSNSClient(ctx, cfg.Region, cfg.Share.SNSEndpoint)
	if err != nil {
		return nil, err
	}
	return pub.NewSNS(cli), nil
}
