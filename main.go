package main

import (
	"context"
	"log"

	"github.com/Eursukkul/ticket-marketplace/config"
	"github.com/Eursukkul/ticket-marketplace/internal/access"
	"github.com/Eursukkul/ticket-marketplace/internal/clock"
	"github.com/Eursukkul/ticket-marketplace/internal/consumer"
	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/monitoring"
	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"github.com/Eursukkul/ticket-marketplace/internal/repository/memory"
	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/Eursukkul/ticket-marketplace/pkg/database"
	"github.com/Eursukkul/ticket-marketplace/pkg/obs"
	"github.com/Eursukkul/ticket-marketplace/pkg/pubnub"
	"github.com/Eursukkul/ticket-marketplace/pkg/rabbitmq"
	"github.com/Eursukkul/ticket-marketplace/pkg/redislock"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdown := obs.InitTracer("ticket-marketplace", cfg.OTLPEndpoint)
	defer shutdown(ctx)

	// Store
	var (
		repos   service.Repositories
		tokenDB repository.TokenRepository
	)
	switch cfg.Store {
	case "memory":
		store := memory.NewStore()
		repos = service.Repositories{
			Tx:          store,
			Collections: store.Collections(),
			Tickets:     store.Tickets(),
			Listings:    store.Listings(),
			Bids:        store.Bids(),
		}
		tokenDB = store.Tokens()
		log.Printf("[Marketplace] using in-memory store")
	default:
		db := database.NewPostgresDB(cfg.DSN())
		repos = service.Repositories{
			Tx:          repository.NewTxManager(db),
			Collections: repository.NewCollectionRepository(db),
			Tickets:     repository.NewTicketRepository(db),
			Listings:    repository.NewListingRepository(db),
			Bids:        repository.NewBidRepository(db),
		}
		tokenDB = repository.NewTokenRepository(db)
	}
	tokens := payment.NewTokenLedger(tokenDB, repos.Tx)

	// Committed events go to metrics, RabbitMQ and PubNub
	publishers := events.Multi{monitoring.EventObserver{}}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		publishers = append(publishers, pub)

		// RabbitMQ consumer: sync collections announced by the issuance gateway
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume(ctx)
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewCollectionConsumer(repos.Collections).Start(ctx, msgs)
	}
	if cfg.PubNubPublishKey != "" {
		sender := pubnub.NewClient(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.CustodyAddress)
		publishers = append(publishers, pubnub.NewNotifier(sender))
	}

	opts := []service.Option{
		service.WithPublisher(publishers),
		service.WithFeePercent(cfg.FeePercent),
		service.WithTicketValidity(cfg.TicketValidity),
	}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		opts = append(opts, service.WithLocker(redislock.New(rdb)))
	}

	clk := clock.NewSystem()
	market := service.NewMarketplace(
		repos,
		tokens,
		clk,
		access.NewCustodian(models.Address(cfg.CustodyAddress)),
		access.NewMinter(models.Address(cfg.GatewayAddress)),
		opts...,
	)

	e := newServer(market, tokens, clk, cfg.FaucetEnabled)

	log.Printf("Ticket Marketplace starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
