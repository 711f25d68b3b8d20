package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errInvalidCollection = errors.New("invalid collection announcement")

type CollectionConsumer struct {
	repo repository.CollectionRepository
}

func NewCollectionConsumer(repo repository.CollectionRepository) *CollectionConsumer {
	return &CollectionConsumer{repo: repo}
}

// Start listens for collection announcements and registers them in the
// marketplace store.
func (cc *CollectionConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(ctx, msg)
		}
		log.Println("[CollectionConsumer] channel closed, stopping consumer")
	}()
}

func (cc *CollectionConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var collection models.Collection
	if err := json.Unmarshal(msg.Body, &collection); err != nil {
		log.Printf("[CollectionConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if err := normalize(&collection); err != nil {
		log.Printf("[CollectionConsumer] dropping collection %d: %v", collection.ID, err)
		msg.Nack(false, false)
		return
	}

	err := cc.repo.Register(ctx, &collection)
	if errors.Is(err, repository.ErrConflict) {
		log.Printf("[CollectionConsumer] dropping collection %d: terms differ from the registered collection", collection.ID)
		msg.Nack(false, false)
		return
	}
	if err != nil {
		log.Printf("[CollectionConsumer] failed to register collection %d: %v", collection.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[CollectionConsumer] synced collection %d: %s", collection.ID, collection.Name)
	msg.Ack(false)
}

func normalize(c *models.Collection) error {
	if c.ID == 0 || c.MaxTickets == 0 || c.Creator.IsNull() || c.Minter.IsNull() {
		return errInvalidCollection
	}
	if strings.TrimSpace(c.PaymentToken) == "" || c.Price.IsNegative() || !c.Price.IsInteger() {
		return errInvalidCollection
	}
	if c.Admin.IsNull() {
		c.Admin = c.Creator
	}
	if c.ValidityWindow <= 0 {
		c.ValidityWindow = models.DefaultValidityWindow
	}
	// Tickets are minted on this ledger only.
	c.TicketsSold = 0
	return nil
}
