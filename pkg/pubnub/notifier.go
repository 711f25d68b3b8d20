// Package pubnub pushes bid and settlement updates to per-account realtime
// channels.
package pubnub

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	pubnub "github.com/pubnub/go/v7"
)

// Sender delivers one message to one channel.
type Sender interface {
	Send(channel string, message any) error
}

type client struct {
	pn *pubnub.PubNub
}

func NewClient(publishKey, subscribeKey, userID string) Sender {
	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	return &client{pn: pubnub.NewPubNub(cfg)}
}

func (c *client) Send(channel string, message any) error {
	_, status, err := c.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish %s: %w", channel, err)
	}
	if status.Error != nil {
		return fmt.Errorf("pubnub publish %s: status %d: %w", channel, status.StatusCode, status.Error)
	}
	return nil
}

type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func AccountChannel(addr models.Address) string {
	return "account." + addr.String()
}

// Publish notifies every account an auction event touches. Other event
// types are ignored.
func (n *Notifier) Publish(_ context.Context, e events.Event) error {
	var errs []error
	for _, addr := range recipients(e) {
		message := map[string]any{
			"type":          e.Type,
			"event_id":      e.ID,
			"collection_id": e.CollectionID,
			"ticket_id":     e.TicketID,
			"occurred_at":   e.OccurredAt,
			"data":          e.Payload,
		}
		if err := n.sender.Send(AccountChannel(addr), message); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("[PubNub] failed to notify %s %s: %v", e.Type, e.ID, err)
		return err
	}
	return nil
}

func recipients(e events.Event) []models.Address {
	var out []models.Address
	add := func(addrs ...models.Address) {
		for _, a := range addrs {
			if !a.IsNull() {
				out = append(out, a)
			}
		}
	}

	switch p := e.Payload.(type) {
	case events.BidSubmitted:
		add(p.Bidder, p.RefundedBidder)
	case events.BidAccepted:
		add(p.Seller, p.Buyer, p.Creator)
	case events.Delisting:
		add(p.Seller, p.RefundedBidder)
	}
	return out
}

var _ events.Publisher = (*Notifier)(nil)
