package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

const orderPaidQueueName = "order.paid"

// Issuer is the slice of AccessService the consumer needs.
type Issuer interface {
	Issue(ctx context.Context, in service.IssueInput) ([]model.Pass, error)
}

// StartOrderPaidConsumer connects to RabbitMQ, declares the durable
// order.paid queue and hands every payment confirmation to the issuer.
// It runs a reconnect loop with backoff and keeps going through broker
// restarts; malformed messages are rejected without requeue so a bad
// producer cannot create a tight redelivery loop.
func StartOrderPaidConsumer(issuer Issuer) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, issuer); err != nil {
			log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, issuer Issuer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("order-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(orderPaidQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(orderPaidQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleOrderPaid(d.Body, issuer); err != nil {
			log.Printf("order-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleOrderPaid parses one OrderPaid message and issues its passes.
// A repeated delivery for an already-processed order is acknowledged as
// success: the idempotency guard makes the retry a no-op.
func handleOrderPaid(body []byte, issuer Issuer) error {
	var ev OrderPaidEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	validFrom, err := time.Parse(time.RFC3339, ev.ValidFrom)
	if err != nil {
		return fmt.Errorf("parse valid_from: %w", err)
	}
	validTo, err := time.Parse(time.RFC3339, ev.ValidTo)
	if err != nil {
		return fmt.Errorf("parse valid_to: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	passes, err := issuer.Issue(ctx, service.IssueInput{
		OrderID:     ev.OrderID,
		UserID:      ev.UserID,
		VenueID:     ev.VenueID,
		WindowStart: validFrom,
		WindowEnd:   validTo,
		MaxUses:     ev.MaxUsesPerCredential,
		Count:       ev.EntitlementCount,
	})
	if errors.Is(err, service.ErrAlreadyIssued) {
		log.Printf("order-consumer: order %s already issued (%d passes), acking redelivery", ev.OrderID, len(passes))
		return nil
	}
	if err != nil {
		return fmt.Errorf("issue order %s: %w", ev.OrderID, err)
	}
	log.Printf("order-consumer: issued %d passes for order %s", len(passes), ev.OrderID)
	return nil
}
