package messaging

import (
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Each topic maps to a durable topic exchange plus a durable queue of the
// same name. Names are prefixed per deployment so several catalogs can
// share one broker.
func (t ChangeTopic) fullName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, t)
}

// Declare creates the exchange and queue for the topic if they do not
// exist yet. Publishers call this once on connect.
func (t ChangeTopic) Declare(ch *amqp.Channel, prefix string) error {
	name := t.fullName(prefix)
	if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Publish marshals data as JSON and sends it on the topic, using a fresh
// channel per message.
func Publish[V any](c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := topic.fullName(prefix)
	return ch.Publish(name, name, true, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Subscribe binds an exclusive anonymous queue to the topic exchange so
// every replica sees every message, independent of the durable queue.
func (t ChangeTopic) Subscribe(ch *amqp.Channel, prefix string) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare("", false, false, true, false, nil)
	if err != nil {
		return nil, err
	}
	name := t.fullName(prefix)
	if err := ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(q.Name, "", false, false, false, false, nil)
}

// Listen subscribes to the topic and feeds each delivery to handler on a
// background goroutine. A handler error stops the loop; handled messages
// are acked.
func (t ChangeTopic) Listen(ch *amqp.Channel, prefix string, handler func(amqp.Delivery) error) error {
	deliveries, err := t.Subscribe(ch, prefix)
	if err != nil {
		return err
	}

	go func() {
		defer ch.Close()
		for d := range deliveries {
			if err := handler(d); err != nil {
				log.Printf("Error processing %s message: %v", t, err)
				return
			}
			d.Ack(false)
		}
	}()
	return nil
}
