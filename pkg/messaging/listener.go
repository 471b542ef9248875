package messaging

import (
	"fmt"
	"log"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := TopicName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// DecodeChange unmarshals the body of a delivery into V.
func DecodeChange[V any](body []byte) (V, error) {
	var v V
	if err := jsoncompat.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode change: %w", err)
	}
	return v, nil
}

// ListenToTopic consumes the topic on ch until the channel closes. Messages
// the handler fails on are rejected without requeue.
func ListenToTopic[V any](ch *amqp.Channel, prefix string, topic ChangeTopic, handler func(V) error) error {
	msgs, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func() {
		defer ch.Close()
		for d := range msgs {
			if err := handleDelivery(d.Body, handler); err != nil {
				log.Printf("Error processing %s message: %v", topic, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
		log.Printf("stopped listening to %s", TopicName(prefix, topic))
	}()
	return nil
}

func handleDelivery[V any](body []byte, handler func(V) error) error {
	v, err := DecodeChange[V](body)
	if err != nil {
		return err
	}
	return handler(v)
}
