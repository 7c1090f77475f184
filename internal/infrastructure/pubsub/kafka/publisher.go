package kafkapubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/sony/gobreaker"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	"github.com/tdex-network/tdex-otc/pkg/circuitbreaker"
)

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       *gobreaker.CircuitBreaker
}

// NewPublisher returns an EventPublisher that produces every event as a
// json message to the given kafka topic.
func NewPublisher(brokers []string, topic string) (ports.EventPublisher, error) {
	if len(brokers) <= 0 {
		return nil, fmt.Errorf("missing kafka brokers")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithProducer(producer, topic)
}

// NewPublisherWithProducer is like NewPublisher but uses the given producer.
func NewPublisherWithProducer(
	producer sarama.SyncProducer, topic string,
) (ports.EventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("missing kafka producer")
	}
	if topic == "" {
		return nil, fmt.Errorf("missing kafka topic")
	}
	return &publisher{
		producer: producer,
		topic:    topic,
		cb:       circuitbreaker.NewCircuitBreaker("kafka"),
	}, nil
}

func (p *publisher) PublishEvent(_ context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(messageKey(event)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(event.Type)},
		},
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"event":     event.ID,
			"partition": partition,
			"offset":    offset,
		}).Trace("kafka: event produced")
		return nil, nil
	})
	return err
}

func (p *publisher) Close() {
	if err := p.producer.Close(); err != nil {
		log.WithError(err).Warn("kafka: failed to close producer")
	}
}

// messageKey keeps the events of the same offer in the same partition, so
// that they are consumed in order.
func messageKey(event *domain.Event) string {
	if event.OfferID > 0 {
		return strconv.FormatUint(event.OfferID, 10)
	}
	return event.Type.String()
}
