package outbox

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

var errNoClient = errors.New("kafka publisher has no client")

// KafkaPublisher produces entries to one topic, keyed by sak id so that all
// events of a sak land on the same partition in hendelsenummer order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(client *kgo.Client, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, entries []Entry) error {
	if p.client == nil {
		return errNoClient
	}
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   e.Key(),
			Value: e.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(e.EventType)},
				{Key: "outbox_id", Value: []byte(e.ID.String())},
			},
			Timestamp: e.CreatedAt,
		})
	}
	return p.client.ProduceSync(ctx, records...).FirstErr()
}
