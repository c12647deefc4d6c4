package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/hanko-field/pricing/internal/rates"
)

// PubSubRatesPublisher announces committed rate batches on a Pub/Sub topic so
// downstream consumers can refresh their caches.
type PubSubRatesPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubRatesPublisher constructs a Pub/Sub backed rate event publisher.
func NewPubSubRatesPublisher(topic *pubsub.Topic) (*PubSubRatesPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub rates publisher: topic is required")
	}
	return &PubSubRatesPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishRatesUpdated enqueues a rates-updated event on the configured topic.
func (p *PubSubRatesPublisher) PublishRatesUpdated(ctx context.Context, event rates.RatesUpdatedEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub rates publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal rates event: %w", err)
	}

	attrs := map[string]string{
		"count": strconv.Itoa(event.Count),
	}
	if len(event.Pairs) > 0 {
		attrs["pairs"] = strings.Join(event.Pairs, ",")
	}
	if !event.UpdatedAt.IsZero() {
		attrs["updatedAt"] = event.UpdatedAt.Format(time.RFC3339)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish rates event: %w", err)
	}
	return id, nil
}
