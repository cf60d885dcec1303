package repository

import (
	"context"

	"CoinCast/internal/domain/models"
	domrepo "CoinCast/internal/domain/repository"
	"CoinCast/pkg/kafka"
)

// KafkaForecastPublisher writes forecast events keyed by crypto.
type KafkaForecastPublisher struct {
	p *kafka.Producer
}

func NewKafkaForecastPublisher(p *kafka.Producer) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{p: p}
}

func (k *KafkaForecastPublisher) Publish(ctx context.Context, ev *models.ForecastEvent) error {
	return k.p.Publish(ctx, []byte(ev.Crypto), ev)
}

func (k *KafkaForecastPublisher) Close() error { return k.p.Close() }

// NopForecastPublisher drops events; used when Kafka is disabled.
type NopForecastPublisher struct{}

func (NopForecastPublisher) Publish(context.Context, *models.ForecastEvent) error { return nil }

func (NopForecastPublisher) Close() error { return nil }

var (
	_ domrepo.ForecastPublisher = (*KafkaForecastPublisher)(nil)
	_ domrepo.ForecastPublisher = NopForecastPublisher{}
)
