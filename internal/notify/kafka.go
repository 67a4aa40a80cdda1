// README: Kafka-backed dispatcher; a delivery worker consumes the topic.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaDispatcher{writer: w}
}

func (d *KafkaDispatcher) SendOTP(ctx context.Context, ch Channel, to, code string) error {
	return d.publish(ctx, to, Message{Kind: "otp", Channel: ch, To: to, Code: code})
}

func (d *KafkaDispatcher) SendRideAlert(ctx context.Context, to, subject, rideID, body string) error {
	return d.publish(ctx, to, Message{Kind: "ride_alert", To: to, Subject: subject, RideID: rideID, Body: body})
}

func (d *KafkaDispatcher) publish(ctx context.Context, key string, m Message) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(m)
	return d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

func (d *KafkaDispatcher) Close() error {
	if d.writer == nil {
		return nil
	}
	return d.writer.Close()
}
