package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaBatchTimeout bounds how long a produce call waits for its batch to
// fill. Lines are produced one at a time from the read loop, so a long wait
// stalls the connection.
const kafkaBatchTimeout = 10 * time.Millisecond

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink produces each line as one Kafka message.
type KafkaSink struct {
	writer  kafkaWriter
	topic   string
	timeout time.Duration
}

// NewKafkaSink creates a KafkaSink. Brokers are dialed lazily on the first
// write.
func NewKafkaSink(brokers []string, topic string, timeout time.Duration) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    1,
			BatchTimeout: kafkaBatchTimeout,
			WriteTimeout: timeout,
		},
		topic:   topic,
		timeout: timeout,
	}
}

func (s *KafkaSink) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// The writer may retain the value until the batch is flushed.
	value := append([]byte(nil), data...)
	if err := s.writer.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		return fmt.Errorf("kafka write %s: %w", s.topic, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
