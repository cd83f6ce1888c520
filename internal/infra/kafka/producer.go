package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/infra/config"
)

// Producer owns a sarama AsyncProducer and surfaces its delivery failures.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	cfg      config.KafkaSettings
	errChan  chan error
	done     chan struct{}
	stopped  chan struct{}
}

// NewProducer dials cfg.Brokers and starts draining delivery errors.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	async, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := newProducer(async, cfg, logger)
	p.logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)
	return p, nil
}

func saramaConfig(cfg config.KafkaSettings) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_5_0_0
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}

	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Flush.Frequency = 100 * time.Millisecond
	sc.Producer.Flush.Messages = 100
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true

	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond
	return sc
}

func newProducer(async sarama.AsyncProducer, cfg config.KafkaSettings, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Producer{
		producer: async,
		logger:   logger,
		cfg:      cfg,
		errChan:  make(chan error, 256),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

// drainErrors logs failed deliveries and forwards them to Errors until Close.
func (p *Producer) drainErrors() {
	defer close(p.stopped)
	for {
		select {
		case perr, ok := <-p.producer.Errors():
			if !ok {
				return
			}
			if perr == nil {
				continue
			}
			p.logger.Error("kafka delivery failed",
				zap.Error(perr.Err),
				zap.String("topic", perr.Msg.Topic),
			)
			select {
			case p.errChan <- perr.Err:
			default:
				p.logger.Warn("kafka error channel full, dropping error")
			}
		case <-p.done:
			return
		}
	}
}

// Producer returns the underlying sarama producer.
func (p *Producer) Producer() sarama.AsyncProducer {
	return p.producer
}

// Errors reports delivery failures. It is closed by Close.
func (p *Producer) Errors() <-chan error {
	return p.errChan
}

// Close flushes buffered messages and stops the producer.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")
	close(p.done)
	<-p.stopped
	defer close(p.errChan)

	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

// TopicName prefixes eventType with the configured topic prefix unless it
// already carries it.
func (p *Producer) TopicName(eventType string) string {
	if p.cfg.TopicPrefix == "" {
		return eventType
	}
	prefix := p.cfg.TopicPrefix + "."
	if strings.HasPrefix(eventType, prefix) {
		return eventType
	}
	return prefix + eventType
}
