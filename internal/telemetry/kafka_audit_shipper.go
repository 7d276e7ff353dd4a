package telemetry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	cfg "github.com/InternLink/portal-service/internal/config"
)

// KafkaAuditShipper exports login-audit events asynchronously. Publish
// never blocks the request path: events are dropped on backpressure.
type KafkaAuditShipper struct {
	cfg    cfg.KafkaConfig
	writer *kafka.Writer
	ch     chan LoginAuditEvent
	stop   chan struct{}
}

func NewKafkaAuditShipper(cfgIn cfg.KafkaConfig) (*KafkaAuditShipper, error) {
	c := cfgIn
	if !c.Enabled {
		return &KafkaAuditShipper{cfg: c, ch: make(chan LoginAuditEvent), stop: make(chan struct{})}, nil
	}
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 2 * time.Second
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = c.BatchSize * 4
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}

	tr := &kafka.Transport{DialTimeout: c.DialTimeout}
	if c.TLS {
		tr.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Transport:              tr,
		AllowAutoTopicCreation: false,
		Async:                  true,
		BatchTimeout:           c.FlushEvery,
		BatchSize:              c.BatchSize,
		WriteTimeout:           c.WriteTimeout,
	}

	return &KafkaAuditShipper{
		cfg:    c,
		writer: w,
		ch:     make(chan LoginAuditEvent, c.QueueCapacity),
		stop:   make(chan struct{}),
	}, nil
}

func (s *KafkaAuditShipper) Start() {
	if !s.cfg.Enabled {
		return
	}
	go s.loop()
}

func (s *KafkaAuditShipper) Stop(ctx context.Context) {
	if !s.cfg.Enabled {
		return
	}
	close(s.stop)
	drain := time.After(500 * time.Millisecond)
	for {
		select {
		case ev := <-s.ch:
			_ = s.dispatch(ev)
		case <-drain:
			_ = s.writer.Close()
			return
		}
	}
}

func (s *KafkaAuditShipper) Publish(ev LoginAuditEvent) {
	if !s.cfg.Enabled {
		return
	}
	select {
	case s.ch <- ev:
	default:
		// drop on backpressure
	}
}

func (s *KafkaAuditShipper) loop() {
	for {
		select {
		case ev := <-s.ch:
			_ = s.dispatch(ev)
		case <-s.stop:
			for {
				select {
				case ev := <-s.ch:
					_ = s.dispatch(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *KafkaAuditShipper) dispatch(ev LoginAuditEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var key []byte
	if ev.IP != "" {
		key = []byte(ev.IP)
	}
	return s.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   key,
		Value: payload,
		Time:  ev.Timestamp,
	})
}
