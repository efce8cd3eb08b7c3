package events

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher pushes post lifecycle events to NATS. A nil *Publisher is a
// valid no-op, so callers never have to branch on whether eventing is
// configured.
type Publisher struct {
	conn   *nats.Conn
	logger *zap.SugaredLogger
}

// NewPublisherFromEnv connects to NATS_URL. When the variable is unset,
// eventing is disabled and a nil Publisher is returned without error.
func NewPublisherFromEnv(logger *zap.SugaredLogger) (*Publisher, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		return nil, nil
	}
	opts := []nats.Option{
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warnw("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infow("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, logger: logger}, nil
}

func (p *Publisher) publish(subject string, v any) {
	if p == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Warnw("marshal event", "subject", subject, "err", err)
		return
	}
	// fire-and-forget: event delivery must never fail a request
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warnw("publish event", "subject", subject, "err", err)
		return
	}
	p.logger.Debugw("published event", "subject", subject)
}

func (p *Publisher) PublishPostCreated(ev PostCreatedEvent) { p.publish(PostCreated, ev) }

func (p *Publisher) PublishPostDeleted(ev PostDeletedEvent) { p.publish(PostDeleted, ev) }

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
