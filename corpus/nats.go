package corpus

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "corpus.records"

// BrokerConnect 连接 NATS，地址取 NATS_URL，默认本机
func BrokerConnect(url, name string) (*nats.Conn, error) {
	if url == "" {
		url = os.Getenv("NATS_URL")
	}
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	return nats.Connect(url, opts...)
}

// NATSSink 每条记录单独发布，订阅方自行聚合
type NATSSink struct {
	Conn    *nats.Conn
	Subject string
}

func NewNATSSink(nc *nats.Conn, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{Conn: nc, Subject: subject}
}

func (s *NATSSink) Write(ctx context.Context, records []Record) error {
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := s.Conn.Publish(s.Subject, b); err != nil {
			return err
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		return s.Conn.FlushTimeout(5 * time.Second)
	}
	return s.Conn.FlushWithContext(ctx)
}

func (s *NATSSink) Close() error {
	return s.Conn.Drain()
}
