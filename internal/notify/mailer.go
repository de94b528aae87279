package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/config"

	"github.com/redis/go-redis/v9"
)

// Mailer delivers a plain-text message. Callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Message struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Queued  time.Time `json:"queued_at"`
}

// LogMailer writes messages to the log instead of sending them (development backend).
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "mail",
		"from", m.from,
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Outbox is the subset of the redis client RedisMailer needs.
type Outbox interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisMailer queues JSON messages on a Redis list consumed by an external delivery worker.
type RedisMailer struct {
	client Outbox
	key    string
	from   string
	now    func() time.Time
}

func NewRedisMailer(client Outbox, key, from string) *RedisMailer {
	return &RedisMailer{client: client, key: key, from: from, now: time.Now}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func (m *RedisMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(Message{
		From:    m.from,
		To:      to,
		Subject: subject,
		Body:    body,
		Queued:  m.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}
	if err := m.client.LPush(ctx, m.key, payload).Err(); err != nil {
		return fmt.Errorf("queue mail: %w", err)
	}
	return nil
}

// NewMailer picks the backend named by MAIL_BACKEND.
func NewMailer(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	if cfg.MailBackend != "redis" {
		return NewLogMailer(cfg.MailFrom, logger), nil
	}
	client, err := NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	logger.Info("mail outbox on redis", "key", cfg.MailOutboxKey)
	return NewRedisMailer(client, cfg.MailOutboxKey, cfg.MailFrom), nil
}
