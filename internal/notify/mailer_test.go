package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakeOutbox) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	f.values = append(f.values, values...)
	return redis.NewIntResult(int64(len(f.values)), f.err)
}

func TestRedisMailer_Send(t *testing.T) {
	outbox := &fakeOutbox{}
	m := NewRedisMailer(outbox, "mail:outbox", "noreply@yamdb.local")
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, m.Send(context.Background(), "alice@example.com", "code", "abc-123"))

	assert.Equal(t, "mail:outbox", outbox.key)
	require.Len(t, outbox.values, 1)

	var msg Message
	require.NoError(t, json.Unmarshal(outbox.values[0].([]byte), &msg))
	assert.Equal(t, "noreply@yamdb.local", msg.From)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "abc-123", msg.Body)
	assert.Equal(t, 2024, msg.Queued.Year())
}

func TestRedisMailer_SendFailure(t *testing.T) {
	outbox := &fakeOutbox{err: errors.New("connection refused")}
	m := NewRedisMailer(outbox, "mail:outbox", "noreply@yamdb.local")

	err := m.Send(context.Background(), "alice@example.com", "code", "abc-123")
	assert.ErrorContains(t, err, "queue mail")
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer("noreply@yamdb.local", slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, m.Send(context.Background(), "bob@example.com", "code", "xyz"))
	assert.Contains(t, buf.String(), "to=bob@example.com")
	assert.Contains(t, buf.String(), "body=xyz")
}
