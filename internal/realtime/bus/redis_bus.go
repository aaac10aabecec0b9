package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
)

const (
	defaultChannel  = "neurochat:sse"
	envelopeVersion = 1
	// Feed events older than this are dropped on receipt; clients reload state on reconnect.
	maxEnvelopeAge  = 30 * time.Second
)

var ErrNotUserChannel = errors.New("realtime channel must be a user id")

// envelope is the pub/sub payload. Origin names the publishing instance.
type envelope struct {
	V      int                 `json:"v"`
	Origin string              `json:"origin"`
	SentAt time.Time           `json:"sent_at"`
	Msg    realtime.SSEMessage `json:"msg"`
}

type redisBus struct {
	log      *logger.Logger
	rdb      *goredis.Client
	topic    string
	instance string
	now      func() time.Time
}

// NewRedisBus connects and pings redis. Every instance publishes user feed events to one
// topic and forwards everything it receives into its local hub.
func NewRedisBus(ctx context.Context, log *logger.Logger, cfg Config) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	topic := strings.TrimSpace(cfg.Channel)
	if topic == "" {
		topic = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: 5 * time.Second})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	b := newRedisBus(log, rdb, topic)
	b.log.Info("realtime bus connected", "addr", addr)
	return b, nil
}

func newRedisBus(log *logger.Logger, rdb *goredis.Client, topic string) *redisBus {
	instance := uuid.NewString()
	return &redisBus{
		log:      log.With("component", "RealtimeBus", "topic", topic, "instance", instance),
		rdb:      rdb,
		topic:    topic,
		instance: instance,
		now:      time.Now,
	}
}

func (b *redisBus) encode(msg realtime.SSEMessage) ([]byte, error) {
	if _, err := uuid.Parse(msg.Channel); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotUserChannel, msg.Channel)
	}
	return json.Marshal(envelope{V: envelopeVersion, Origin: b.instance, SentAt: b.now().UTC(), Msg: msg})
}

// decode returns ok=false for payloads this instance should skip.
func (b *redisBus) decode(raw []byte) (realtime.SSEMessage, bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return realtime.SSEMessage{}, false, err
	}
	if env.V != envelopeVersion {
		return realtime.SSEMessage{}, false, fmt.Errorf("unsupported envelope version %d", env.V)
	}
	if !env.SentAt.IsZero() && b.now().Sub(env.SentAt) > maxEnvelopeAge {
		return realtime.SSEMessage{}, false, nil
	}
	return env.Msg, true, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("realtime bus not initialized")
	}
	raw, err := b.encode(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.topic, raw).Err()
}

// StartForwarder blocks until the subscription is confirmed, then delivers messages on a
// goroutine until ctx is done.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("realtime bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.log.Debug("realtime forwarder subscribed")

	go func() {
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				if m == nil {
					continue
				}
				msg, deliver, err := b.decode([]byte(m.Payload))
				if err != nil {
					b.log.Warn("dropping realtime payload", "error", err)
					continue
				}
				if deliver {
					onMsg(msg)
				}
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
