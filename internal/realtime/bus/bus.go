package bus

import (
	"context"

	"github.com/yungbote/neurochat-backend/internal/realtime"
)

// Bus fans hub messages out across server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type Config struct {
	Addr    string
	Channel string
}
