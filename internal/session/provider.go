package session

import (
	"context"
	"sync/atomic"
	"time"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
)

// Provider hands out fresh web sessions. Sessions are not reused across
// fetches; each Acquire builds a new collector with an empty cookie jar.
type Provider struct {
	timeout   time.Duration
	userAgent string

	active atomic.Int64
}

var _ interfaces.SessionProvider = (*Provider)(nil)

func NewProvider(timeout time.Duration, userAgent string) *Provider {
	return &Provider{
		timeout:   timeout,
		userAgent: userAgent,
	}
}

func (p *Provider) Acquire(ctx context.Context) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := newWebSession(p.timeout, p.userAgent)
	if err != nil {
		return nil, err
	}
	n := p.active.Add(1)
	logger.Debug(ctx, "Session acquired", "active", n)
	return s, nil
}

func (p *Provider) Release(s interfaces.Session) error {
	if s == nil {
		return nil
	}
	p.active.Add(-1)
	return nil
}

// Active returns the number of sessions currently checked out.
func (p *Provider) Active() int {
	return int(p.active.Load())
}
