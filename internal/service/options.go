package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/queue"
)

// common holds the collaborators every service may use. Defaults are a
// no-op cache, no-op publisher, the standard logrus logger and time.Now.
type common struct {
	events EventPublisher
	cache  ProfileCache
	log    logrus.FieldLogger
	now    func() time.Time
}

func newCommon(opts []Option) common {
	c := common{
		events: noEvents{},
		cache:  noCache{},
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a service.
type Option func(*common)

func WithEvents(p EventPublisher) Option {
	return func(c *common) {
		if p != nil {
			c.events = p
		}
	}
}

func WithCache(pc ProfileCache) Option {
	return func(c *common) {
		if pc != nil {
			c.cache = pc
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *common) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *common) { c.now = now }
}

// publish is best effort; the change it reports has already been committed.
func (c common) publish(ctx context.Context, t queue.EventType, userID int64, email string) {
	ev := queue.NewAccountEvent(t, userID, email, c.now())
	if err := c.events.Publish(ctx, ev); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"event": t, "user_id": userID}).
			Warn("account event not published")
	}
}

func (c common) evict(ctx context.Context, userID int64) {
	if err := c.cache.Invalidate(ctx, userID); err != nil {
		c.log.WithError(err).WithField("user_id", userID).Warn("profile cache invalidate failed")
	}
}
