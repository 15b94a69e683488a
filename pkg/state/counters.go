package state

import (
	"context"
	"fmt"

	"github.com/cfoust/raingame/pkg/relay"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-redis/redis/v9"
)

const (
	KEY_PREFIX  = "raingame-"
	KEY_MATCHES = KEY_PREFIX + "matches"
	KEY_EXIT    = KEY_PREFIX + "exit-%s"
	KEY_LAST    = KEY_PREFIX + "last"
)

const Nil = redis.Nil

// Counters keeps running totals in Redis so that several relays can share
// them.
type Counters struct {
	client *redis.Client
}

func NewCounters(client *redis.Client) *Counters {
	return &Counters{client: client}
}

func (c *Counters) Record(ctx context.Context, summary relay.Summary) error {
	last, err := cbor.Marshal(summary)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, KEY_MATCHES)
	for _, exit := range summary.Exits {
		pipe.Incr(ctx, fmt.Sprintf(KEY_EXIT, exit))
	}
	pipe.Set(ctx, KEY_LAST, last, 0)

	_, err = pipe.Exec(ctx)
	return err
}

func (c *Counters) Matches(ctx context.Context) (int64, error) {
	count, err := c.client.Get(ctx, KEY_MATCHES).Int64()
	if err == Nil {
		return 0, nil
	}
	return count, err
}

// Exits returns how many handlers have stopped for the given reason.
func (c *Counters) Exits(ctx context.Context, exit relay.Exit) (int64, error) {
	count, err := c.client.Get(ctx, fmt.Sprintf(KEY_EXIT, exit)).Int64()
	if err == Nil {
		return 0, nil
	}
	return count, err
}

// Last returns the most recently recorded match. It returns Nil if there
// is none.
func (c *Counters) Last(ctx context.Context) (relay.Summary, error) {
	var summary relay.Summary

	data, err := c.client.Get(ctx, KEY_LAST).Bytes()
	if err != nil {
		return summary, err
	}

	err = cbor.Unmarshal(data, &summary)
	return summary, err
}
