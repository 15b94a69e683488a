package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cfoust/raingame/pkg/relay"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memory struct {
	recorded chan relay.Summary
	fail     bool
}

func (m *memory) Record(ctx context.Context, summary relay.Summary) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.recorded <- summary
	return nil
}

func TestFollow(t *testing.T) {
	topic := utils.NewTopic[relay.Summary]()
	subscriber := topic.Subscribe()

	good := &memory{recorded: make(chan relay.Summary, 4)}
	bad := &memory{fail: true}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Follow(ctx, subscriber, bad, good)
		close(done)
	}()

	topic.Publish(summary(1))
	topic.Publish(summary(2))

	for _, want := range []uint64{1, 2} {
		select {
		case got := <-good.recorded:
			assert.Equal(t, want, got.ID)
		case <-time.After(time.Second):
			require.FailNow(t, "summary was not recorded")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Follow did not return")
	}

	// Follow unsubscribed, so this must not block
	topic.Publish(summary(3))
}
