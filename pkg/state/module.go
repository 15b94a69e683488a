package state

import (
	"context"

	"github.com/cfoust/raingame/pkg/relay"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog/log"
)

type Recorder interface {
	Record(ctx context.Context, summary relay.Summary) error
}

// Follow hands every summary from matches to each recorder until ctx is
// done. A recorder that fails is logged and skipped for that match only.
func Follow(ctx context.Context, matches *utils.Subscriber[relay.Summary], recorders ...Recorder) {
	defer matches.Done()

	for {
		select {
		case summary := <-matches.Recv():
			for _, recorder := range recorders {
				if err := recorder.Record(ctx, summary); err != nil {
					log.Warn().
						Err(err).
						Uint64("match", summary.ID).
						Msgf("failed to record match with %T", recorder)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
