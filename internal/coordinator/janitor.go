package coordinator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"seastrike/internal/game"
	"seastrike/internal/protocol"
)

// StartJanitor runs the background sweep: presence grace expiry, the match
// consequences of players who never came back, and retention deletion of
// retired sessions.
func (c *Coordinator) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep(c.clock.Now())
			}
		}
	}()
}

// Sweep performs one janitor pass at the given instant.
func (c *Coordinator) Sweep(now time.Time) {
	expired := c.presence.ExpireGrace(now)
	for _, identity := range expired {
		c.settleAbandoned(identity)
	}
	if len(expired) > 0 {
		c.presence.Broadcast(protocol.NewSetPlayers(c.presence.Roster()))
	}

	if n := c.sessions.SweepExpired(now); n > 0 {
		log.Debug().Int("count", n).Msg("expired sessions swept")
	}
}

// settleAbandoned applies the abandonment policy for a player whose grace
// window lapsed: their live match, if any, ends the same way an explicit
// departure would.
func (c *Coordinator) settleAbandoned(identity string) {
	log.Info().Str("player", identity).Msg("reconnect grace expired")
	s, err := c.sessions.ResolveByPlayer(identity)
	if err != nil {
		return
	}
	if s.Phase() == game.PhaseFinished {
		return
	}
	c.abandon(s, identity)
}
