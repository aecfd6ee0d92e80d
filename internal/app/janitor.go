package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweep removes games not updated within the TTL and closes their
// subscribers. It returns the number of games removed.
func (s *Service) Sweep() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, gs := range s.games {
		if !gs.Updated.Before(cutoff) {
			continue
		}
		delete(s.games, id)
		for sub := range s.subs[id] {
			sub.close()
		}
		delete(s.subs, id)
		n++
	}
	s.mu.Unlock()

	if n > 0 {
		s.log.WithField("removed", n).Info("swept idle games")
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done. A non-positive
// interval disables sweeping.
func (s *Service) RunJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		s.log.WithField("every", every).Warn("janitor disabled: non-positive interval")
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	s.log.WithFields(logrus.Fields{"every": every, "ttl": s.ttl}).Debug("janitor started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
