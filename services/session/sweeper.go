package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run sweeps expired sessions every interval until ctx is cancelled. The
// sweep uses the same per-session exclusion as merges, so it never removes
// a session mid-update.
func (s *DefaultSessionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Logger.Info("session expiry sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("session expiry sweeper stopped")
			return
		case <-ticker.C:
			if n := s.ExpireInactive(s.now()); n > 0 {
				s.Logger.Info("swept expired call sessions", zap.Int("count", n))
			}
		}
	}
}
