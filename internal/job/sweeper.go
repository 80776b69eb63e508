package job

import (
	"context"
	"time"
)

// sweepLoop periodically reclaims records older than the retention
// window so an idle process does not hold finished archives forever.
func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return

		case <-ticker.C:
			if _, err := m.Reclaim(context.Background(), m.config.Retention); err != nil {
				m.logger.Error("periodic reclaim failed", "error", err)
			}
		}
	}
}
