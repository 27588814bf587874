package jobqueue

import (
	"context"
	"time"
)

const rolloverJobPath = "/v1/internal/jobs/rollover"

// ScheduleRollover enqueues a delayed callback that fires the archive and
// rollover job at runAt. The deduplication id pins one callback per date, so
// rescheduling the same run is a no-op on the QStash side.
func (p *QStashPublisher) ScheduleRollover(ctx context.Context, runAt, now time.Time) error {
	delay := runAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	dedupID := "rollover-" + runAt.UTC().Format("2006-01-02")
	return p.Enqueue(ctx, rolloverJobPath, nil, delay, dedupID)
}
