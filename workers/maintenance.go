// workers/maintenance.go
package workers

import (
	"log"
	"time"

	"sales-kpi-bot/services"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the background housekeeping jobs: expiring
// stale conversations and re-syncing the admin cache against the roster
// table. Returns the scheduler so main can shut it down.
func StartMaintenanceScheduler(conversations *services.ConversationManager, roles *services.RoleService) gocron.Scheduler {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: drop conversations idle past the TTL
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			conversations.SweepExpired()
		}),
	)

	// Every 5 minutes: rebuild the admin cache. Mutations update the cache
	// synchronously; this catches direct DB edits.
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if err := roles.Refresh(); err != nil {
				log.Printf("[Scheduler] Admin cache refresh failed: %v", err)
			}
		}),
	)

	log.Println("✅ Maintenance scheduler running (sweep 1m, admin refresh 5m)")
	return sched
}
