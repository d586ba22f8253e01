// workers/pool_reconciler.go
package workers

import (
	"context"
	"log"
	"time"

	"mission-rewards-system/services"

	"gorm.io/gorm"
)

// PoolReconciler periodically compares the central pool counters against the
// sums of the per-brand budget rows. Drift means a bug in one of the money
// paths; the worker reports, it never repairs.
type PoolReconciler struct {
	DB     *gorm.DB
	Budget *services.BudgetService
}

func NewPoolReconciler(db *gorm.DB, budget *services.BudgetService) *PoolReconciler {
	return &PoolReconciler{DB: db, Budget: budget}
}

// Run blocks until ctx is done, reconciling every interval.
func Run(ctx context.Context, r *PoolReconciler, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[Reconcile] pool reconciler running (every %s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[Reconcile] pool reconciler stopped")
			return
		case <-ticker.C:
			drift, err := r.Budget.ReconcilePool()
			if err != nil {
				log.Printf("[Reconcile] error: %v", err)
				continue
			}
			if drift.Clean() {
				continue
			}
			// ReconcilePool already logged the deltas; count the rows involved
			// so an operator knows the blast radius.
			var brands int64
			if err := r.DB.Table("brand_budgets").Count(&brands).Error; err == nil {
				log.Printf("[Reconcile] drift across %d brand budget rows", brands)
			}
		}
	}
}
