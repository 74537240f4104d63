package jobs

import (
	"context"

	"adspace-backend/internal/logger"
)

// ExpireClaims expires reservation claims whose hold window has lapsed and
// promotes the next claim in each affected unit's queue.
func (jr *JobRunner) ExpireClaims() {
	jr.runWithRecovery("ExpireClaims", func() {
		ctx := context.Background()

		expired, err := jr.services.Claim.ExpireAndPromote(ctx)
		if err != nil {
			logger.Error("Failed to expire claims", "error", err)
			return
		}

		logger.Info("Expired claims swept", "count", expired)
	})
}
