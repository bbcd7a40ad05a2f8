package businessflow

import (
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
)

// MaxNextFollowUpDate returns the last allowed next follow-up date for a
// stage, or false when the stage is uncapped
func MaxNextFollowUpDate(stage string, now time.Time) (time.Time, bool) {
	horizon, capped := models.FollowUpHorizon(stage)
	if !capped {
		return time.Time{}, false
	}
	return utils.StartOfDay(now.UTC()).Add(horizon), true
}

// ValidateNextFollowUpDate enforces the per-stage window on the next follow-up
// date. Dates are compared by calendar day in UTC and both ends are inclusive.
// A nil date is allowed and leaves the debtor without a scheduled follow-up.
func ValidateNextFollowUpDate(stage string, next *time.Time, now time.Time) error {
	if !models.IsKnownDealStage(stage) {
		return ErrInvalidDealStage
	}
	if next == nil {
		return nil
	}
	day := utils.StartOfDay(next.UTC())
	if day.Before(utils.StartOfDay(now.UTC())) {
		return ErrFollowUpDateInPast
	}
	if limit, capped := MaxNextFollowUpDate(stage, now); capped && day.After(limit) {
		return ErrFollowUpDateTooFar
	}
	return nil
}
