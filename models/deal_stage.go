package models

import "time"

// DealStage is an entry of the fixed collection-status vocabulary
type DealStage struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Deal stage codes with special handling
const (
	DealStageSelect           = "0"
	DealStageIntroductionCall = "2"
	DealStageScheduledPayment = "7"
	DealStageOneOffPayment    = "8"
	DealStageDebtSettled      = "10"
	DealStagePTP              = "23"
	DealStageAccountClosed    = "45"

	UnknownDealStageLabel = "Unknown"
)

// DealStages lists the vocabulary in code order
var DealStages = []DealStage{
	{"0", "Select"},
	{"1", "Outsource Email"},
	{"2", "Introduction Call"},
	{"3", "Ringing No Response"},
	{"4", "Field Visit Meeting"},
	{"5", "Negotiation in progress"},
	{"7", "Scheduled Payment"},
	{"8", "One-Off Payment"},
	{"9", "Payment Confirmed by Client"},
	{"10", "Debt Settled"},
	{"11", "Disputing"},
	{"12", "Legal"},
	{"13", "No Contact Provided"},
	{"14", "Non-Committal"},
	{"15", "Wrong Number"},
	{"16", "Requesting more Information"},
	{"17", "Calls Dropped"},
	{"18", "Not in Service"},
	{"19", "Out of Service"},
	{"20", "Requested Call Back"},
	{"21", "Invalid Number"},
	{"22", "Invalid Email"},
	{"23", "PTP"},
	{"24", "Phone Switched Off"},
	{"25", "Follow Up-Email"},
	{"26", "Requesting More Information"},
	{"27", "On Hold"},
	{"28", "Phone switched off"},
	{"29", "No contact provided"},
	{"30", "On Hold"},
	{"31", "Invalid Email"},
	{"32", "Invalid Phone Number"},
	{"33", "Out of Service"},
	{"34", "Not in Service"},
	{"45", "Account closed"},
	{"46", "Account Recalled"},
	{"47", "Check-off Payment"},
	{"48", "Pending Booking"},
	{"49", "Pending"},
}

var dealStageLabels = func() map[string]string {
	m := make(map[string]string, len(DealStages))
	for _, s := range DealStages {
		m[s.Code] = s.Label
	}
	return m
}()

// DealStageLabel resolves a code, returning "Unknown" for codes outside the table
func DealStageLabel(code string) string {
	if label, ok := dealStageLabels[code]; ok {
		return label
	}
	return UnknownDealStageLabel
}

// IsKnownDealStage reports whether code is part of the vocabulary
func IsKnownDealStage(code string) bool {
	_, ok := dealStageLabels[code]
	return ok
}

// FollowUpHorizon is how far ahead the next follow-up may be scheduled for a stage.
// The boolean is false when the stage has no limit.
func FollowUpHorizon(code string) (time.Duration, bool) {
	switch code {
	case DealStageAccountClosed:
		return 0, false
	case DealStagePTP, DealStageScheduledPayment, DealStageOneOffPayment:
		return 30 * 24 * time.Hour, true
	default:
		return 7 * 24 * time.Hour, true
	}
}
