package domain

// Pipeline statuses as stored on the CRM lead record.
const (
	StatusNewLead          = "new_lead"
	StatusContactAttempted = "contact_attempted"
	StatusDemoCreated      = "demo_created"
	StatusDemoSent         = "demo_sent"
	StatusDemoEngaged      = "demo_engaged"
	StatusReadyToBuy       = "ready_to_buy"
	StatusCustomerWon      = "customer_won"
	StatusLostClosed       = "lost_closed"
)

var stageProgress = map[string]float64{
	StatusNewLead:          0,
	StatusContactAttempted: 0.15,
	StatusDemoCreated:      0.30,
	StatusDemoSent:         0.45,
	StatusDemoEngaged:      0.60,
	StatusReadyToBuy:       0.80,
	StatusCustomerWon:      1.0,
	StatusLostClosed:       1.0,
}

// TerminalStatuses lists the statuses that are never scored or forecast.
var TerminalStatuses = []string{StatusCustomerWon, StatusLostClosed}

// IsKnownStatus reports whether status is one of the CRM pipeline statuses.
func IsKnownStatus(status string) bool {
	_, ok := stageProgress[status]
	return ok
}

// IsTerminalStatus reports whether the lead is won or lost.
func IsTerminalStatus(status string) bool {
	return status == StatusCustomerWon || status == StatusLostClosed
}

// StageProgress returns how far through the pipeline a status sits, from 0
// (new lead) to 1 (closed). Unknown statuses count as 0.
func StageProgress(status string) float64 {
	return stageProgress[status]
}
