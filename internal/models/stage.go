package models

// Stage is a step of the checkout sequence
type Stage string

const (
	StageClosed       Stage = "closed"
	StageBrowsing     Stage = "browsing"
	StagePreviewOpen  Stage = "preview"
	StageBasketOpen   Stage = "basket"
	StagePaymentEntry Stage = "payment"
	StageContactEntry Stage = "contact"
	StageConfirmation Stage = "confirmation"
)

// String representation (for logging)
func (s Stage) String() string {
	return string(s)
}

// stageTransitions lists the stages reachable from each stage.
// Every open stage can fall back to browsing when its overlay closes.
var stageTransitions = map[Stage][]Stage{
	StageClosed:       {StageBrowsing, StagePreviewOpen, StageBasketOpen},
	StageBrowsing:     {StagePreviewOpen, StageBasketOpen, StageClosed},
	StagePreviewOpen:  {StageBrowsing, StageBasketOpen},
	StageBasketOpen:   {StageBrowsing, StagePreviewOpen, StagePaymentEntry},
	StagePaymentEntry: {StageBrowsing, StageContactEntry, StageClosed},
	StageContactEntry: {StageBrowsing, StageConfirmation, StageClosed},
	StageConfirmation: {StageBrowsing, StageClosed},
}

// CanTransitionTo reports whether the checkout may move from s to next.
// Staying on the same stage is always allowed.
func (s Stage) CanTransitionTo(next Stage) bool {
	if s == next {
		return true
	}
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InCheckout reports whether s belongs to an active checkout
func (s Stage) InCheckout() bool {
	return s == StagePaymentEntry || s == StageContactEntry || s == StageConfirmation
}
