package application

// ApplicationStatus is the processing stage of an application.
type ApplicationStatus string

const (
	StatusSubmitted           ApplicationStatus = "SUBMITTED"
	StatusPaymentPending      ApplicationStatus = "PAYMENT_PENDING"
	StatusPaymentVerified     ApplicationStatus = "PAYMENT_VERIFIED"
	StatusCounterVerification ApplicationStatus = "COUNTER_VERIFICATION"
	StatusBiometricsPending   ApplicationStatus = "BIOMETRICS_PENDING"
	StatusBiometricsCompleted ApplicationStatus = "BIOMETRICS_COMPLETED"
	StatusControllerReview    ApplicationStatus = "CONTROLLER_REVIEW"
	StatusSeniorOfficerReview ApplicationStatus = "SENIOR_OFFICER_REVIEW"
	StatusDataEntry           ApplicationStatus = "DATA_ENTRY"
	StatusPrintingPending     ApplicationStatus = "PRINTING_PENDING"
	StatusPrinting            ApplicationStatus = "PRINTING"
	StatusQualityAssurance    ApplicationStatus = "QUALITY_ASSURANCE"
	StatusReadyForCollection  ApplicationStatus = "READY_FOR_COLLECTION"
	StatusCollected           ApplicationStatus = "COLLECTED"
	StatusRejected            ApplicationStatus = "REJECTED"
	StatusOnHold              ApplicationStatus = "ON_HOLD"
)

// StatusTransitions is the single source of truth for legal status changes.
// Officers at every stage audit against this table; inserting a new stage only
// touches its in/out edges here. REJECTED and COLLECTED are terminal. ON_HOLD
// fans back out to the stages it is usually entered from, plus REJECTED.
var StatusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted: {
		StatusPaymentPending,
		StatusRejected,
	},
	StatusPaymentPending: {
		StatusPaymentVerified,
		StatusRejected,
	},
	StatusPaymentVerified: {
		StatusCounterVerification,
		StatusRejected,
	},
	StatusCounterVerification: {
		StatusBiometricsPending,
		StatusOnHold,
		StatusRejected,
	},
	StatusBiometricsPending: {
		StatusBiometricsCompleted,
		StatusOnHold,
		StatusRejected,
	},
	StatusBiometricsCompleted: {
		StatusControllerReview,
		StatusOnHold,
		StatusRejected,
	},
	StatusControllerReview: {
		StatusSeniorOfficerReview,
		StatusOnHold,
		StatusRejected,
	},
	StatusSeniorOfficerReview: {
		StatusDataEntry,
		StatusOnHold,
		StatusRejected,
	},
	StatusDataEntry: {
		StatusPrintingPending,
		StatusOnHold,
		StatusRejected,
	},
	StatusPrintingPending: {
		StatusPrinting,
		StatusOnHold,
	},
	StatusPrinting: {
		StatusQualityAssurance,
	},
	StatusQualityAssurance: {
		StatusReadyForCollection,
		StatusPrinting,
	},
	StatusReadyForCollection: {
		StatusCollected,
	},
	StatusOnHold: {
		StatusCounterVerification,
		StatusBiometricsPending,
		StatusControllerReview,
		StatusSeniorOfficerReview,
		StatusDataEntry,
		StatusPrintingPending,
		StatusRejected,
	},
	StatusCollected: {},
	StatusRejected:  {},
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status value.
func (s ApplicationStatus) IsValid() bool {
	_, ok := StatusTransitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s ApplicationStatus) IsTerminal() bool {
	next, ok := StatusTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether s -> next is a legal transition.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range StatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal successor statuses of s.
func (s ApplicationStatus) AllowedTransitions() []ApplicationStatus {
	next := StatusTransitions[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// AllApplicationStatuses returns every valid status value.
func AllApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusSubmitted,
		StatusPaymentPending,
		StatusPaymentVerified,
		StatusCounterVerification,
		StatusBiometricsPending,
		StatusBiometricsCompleted,
		StatusControllerReview,
		StatusSeniorOfficerReview,
		StatusDataEntry,
		StatusPrintingPending,
		StatusPrinting,
		StatusQualityAssurance,
		StatusReadyForCollection,
		StatusCollected,
		StatusRejected,
		StatusOnHold,
	}
}
