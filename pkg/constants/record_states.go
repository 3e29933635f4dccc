package constants

// RecordState is the primary lifecycle stage of a lead record.
// Codes match the `state` column in the records table.
type RecordState string

const (
	StateNew                  RecordState = "NEW"
	StateNRP                  RecordState = "NRP"
	StateConfirmed            RecordState = "CONFIRMED"
	StateCancelReschedule     RecordState = "CANCEL_RESCHEDULE"
	StateClientThinking       RecordState = "CLIENT_THINKING"
	StateRefused              RecordState = "REFUSED"
	StateSigned               RecordState = "SIGNED"
	StateSignedPartial        RecordState = "SIGNED_PARTIAL"
	StateSignedComplete       RecordState = "SIGNED_COMPLETE"
	StateSignedWithdrawn      RecordState = "SIGNED_WITHDRAWN"
	StateCallbackOffice       RecordState = "CALLBACK_OFFICE"
	StateUnreachableFinancing RecordState = "UNREACHABLE_FINANCING"
	StateOutOfScope           RecordState = "OUT_OF_SCOPE"
)

// SubState refines a state; only a fixed subset of states allow one.
type SubState string

const (
	SubNRPFirstAttempt  SubState = "NRP_FIRST_ATTEMPT"
	SubNRPSecondAttempt SubState = "NRP_SECOND_ATTEMPT"
	SubNRPVoicemail     SubState = "NRP_VOICEMAIL"

	SubThinkingSpouse    SubState = "NEEDS_SPOUSE"
	SubThinkingFinancing SubState = "NEEDS_FINANCING"
	SubThinkingCallback  SubState = "CALLBACK_LATER"

	SubRefusedPrice         SubState = "PRICE_TOO_HIGH"
	SubRefusedTiming        SubState = "BAD_TIMING"
	SubRefusedCompetitor    SubState = "COMPETITOR"
	SubRefusedNotInterested SubState = "NOT_INTERESTED"

	SubWithdrawnCoolingOff      SubState = "COOLING_OFF"
	SubWithdrawnFinancingDenied SubState = "FINANCING_DENIED"

	SubCancelClient     SubState = "CLIENT_REQUEST"
	SubCancelCommercial SubState = "COMMERCIAL_REQUEST"
)

// Signature family states carry the same payload schema.
var SignedStates = []RecordState{
	StateSigned,
	StateSignedPartial,
	StateSignedComplete,
}

func IsSignedState(s RecordState) bool {
	for _, c := range SignedStates {
		if c == s {
			return true
		}
	}
	return false
}

// Reschedule/callback family: the transition must carry at least a date or a time.
var RescheduleFamilyStates = []RecordState{
	StateNRP,
	StateCancelReschedule,
	StateCallbackOffice,
}

func IsRescheduleFamily(s RecordState) bool {
	for _, c := range RescheduleFamilyStates {
		if c == s {
			return true
		}
	}
	return false
}

// ProductType gates which optional payload fields are relevant.
type ProductType string

const (
	ProductHeating ProductType = "HEATING"
	ProductSolar   ProductType = "SOLAR"
)
