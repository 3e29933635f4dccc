package constants

// Role codes match the `role` column in the users table.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER" // centre-scoped operational role
	RoleConfirmer  Role = "CONFIRMER"
	RoleCommercial Role = "COMMERCIAL"
)

// Capability names, resolved per role through role_capabilities.
const (
	CapReportCommentWrite = "reports:comment:write"
	CapRecordsExport      = "records:export"
	CapPendingDecide      = "pending:decide"
)

// Assignment slot limits on a record.
const (
	MaxCommercials = 2
	MaxConfirmers  = 3
)

// Allowed reschedule offsets, in minutes.
var RescheduleOffsets = []int{10, 15, 20, 30, 45, 60, 90, 120}

func IsAllowedRescheduleOffset(m int) bool {
	for _, v := range RescheduleOffsets {
		if v == m {
			return true
		}
	}
	return false
}
