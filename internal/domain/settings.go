package domain

// Keys under which the study state is persisted.
const (
	KeyStacks               = "stacks"
	KeyReviewRecords        = "reviewRecords"
	KeyNotificationInterval = "notificationInterval"
)

// Permission is the platform's notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a config value onto a Permission. Unknown values map to default.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}
