package constants

import "fmt"

const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const (
	StatusActive      = "active"
	StatusInvited     = "invited"
	StatusDeactivated = "deactivated"
)

const (
	ErrOnlyAdminsCanAccess = "Only admins can access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

var AllRoles = []string{RoleTeacher, RoleAdmin}
var AllStatuses = []string{StatusActive, StatusInvited, StatusDeactivated}
