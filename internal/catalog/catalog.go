// Package catalog declares the authoritative list of permission keys. Code is
// the source of truth; the permissions table is a mirror maintained by the
// catalog synchronizer. Adding or removing a key here is all it takes — the
// next sync run inserts, reactivates or soft-deletes the matching rows.
package catalog

import (
	"regexp"
	"strings"
)

// Key is one dotted "<module>.<action>" permission key.
type Key string

const (
	// Auth / session
	SessionViewSelf      Key = "session.view.self"
	SessionTerminateSelf Key = "session.terminate.self"
	SessionTerminateAny  Key = "session.terminate.any"

	// User management
	UserCreate     Key = "user.create"
	UserView       Key = "user.view"
	UserViewSelf   Key = "user.view.self"
	UserUpdate     Key = "user.update"
	UserDeactivate Key = "user.deactivate"

	// Role management
	RoleCreate Key = "role.create"
	RoleView   Key = "role.view"
	RoleUpdate Key = "role.update"
	RoleDelete Key = "role.delete"
	RoleAssign Key = "role.assign"
	RoleRevoke Key = "role.revoke"

	// Permission management
	PermissionView Key = "permission.view"

	// Organization / structure
	OfficeView   Key = "office.view"
	OfficeCreate Key = "office.create"
	OfficeUpdate Key = "office.update"
	OfficeDelete Key = "office.delete"

	TeamView   Key = "team.view"
	TeamCreate Key = "team.create"
	TeamUpdate Key = "team.update"
	TeamDelete Key = "team.delete"

	DesignationView   Key = "designation.view"
	DesignationCreate Key = "designation.create"
	DesignationUpdate Key = "designation.update"
	DesignationDelete Key = "designation.delete"

	ShiftView   Key = "shift.view"
	ShiftCreate Key = "shift.create"
	ShiftUpdate Key = "shift.update"
	ShiftDelete Key = "shift.delete"

	// Attendance
	AttendanceMark     Key = "attendance.mark"
	AttendanceViewSelf Key = "attendance.view.self"
	AttendanceViewTeam Key = "attendance.view.team"
	AttendanceEdit     Key = "attendance.edit"
	AttendanceApprove  Key = "attendance.approve"
	AttendanceReject   Key = "attendance.reject"

	// Leave
	LeaveApply    Key = "leave.apply"
	LeaveViewSelf Key = "leave.view.self"
	LeaveViewTeam Key = "leave.view.team"
	LeaveApprove  Key = "leave.approve"
	LeaveReject   Key = "leave.reject"
	LeaveCancel   Key = "leave.cancel"

	// Admin / system
	SystemAuditView    Key = "system.audit.view"
	SystemConfigManage Key = "system.config.manage"

	// Direct user permission administration
	UserPermissionView   Key = "user_permission.view"
	UserPermissionGrant  Key = "user_permission.grant"
	UserPermissionRevoke Key = "user_permission.revoke"
)

var all = []Key{
	SessionViewSelf, SessionTerminateSelf, SessionTerminateAny,
	UserCreate, UserView, UserViewSelf, UserUpdate, UserDeactivate,
	RoleCreate, RoleView, RoleUpdate, RoleDelete, RoleAssign, RoleRevoke,
	PermissionView,
	OfficeView, OfficeCreate, OfficeUpdate, OfficeDelete,
	TeamView, TeamCreate, TeamUpdate, TeamDelete,
	DesignationView, DesignationCreate, DesignationUpdate, DesignationDelete,
	ShiftView, ShiftCreate, ShiftUpdate, ShiftDelete,
	AttendanceMark, AttendanceViewSelf, AttendanceViewTeam,
	AttendanceEdit, AttendanceApprove, AttendanceReject,
	LeaveApply, LeaveViewSelf, LeaveViewTeam, LeaveApprove, LeaveReject, LeaveCancel,
	SystemAuditView, SystemConfigManage,
	UserPermissionView, UserPermissionGrant, UserPermissionRevoke,
}

// Keys returns every declared permission key as a plain string slice.
func Keys() []string {
	keys := make([]string, 0, len(all))
	for _, k := range all {
		keys = append(keys, string(k))
	}
	return keys
}

// KeySet returns the declared keys as a set for diffing against the mirror.
func KeySet() map[string]bool {
	set := make(map[string]bool, len(all))
	for _, k := range all {
		set[string(k)] = true
	}
	return set
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// ValidKey reports whether key has the "<module>.<action>" dotted form.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Module returns the module prefix of a key: "leave.view.team" -> "leave".
func Module(key string) string {
	if i := strings.IndexByte(key, '.'); i > 0 {
		return key[:i]
	}
	return "system"
}

// Describe derives the default description stored alongside a freshly synced
// key, e.g. "user_permission.grant" -> "User Permission permission".
func Describe(key string) string {
	words := strings.Split(Module(key), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + " permission"
}
