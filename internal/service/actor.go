package service

import "strings"

// Roles recognised by the results API.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleStudent = "student"
)

// ActivityActor represents the authenticated user performing an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// Access is the visibility a role has over result cards.
type Access int

const (
	// AccessNone denies result cards.
	AccessNone Access = iota
	// AccessFull exposes class statistics and unpublished sheets.
	AccessFull
	// AccessPublished exposes published sheets with class figures withheld.
	AccessPublished
)

// String returns a metric-friendly label.
func (a Access) String() string {
	switch a {
	case AccessFull:
		return "full"
	case AccessPublished:
		return "published"
	default:
		return "none"
	}
}

// AccessForRole maps a role onto its card visibility.
func AccessForRole(role string) Access {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, RoleTeacher:
		return AccessFull
	case RoleParent, RoleStudent:
		return AccessPublished
	default:
		return AccessNone
	}
}
