package models

import (
	"fmt"
	"strings"
)

// TaskStatus defines allowed lifecycle states for tasks.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Priority defines allowed task priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Category defines allowed task categories.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// Role defines what a user may do beyond their own tasks.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// SharePermission is the level of access granted when sharing a task.
type SharePermission string

const (
	ShareView SharePermission = "view"
	ShareEdit SharePermission = "edit"
)

const (
	DefaultStatus   = StatusPending
	DefaultPriority = PriorityMedium
	DefaultCategory = CategoryGeneral
	DefaultRole     = RoleMember

	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCommentLength     = 2000
	MaxDisplayNameLength = 100
	SkillLevelMin        = 1
	SkillLevelMax        = 5
)

var validStatuses = map[TaskStatus]struct{}{
	StatusPending:    {},
	StatusInProgress: {},
	StatusCompleted:  {},
}

var validPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// priorityRank orders priorities for sorting, higher is more urgent.
var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

var validCategories = map[Category]struct{}{
	CategoryGeneral:  {},
	CategoryWork:     {},
	CategoryPersonal: {},
	CategoryShopping: {},
	CategoryHealth:   {},
	CategoryOther:    {},
}

var validRoles = map[Role]struct{}{
	RoleMember: {},
	RoleAdmin:  {},
}

func IsValidStatus(status TaskStatus) bool {
	_, ok := validStatuses[status]
	return ok
}

func IsValidPriority(priority Priority) bool {
	_, ok := validPriorities[priority]
	return ok
}

func IsValidCategory(category Category) bool {
	_, ok := validCategories[category]
	return ok
}

func IsValidRole(role Role) bool {
	_, ok := validRoles[role]
	return ok
}

// PriorityRank returns a sortable weight for priority; unknown values rank 0.
func PriorityRank(priority Priority) int {
	return priorityRank[priority]
}

func ParseStatus(raw string) (TaskStatus, error) {
	value := TaskStatus(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

func ParsePriority(raw string) (Priority, error) {
	value := Priority(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("priority is required")
	}
	if !IsValidPriority(value) {
		return "", fmt.Errorf("invalid priority: %s", value)
	}
	return value, nil
}

func ParseCategory(raw string) (Category, error) {
	value := Category(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("category is required")
	}
	if !IsValidCategory(value) {
		return "", fmt.Errorf("invalid category: %s", value)
	}
	return value, nil
}

func ParseRole(raw string) (Role, error) {
	value := Role(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("role is required")
	}
	if !IsValidRole(value) {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return value, nil
}

func ParseSharePermission(raw string) (SharePermission, error) {
	value := SharePermission(normalizeEnum(raw))
	switch value {
	case "":
		return ShareView, nil
	case ShareView, ShareEdit:
		return value, nil
	default:
		return "", fmt.Errorf("invalid permission: %s", value)
	}
}

// normalizeEnum lowercases and accepts underscores for hyphenated values
// so "in_progress" and "In-Progress" both parse.
func normalizeEnum(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(value, "_", "-")
}
