package models

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CollaborationStats counts a user's collaborative actions.
type CollaborationStats struct {
	TasksCreated   int `json:"tasks_created"`
	TasksCompleted int `json:"tasks_completed"`
	CommentsPosted int `json:"comments_posted"`
	TasksShared    int `json:"tasks_shared"`
}

// Skill is a named competency with a 1-5 level.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// User is an account that owns, receives, and comments on tasks.
type User struct {
	ID                 string             `json:"id"`
	Username           string             `json:"username"`
	Email              string             `json:"email"`
	DisplayName        string             `json:"display_name,omitempty"`
	Role               Role               `json:"role"`
	IsActive           bool               `json:"is_active"`
	PasswordHash       string             `json:"password_hash,omitempty"`
	CollaborationStats CollaborationStats `json:"collaboration_stats"`
	Teams              []string           `json:"teams,omitempty"`
	Skills             []Skill            `json:"skills,omitempty"`
	LastLoginAt        *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Version            int                `json:"version"`
}

// NormalizeEmail returns the canonical form used for uniqueness checks.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks field constraints. Username normalization is left to callers.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if !IsValidEmail(u.Email) {
		return fmt.Errorf("invalid email")
	}
	if len(u.DisplayName) > MaxDisplayNameLength {
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	if !IsValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	for _, skill := range u.Skills {
		if err := skill.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("skill name is required")
	}
	if s.Level < SkillLevelMin || s.Level > SkillLevelMax {
		return fmt.Errorf("skill level must be between %d and %d", SkillLevelMin, SkillLevelMax)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) InTeam(team string) bool {
	return slices.Contains(u.Teams, team)
}

// HasSkill reports whether the user lists name at level or higher.
func (u *User) HasSkill(name string, level int) bool {
	for _, skill := range u.Skills {
		if strings.EqualFold(skill.Name, name) && skill.Level >= level {
			return true
		}
	}
	return false
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}

// Sanitized returns a copy without credentials.
func (u *User) Sanitized() *User {
	out := u.Clone()
	if out != nil {
		out.PasswordHash = ""
	}
	return out
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Teams = slices.Clone(u.Teams)
	out.Skills = slices.Clone(u.Skills)
	out.LastLoginAt = cloneTime(u.LastLoginAt)
	return &out
}

// NormalizeTeams trims and deduplicates team ids, keeping first-seen order.
func NormalizeTeams(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
