package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TaskQuery selects tasks for GET /v1/tasks.
type TaskQuery struct {
	Statuses   []string
	Priority   string
	Category   string
	Tag        string
	OwnerID    string
	AssigneeID string
	Search     string
	Overdue    *bool
	Watching   bool
	// Mine restricts admins to tasks they have standing on.
	Mine     bool
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// Values encodes q as URL query parameters.
func (q TaskQuery) Values() url.Values {
	v := url.Values{}
	if len(q.Statuses) > 0 {
		v.Set("status", strings.Join(q.Statuses, ","))
	}
	setIf(v, "priority", q.Priority)
	setIf(v, "category", q.Category)
	setIf(v, "tag", q.Tag)
	setIf(v, "owner_id", q.OwnerID)
	setIf(v, "assignee_id", q.AssigneeID)
	setIf(v, "search", q.Search)
	if q.Overdue != nil {
		v.Set("overdue", strconv.FormatBool(*q.Overdue))
	}
	if q.Watching {
		v.Set("watching", "true")
	}
	if q.Mine {
		v.Set("mine", "true")
	}
	setIf(v, "sort", q.SortBy)
	if q.SortDesc {
		v.Set("order", "desc")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// ParseTaskQuery decodes URL query parameters.
func ParseTaskQuery(v url.Values) (TaskQuery, error) {
	q := TaskQuery{
		Priority:   strings.TrimSpace(v.Get("priority")),
		Category:   strings.TrimSpace(v.Get("category")),
		Tag:        strings.TrimSpace(v.Get("tag")),
		OwnerID:    strings.TrimSpace(v.Get("owner_id")),
		AssigneeID: strings.TrimSpace(v.Get("assignee_id")),
		Search:     strings.TrimSpace(v.Get("search")),
		SortBy:     strings.TrimSpace(v.Get("sort")),
	}
	q.Statuses = splitCSV(v.Get("status"))

	var err error
	if raw := v.Get("overdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid overdue")
		}
		q.Overdue = &overdue
	}
	if q.Watching, err = parseBool(v, "watching"); err != nil {
		return q, err
	}
	if q.Mine, err = parseBool(v, "mine"); err != nil {
		return q, err
	}
	switch order := strings.ToLower(strings.TrimSpace(v.Get("order"))); order {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return q, fmt.Errorf("invalid order %q", order)
	}
	if q.Limit, err = parseNonNegative(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = parseNonNegative(v, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

// UserQuery selects users for GET /v1/users.
type UserQuery struct {
	Role   string
	Active *bool
	Team   string
	Skill  string
	Search string
	Limit  int
	Offset int
}

func (q UserQuery) Values() url.Values {
	v := url.Values{}
	setIf(v, "role", q.Role)
	if q.Active != nil {
		v.Set("active", strconv.FormatBool(*q.Active))
	}
	setIf(v, "team", q.Team)
	setIf(v, "skill", q.Skill)
	setIf(v, "search", q.Search)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func ParseUserQuery(v url.Values) (UserQuery, error) {
	q := UserQuery{
		Role:   strings.TrimSpace(v.Get("role")),
		Team:   strings.TrimSpace(v.Get("team")),
		Skill:  strings.TrimSpace(v.Get("skill")),
		Search: strings.TrimSpace(v.Get("search")),
	}
	if raw := v.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid active")
		}
		q.Active = &active
	}
	var err error
	if q.Limit, err = parseNonNegative(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = parseNonNegative(v, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(v url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return value, nil
}

func parseNonNegative(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return value, nil
}
