// Package store loads franchise records from a YAML dataset or a SQL database
// and hands them to the analytics engines as analytics.Input values.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/model"
)

// ErrFranchiseNotFound is returned when a franchise ID or slug matches no record.
var ErrFranchiseNotFound = errors.New("franchise not found")

// Source provides the records of every franchise.
type Source interface {
	// Franchises lists every franchise, active or not.
	Franchises(ctx context.Context) ([]model.Franchise, error)
	// Load returns the records of one franchise, addressed by ID or slug.
	Load(ctx context.Context, franchiseID string) (analytics.Input, error)
}

var (
	quotedName = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	pseudoName = regexp.MustCompile(`'name'\s*:\s*'([^']+)'`)
)

// ProjectName extracts a display name from a project value that may be a plain
// string, a JSON object or a single-quoted pseudo-JSON object.
func ProjectName(raw string) string {
	if m := quotedName.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := pseudoName.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// fallbackProjectName is used when a deal references a project without a name.
func fallbackProjectName(projectID int64) string {
	if projectID == 0 {
		return ""
	}
	return fmt.Sprintf("Project %d", projectID)
}

// ParseRoles decodes a JSON-encoded role list such as `["team_leader","royalty"]`.
// An empty string yields no roles.
func ParseRoles(raw string) ([]model.Role, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode managerial roles: %w", err)
	}
	return parseRoleTags(tags)
}

func parseRoleTags(tags []string) ([]model.Role, error) {
	roles := make([]model.Role, 0, len(tags))
	for _, tag := range tags {
		role, err := model.ParseRole(strings.TrimSpace(tag))
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// matches reports whether key addresses f by ID or slug.
func matches(f model.Franchise, key string) bool {
	return f.ID == key || (f.Slug != "" && f.Slug == key)
}
