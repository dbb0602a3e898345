package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a report.  Every state may be changed by
// an admin; there is no terminal lock.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// Statuses lists the allowed status values in display order.
var Statuses = []Status{StatusPending, StatusResolved, StatusRejected}

// Categories is the closed set of report categories.
var Categories = []string{
	"roads", "water", "security", "sanitation",
	"electricity", "health", "education", "other",
}

// Institutions is the closed set of institutions a report may target.
var Institutions = []string{
	"district", "sector", "cell", "village",
	"mininfra", "mineduc", "minisante", "localGov", "other",
}

// ParseStatus returns the canonical status for s, matching case-insensitively.
func ParseStatus(s string) (Status, bool) {
	v := strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(v, string(st)) {
			return st, true
		}
	}
	return "", false
}

// ParseCategory returns the canonical category for s.
func ParseCategory(s string) (string, bool) { return lookup(Categories, s) }

// ParseInstitution returns the canonical institution for s ("localgov" -> "localGov").
func ParseInstitution(s string) (string, bool) { return lookup(Institutions, s) }

func lookup(set []string, s string) (string, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", false
	}
	for _, candidate := range set {
		if strings.EqualFold(v, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// StatusNames returns the allowed statuses as strings, for error messages.
func StatusNames() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

// Report represents a row of the `reports` table.
//
// RawDescription is written once on insert and never updated.
// StructuredDescription is produced by the enrichment service and is
// advisory only.
type Report struct {
	ID                    uint64
	UserID                *uint64 // nil for anonymous submissions
	Title                 *string
	Name                  string
	Phone                 string
	Location              string
	Institution           string
	Category              string
	RawDescription        string
	StructuredDescription *string
	AdminResponse         *string
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// OwnedBy reports whether the report belongs to the given user id.
func (r *Report) OwnedBy(userID uint64) bool {
	return r.UserID != nil && *r.UserID == userID
}

// String implements fmt.Stringer for log fields.
func (s Status) String() string { return string(s) }

// ReportStats counts reports per status.
type ReportStats struct {
	Total    int64
	ByStatus map[Status]int64
}
