package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// encodeList stores a string list as a JSON array.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

// decodeList reads a JSON array written by encodeList. Empty input is an empty list.
func decodeList(raw string) ([]string, error) {
	values := []string{}
	if strings.TrimSpace(raw) == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return values, nil
}

// nullTime converts an optional timestamp into a bind value, normalised to UTC.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// timePtr converts a scanned nullable timestamp back into the domain form.
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// reviewColumns are the review state columns shared by cards and rules, in scan order.
var reviewColumns = []string{
	"status",
	"view_count",
	"success_count",
	"error_count",
	"consecutive_successes",
	"last_shown_at",
}

// reviewValues returns the bind values for reviewColumns.
func reviewValues(s domain.ReviewState) []any {
	return []any{
		string(s.Status),
		s.ViewCount,
		s.SuccessCount,
		s.ErrorCount,
		s.ConsecutiveSuccesses,
		nullTime(s.LastShownDate),
	}
}

// reviewTargets returns scan destinations for reviewColumns. finish must be
// called after Scan to populate the status and timestamp.
func reviewTargets(s *domain.ReviewState) (targets []any, finish func()) {
	var status string
	var lastShown sql.NullTime
	targets = []any{
		&status,
		&s.ViewCount,
		&s.SuccessCount,
		&s.ErrorCount,
		&s.ConsecutiveSuccesses,
		&lastShown,
	}
	finish = func() {
		s.Status = domain.Status(status)
		s.LastShownDate = timePtr(lastShown)
	}
	return targets, finish
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(strings.TrimSpace(search)))
	return "%" + escaped + "%"
}

// concat joins column lists into a new slice.
func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// upsertSuffix returns an ON CONFLICT clause that overwrites every column but
// the id. PostgreSQL and SQLite share this syntax.
func upsertSuffix(columns []string) string {
	var b strings.Builder
	b.WriteString("ON CONFLICT (id) DO UPDATE SET ")
	first := true
	for _, col := range columns {
		if col == "id" {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s = excluded.%s", col, col)
	}
	return b.String()
}
