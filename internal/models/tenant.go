package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWorkStartTime = "08:00"
	DefaultMaxWorkHours  = 12
	DefaultTimezone      = "Europe/Paris"
)

// Vocabulary holds wording overrides keyed by vocabulary key (action_in, site, ...).
type Vocabulary map[string]string

// FeatureConfig holds feature toggles keyed by feature name (gps, photos, ...).
type FeatureConfig map[string]bool

type Tenant struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Industry      string        `json:"industry" db:"industry"`
	Country       string        `json:"country" db:"country"`
	Plan          string        `json:"plan" db:"plan"`
	Timezone      string        `json:"timezone" db:"timezone"`
	Config        FeatureConfig `json:"config" db:"config"`
	Vocabulary    Vocabulary    `json:"vocabulary" db:"vocabulary"`
	WorkStartTime string        `json:"work_start_time" db:"work_start_time"`
	MaxWorkHours  int           `json:"max_work_hours" db:"max_work_hours"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

var countryTimezones = map[string]string{
	"FR": "Europe/Paris",
	"BE": "Europe/Brussels",
	"CH": "Europe/Zurich",
	"LU": "Europe/Luxembourg",
	"MA": "Africa/Casablanca",
	"TN": "Africa/Tunis",
	"SN": "Africa/Dakar",
	"CI": "Africa/Abidjan",
	"CA": "America/Toronto",
}

// Location returns the tenant's local time zone. An explicit timezone wins over the
// country default; unknown zones fall back to DefaultTimezone.
func (t *Tenant) Location() *time.Location {
	name := t.Timezone
	if name == "" {
		name = countryTimezones[strings.ToUpper(t.Country)]
	}
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

// WorkStart returns the configured work start as hour and minute, defaulting to 08:00
// when the stored value is empty or malformed.
func (t *Tenant) WorkStart() (int, int) {
	if h, m, ok := parseClock(t.WorkStartTime); ok {
		return h, m
	}
	h, m, _ := parseClock(DefaultWorkStartTime)
	return h, m
}

// MaxShift is the ghost-session threshold.
func (t *Tenant) MaxShift() time.Duration {
	hours := t.MaxWorkHours
	if hours <= 0 {
		hours = DefaultMaxWorkHours
	}
	return time.Duration(hours) * time.Hour
}

// DayBounds returns the [start, end) of the tenant-local calendar day containing at.
func (t *Tenant) DayBounds(at time.Time) (time.Time, time.Time) {
	local := at.In(t.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

// LocalDay formats the tenant-local date of at as YYYY-MM-DD.
func (t *Tenant) LocalDay(at time.Time) string {
	return at.In(t.Location()).Format("2006-01-02")
}

func parseClock(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
