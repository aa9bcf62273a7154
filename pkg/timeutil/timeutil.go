package timeutil

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Errors returned to callers feeding user input into schedule creation.
var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrUnknownZone       = errors.New("unknown time zone")
)

// timePattern requires two-digit fields: "HH:MM" or "HH:MM:SS".
var timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// TimeOfDay is a wall-clock time with no date and no zone attached.
// Stored values are always in the system's reference zone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// New validates the triple form of a time-of-day input.
func New(hour, minute, second int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute, Second: second}
	if err := t.validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

// Parse accepts "HH:MM" or "HH:MM:SS"; seconds default to 0.
func Parse(s string) (TimeOfDay, error) {
	if !timePattern.MatchString(s) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	parts := strings.Split(s, ":")
	t := TimeOfDay{}
	t.Hour, _ = strconv.Atoi(parts[0])
	t.Minute, _ = strconv.Atoi(parts[1])
	if len(parts) == 3 {
		t.Second, _ = strconv.Atoi(parts[2])
	}
	if err := t.validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

func (t TimeOfDay) validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("%w: %02d:%02d:%02d out of range", ErrInvalidTimeFormat, t.Hour, t.Minute, t.Second)
	}
	return nil
}

// String renders the stored "HH:MM:SS" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Value implements driver.Valuer so TimeOfDay maps to a TIME column.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner. Postgres TIME columns may come back as
// strings or as time.Time depending on the driver.
func (t *TimeOfDay) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", value)
	}
}

// Normalizer converts wall-clock times between arbitrary named zones and
// the single reference zone all ScheduleTime rows are stored in.
//
// The conversion binds the time-of-day to today's date to compute the
// zone offset. Around a daylight-saving transition the offset applied to
// a reminder firing months later can be off by an hour; the reference
// deployment uses Asia/Kathmandu, which has no transitions.
type Normalizer struct {
	reference *time.Location
}

// NewNormalizer resolves the reference zone once at startup.
func NewNormalizer(referenceZone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(referenceZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, referenceZone)
	}
	return &Normalizer{reference: loc}, nil
}

// Reference returns the reference zone location.
func (n *Normalizer) Reference() *time.Location {
	return n.reference
}

// ToCanonical converts a time-of-day in sourceZone to the reference zone.
// An empty sourceZone means the input is already reference-local.
func (n *Normalizer) ToCanonical(t TimeOfDay, sourceZone string) (TimeOfDay, error) {
	if err := t.validate(); err != nil {
		return TimeOfDay{}, err
	}
	return n.convert(t, sourceZone, true)
}

// ToCanonicalString parses then converts in one step; this is the form
// schedule creation uses for raw "HH:MM" payload values.
func (n *Normalizer) ToCanonicalString(s, sourceZone string) (TimeOfDay, error) {
	t, err := Parse(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return n.convert(t, sourceZone, true)
}

// ToDisplay converts a stored reference-zone time to targetZone.
// An empty targetZone returns the stored value unchanged.
func (n *Normalizer) ToDisplay(t TimeOfDay, targetZone string) (TimeOfDay, error) {
	return n.convert(t, targetZone, false)
}

func (n *Normalizer) convert(t TimeOfDay, zone string, toReference bool) (TimeOfDay, error) {
	if zone == "" || zone == n.reference.String() {
		return t, nil
	}
	other, err := time.LoadLocation(zone)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	from, to := other, n.reference
	if !toReference {
		from, to = n.reference, other
	}
	today := time.Now().In(from)
	bound := time.Date(today.Year(), today.Month(), today.Day(), t.Hour, t.Minute, t.Second, 0, from)
	out := bound.In(to)
	return TimeOfDay{Hour: out.Hour(), Minute: out.Minute(), Second: out.Second()}, nil
}
