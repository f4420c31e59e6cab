package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidWeekday = errors.New("invalid weekday")
)

// WeekdaySlot is the key of the weekly template, sunday..saturday.
type WeekdaySlot string

const (
	Sunday    WeekdaySlot = "sunday"
	Monday    WeekdaySlot = "monday"
	Tuesday   WeekdaySlot = "tuesday"
	Wednesday WeekdaySlot = "wednesday"
	Thursday  WeekdaySlot = "thursday"
	Friday    WeekdaySlot = "friday"
	Saturday  WeekdaySlot = "saturday"
)

// Weekdays lists all slots in calendar index order (sunday=0 .. saturday=6).
var Weekdays = [7]WeekdaySlot{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdaySlotOf(wd time.Weekday) WeekdaySlot {
	return Weekdays[int(wd)%7]
}

func ParseWeekdaySlot(s string) (WeekdaySlot, error) {
	slot := WeekdaySlot(strings.ToLower(strings.TrimSpace(s)))
	if !slot.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return slot, nil
}

func (s WeekdaySlot) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the calendar index of the slot, or -1 for unknown values.
func (s WeekdaySlot) Index() int {
	for i, wd := range Weekdays {
		if wd == s {
			return i
		}
	}
	return -1
}

func (s WeekdaySlot) String() string {
	return string(s)
}

// Date is a civil calendar date, as seen on the user's wall clock.
// It carries no time zone and is safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the same way time.Date does (e.g. Jan 32 -> Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the wall clock date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Weekday() WeekdaySlot {
	return WeekdaySlotOf(d.Time().Weekday())
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysUntil returns the number of days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekStart returns the Monday of the ISO week containing d.
func WeekStart(d Date) Date {
	// time.Weekday: Sunday=0, shift so that Monday=0 .. Sunday=6
	offset := (int(d.Time().Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return NewDate(year, month+1, 0).Day
}
