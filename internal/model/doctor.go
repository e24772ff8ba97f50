package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

type Doctor struct {
	Base
	Email          string         `db:"email" json:"email"`
	Name           string         `db:"name" json:"name"`
	Specialty      string         `db:"specialty" json:"specialty"`
	Phone          string         `db:"phone" json:"phone"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	AvailableTimes pq.StringArray `db:"available_times" json:"available_times"`
}

// HasSlotIn reports whether any template slot falls in the given half of the day.
// Slots that do not parse are ignored.
func (d *Doctor) HasSlotIn(half DayHalf) bool {
	for _, slot := range d.AvailableTimes {
		t, err := time.Parse(TimeOfDayLayout, slot)
		if err != nil {
			continue
		}
		if HalfOf(t.Hour()) == half {
			return true
		}
	}
	return false
}

// DayHalf is AM or PM.
type DayHalf string

const (
	AM DayHalf = "AM"
	PM DayHalf = "PM"
)

func ParseDayHalf(s string) (DayHalf, bool) {
	switch h := DayHalf(strings.ToUpper(strings.TrimSpace(s))); h {
	case AM, PM:
		return h, true
	}
	return "", false
}

func HalfOf(hour int) DayHalf {
	if hour < 12 {
		return AM
	}
	return PM
}

type CreateDoctorRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	Name           string   `json:"name" binding:"required,min=3,max=100"`
	Specialty      string   `json:"specialty" binding:"required,min=3,max=50"`
	Phone          string   `json:"phone" binding:"required,digits10"`
	Password       string   `json:"password" binding:"required,min=6"`
	AvailableTimes []string `json:"available_times" binding:"omitempty,unique,dive,timeslot"`
}

type UpdateDoctorRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	Name           string   `json:"name" binding:"required,min=3,max=100"`
	Specialty      string   `json:"specialty" binding:"required,min=3,max=50"`
	Phone          string   `json:"phone" binding:"required,digits10"`
	Password       string   `json:"password" binding:"omitempty,min=6"`
	AvailableTimes []string `json:"available_times" binding:"omitempty,unique,dive,timeslot"`
}
