package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type doctorForm struct {
	Name  string   `json:"name" binding:"required,min=3,max=100"`
	Phone string   `json:"phone" binding:"required,digits10"`
	Slots []string `json:"available_times" binding:"omitempty,unique,dive,timeslot"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&doctorForm{Name: "Dr. Lee", Phone: "5550001111", Slots: []string{"09:00", "14:30"}}))

	cases := map[string]doctorForm{
		"name must be at least 3 characters":          {Name: "Li", Phone: "5550001111"},
		"phone must be exactly 10 digits":             {Name: "Dr. Lee", Phone: "555-000-11"},
		"available_times[1] must be a time of day":    {Name: "Dr. Lee", Phone: "5550001111", Slots: []string{"09:00", "9am"}},
		"available_times must not contain duplicates": {Name: "Dr. Lee", Phone: "5550001111", Slots: []string{"09:00", "09:00"}},
	}
	for want, form := range cases {
		form := form
		err := v.Validate(&form)
		if assert.Error(t, err, want) {
			assert.Contains(t, err.Error(), want)
		}
	}
}

func TestTimeSlotRejectsOutOfRange(t *testing.T) {
	v := New()
	err := v.Validate(&doctorForm{Name: "Dr. Lee", Phone: "5550001111", Slots: []string{"25:00"}})
	assert.Error(t, err)
}
