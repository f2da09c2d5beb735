package helpers

import (
	"testing"
	"time"

	"enquiry-app/models"

	"github.com/stretchr/testify/assert"
)

func TestActionName(t *testing.T) {
	at := time.Date(2026, time.October, 2, 15, 4, 5, 0, time.UTC)
	actor := models.Actor{FirstName: "Jane", LastName: "Doe"}

	assert.Equal(t, "Enquiry item added by Jane Doe at October 2nd 2026, 3:04:05 pm",
		ActionName("Enquiry item added", actor, at))
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 23: "rd", 31: "st"}
	for day, want := range cases {
		assert.Equal(t, want, ordinal(day), day)
	}
}
