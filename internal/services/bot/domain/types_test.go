package domain

import (
	"testing"

	perr "storecast/internal/platform/errors"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int64
		ok   bool
	}{
		{"plain", "/22", 22, true},
		{"surrounding whitespace", "  /7  ", 7, true},
		{"bot mention suffix", "/24@storecast_bot", 24, true},
		{"repeated slash", "//5", 5, true},
		{"no slash", "22", 0, false},
		{"word command", "/help", 0, false},
		{"zero store", "/0", 0, false},
		{"negative store", "/-3", 0, false},
		{"empty", "", 0, false},
		{"bare slash", "/", 0, false},
		{"trailing junk", "/12abc", 0, false},
		{"plain chatter", "hello there", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCommand(tc.text)
			if tc.ok {
				if err != nil {
					t.Fatalf("ParseCommand(%q) err = %v", tc.text, err)
				}
				if got != tc.want {
					t.Fatalf("ParseCommand(%q) = %d, want %d", tc.text, got, tc.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("ParseCommand(%q) = %d, want error", tc.text, got)
			}
			if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
				t.Fatalf("ParseCommand(%q) code = %v", tc.text, perr.CodeOf(err))
			}
		})
	}
}
