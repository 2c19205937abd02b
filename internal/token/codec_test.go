package token

import (
	"errors"
	"testing"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	passes := []model.Pass{
		{
			ID:        "pass-1",
			VenueID:   "venue-a",
			WindowEnd: time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC),
		},
		{
			ID:        "8f2c1d9a44",
			VenueID:   "venue-casablanca-01",
			WindowEnd: time.Date(2031, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			// IDs may contain characters that need URL-safe encoding
			ID:        "p/x+y=z",
			VenueID:   "v?&#",
			WindowEnd: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, p := range passes {
		tok := Encode(p)
		got, err := Decode(tok)
		if err != nil {
			t.Fatalf("Decode(%q): %v", tok, err)
		}
		if got.PassID != p.ID {
			t.Errorf("pass id: got %q, want %q", got.PassID, p.ID)
		}
		if got.VenueID != p.VenueID {
			t.Errorf("venue id: got %q, want %q", got.VenueID, p.VenueID)
		}
		if !got.WindowEnd.Equal(p.WindowEnd) {
			t.Errorf("window end: got %v, want %v", got.WindowEnd, p.WindowEnd)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	p := model.Pass{ID: "pass-1", VenueID: "venue-a", WindowEnd: time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)}
	if Encode(p) != Encode(p) {
		t.Fatal("expected identical tokens for identical passes")
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not a token at all",
		"wrong prefix":   "DP2.eyJpZCI6IngifQ",
		"bad base64":     "DP1.!!!not-base64!!!",
		"bad json":       "DP1.bm90LWpzb24",
		"missing fields": "DP1.e30",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(input); !errors.Is(err, ErrMalformedToken) {
				t.Fatalf("Decode(%q): got %v, want ErrMalformedToken", input, err)
			}
		})
	}
}
