// Package token implements the pass token codec.  A token is the string
// carried inside the QR code: a version prefix followed by a base64url
// JSON payload embedding the pass ID, venue ID and window end.  That is
// enough for a gate to run an offline plausibility check before any
// store lookup.  The codec is a pure, lossless transform; it does no
// I/O and existence of the pass is checked later against the store.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

// prefix identifies the token format version.  Tokens carrying any
// other prefix are rejected as malformed rather than guessed at.
const prefix = "DP1."

// ErrMalformedToken is returned by Decode when the input is not a
// parseable pass token.  A well-formed token referencing an unknown
// pass does NOT produce this error; that case surfaces later as a
// not-found from the store.
var ErrMalformedToken = errors.New("malformed pass token")

// Fields are the claims embedded in a pass token.
type Fields struct {
	PassID    string    // unique pass identifier
	VenueID   string    // venue the pass admits to
	WindowEnd time.Time // last usable instant, UTC second precision
}

// payload is the wire shape of the token body.  WindowEnd travels as
// Unix seconds so the round trip is exact regardless of locale.
type payload struct {
	ID        string `json:"id"`
	VenueID   string `json:"v"`
	WindowEnd int64  `json:"we"`
}

// Encode serializes the token-relevant fields of a pass into its QR
// string.  Encoding is deterministic: the same pass always yields the
// same token.
func Encode(p model.Pass) string {
	body, _ := json.Marshal(payload{
		ID:        p.ID,
		VenueID:   p.VenueID,
		WindowEnd: p.WindowEnd.Unix(),
	})
	return prefix + base64.RawURLEncoding.EncodeToString(body)
}

// Decode parses a pass token back into its embedded fields.  It fails
// with ErrMalformedToken when the prefix, base64 body or JSON payload
// is invalid, or when required fields are missing.
func Decode(s string) (Fields, error) {
	if !strings.HasPrefix(s, prefix) {
		return Fields{}, fmt.Errorf("%w: bad prefix", ErrMalformedToken)
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(s, prefix))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var body payload
	if err := json.Unmarshal(raw, &body); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if body.ID == "" || body.VenueID == "" || body.WindowEnd == 0 {
		return Fields{}, fmt.Errorf("%w: missing fields", ErrMalformedToken)
	}
	return Fields{
		PassID:    body.ID,
		VenueID:   body.VenueID,
		WindowEnd: time.Unix(body.WindowEnd, 0).UTC(),
	}, nil
}
