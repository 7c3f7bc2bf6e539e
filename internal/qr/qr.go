// Package qr encodes and decodes the compact payload embedded in a ticket's
// QR code. The payload is a convenience lookup key, not a trust boundary:
// the check-in engine re-validates everything against the ticket store, and
// authorization comes from staff credentials, never from possessing a QR
// image.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
)

// prefix versions the payload format so old badges can be rejected cleanly
// if the encoding ever changes.
const prefix = "PYC1."

// Payload is the subset of ticket fields embedded in the QR code. TicketID
// is the transaction reference.
type Payload struct {
	TicketID   string `json:"tid"`
	Type       string `json:"typ"`
	Name       string `json:"nam"`
	Email      string `json:"eml"`
	Conference string `json:"cnf"`
}

// Encode serializes a payload into the string rendered as a QR code.
func Encode(p Payload) string {
	// Marshal of a flat string struct cannot fail
	raw, _ := json.Marshal(p)
	return prefix + base64.RawURLEncoding.EncodeToString(raw)
}

// FromTicket builds the payload for a ticket.
func FromTicket(t *models.Ticket, conference string) Payload {
	return Payload{
		TicketID:   t.TransactionReference,
		Type:       string(t.TicketType),
		Name:       t.Name,
		Email:      t.Email,
		Conference: conference,
	}
}

// Decode parses a scanned QR string back into a payload. Any malformed input
// yields models.ErrInvalidQRFormat; the caller does not need to distinguish
// the failure modes.
func Decode(data string) (Payload, error) {
	var p Payload

	if !strings.HasPrefix(data, prefix) {
		return p, models.ErrInvalidQRFormat
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(data, prefix))
	if err != nil {
		return p, fmt.Errorf("%w: %v", models.ErrInvalidQRFormat, err)
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", models.ErrInvalidQRFormat, err)
	}

	if p.TicketID == "" {
		return Payload{}, models.ErrInvalidQRFormat
	}

	return p, nil
}
