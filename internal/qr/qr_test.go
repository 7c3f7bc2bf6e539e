package qr

import (
	"errors"
	"strings"
	"testing"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Payload{
		TicketID:   "TKT-9F8E7D6C",
		Type:       "individual",
		Name:       "Fatou Ceesay",
		Email:      "fatou@example.com",
		Conference: "pycongm-2026",
	}

	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty string", ""},
		{"missing prefix", "eyJ0aWQiOiJUS1QtMSJ9"},
		{"wrong prefix", "PYC2.eyJ0aWQiOiJUS1QtMSJ9"},
		{"invalid base64", prefix + "!!not-base64!!"},
		{"valid base64 invalid json", prefix + "bm90LWpzb24"},
		{"json without ticket id", prefix + "e30"},
		{"arbitrary scan", "https://example.com/some/url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, models.ErrInvalidQRFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidQRFormat", tt.data, err)
			}
		})
	}
}

func TestFromTicket(t *testing.T) {
	ticket := &models.Ticket{
		TransactionReference: "TKT-1",
		TicketType:           models.TicketStudents,
		Name:                 "Lamin Jobe",
		Email:                "lamin@example.com",
	}

	p := FromTicket(ticket, "pycongm-2026")
	if p.TicketID != "TKT-1" || p.Type != "students" || p.Conference != "pycongm-2026" {
		t.Errorf("FromTicket() = %+v", p)
	}
}

func TestEncodedFormIsURLSafe(t *testing.T) {
	encoded := Encode(Payload{
		TicketID: "TKT-1",
		Name:     "name with spaces & symbols / ?",
		Email:    "a+b@example.com",
	})

	if !strings.HasPrefix(encoded, prefix) {
		t.Fatalf("encoded form missing prefix: %s", encoded)
	}
	if strings.ContainsAny(strings.TrimPrefix(encoded, prefix), "+/= ") {
		t.Errorf("encoded form not URL safe: %s", encoded)
	}
}
