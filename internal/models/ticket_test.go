package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTicketCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     TicketCreateRequest
		wantErr bool
	}{
		{
			name: "valid students ticket",
			req: TicketCreateRequest{
				TicketType: TicketStudents,
				Name:       "Fatou Ceesay",
				Email:      "fatou@example.com",
				Phone:      "+2207000000",
			},
			wantErr: false,
		},
		{
			name: "valid without phone",
			req: TicketCreateRequest{
				TicketType: TicketIndividual,
				Name:       "Lamin Jobe",
				Email:      "lamin@example.com",
			},
			wantErr: false,
		},
		{
			name: "unknown ticket type",
			req: TicketCreateRequest{
				TicketType: "vip",
				Name:       "Fatou Ceesay",
				Email:      "fatou@example.com",
			},
			wantErr: true,
		},
		{
			name: "missing name",
			req: TicketCreateRequest{
				TicketType: TicketStudents,
				Name:       "   ",
				Email:      "fatou@example.com",
			},
			wantErr: true,
		},
		{
			name: "invalid email",
			req: TicketCreateRequest{
				TicketType: TicketStudents,
				Name:       "Fatou Ceesay",
				Email:      "not-an-email",
			},
			wantErr: true,
		},
		{
			name: "phone too long",
			req: TicketCreateRequest{
				TicketType: TicketStudents,
				Name:       "Fatou Ceesay",
				Email:      "fatou@example.com",
				Phone:      "0000000000000000000000000000000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTicketValidate(t *testing.T) {
	tests := []struct {
		name    string
		ticket  Ticket
		wantErr bool
	}{
		{
			name: "valid pending ticket",
			ticket: Ticket{
				TransactionReference: "TKT-ABC",
				TicketType:           TicketCorporate,
				PaymentStatus:        PaymentPending,
			},
			wantErr: false,
		},
		{
			name: "missing reference",
			ticket: Ticket{
				TicketType:    TicketCorporate,
				PaymentStatus: PaymentPending,
			},
			wantErr: true,
		},
		{
			name: "invalid payment status",
			ticket: Ticket{
				TransactionReference: "TKT-ABC",
				TicketType:           TicketStudents,
				PaymentStatus:        "refunded",
			},
			wantErr: true,
		},
		{
			name: "checked in without completed payment",
			ticket: Ticket{
				TransactionReference: "TKT-ABC",
				TicketType:           TicketStudents,
				PaymentStatus:        PaymentPending,
				IsCheckedIn:          true,
			},
			wantErr: true,
		},
		{
			name: "checked in with completed payment",
			ticket: Ticket{
				TransactionReference: "TKT-ABC",
				TicketType:           TicketStudents,
				PaymentStatus:        PaymentCompleted,
				IsCheckedIn:          true,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ticket.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	if PaymentPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []PaymentStatus{PaymentCompleted, PaymentFailed, PaymentCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestPriceFor(t *testing.T) {
	price, err := PriceFor(TicketIndividual)
	if err != nil {
		t.Fatalf("PriceFor() error = %v", err)
	}
	if !price.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("PriceFor(individual) = %s, want 1500", price)
	}

	if _, err := PriceFor("vip"); err == nil {
		t.Error("PriceFor(vip) expected error")
	}
}

func TestCanCheckIn(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{"paid and unredeemed", Ticket{PaymentStatus: PaymentCompleted}, true},
		{"paid and redeemed", Ticket{PaymentStatus: PaymentCompleted, IsCheckedIn: true}, false},
		{"pending", Ticket{PaymentStatus: PaymentPending}, false},
		{"failed", Ticket{PaymentStatus: PaymentFailed}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.CanCheckIn(); got != tt.want {
				t.Errorf("CanCheckIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewHidesInternalFields(t *testing.T) {
	ticket := Ticket{
		ID:                   7,
		TransactionReference: "TKT-ABC",
		PaymentIntentID:      "pi_secret",
		TicketType:           TicketStudents,
		GatewayChargeID:      "ch_secret",
		PaymentStatus:        PaymentCompleted,
	}

	view := ticket.View()
	if view.TransactionReference != "TKT-ABC" {
		t.Errorf("View().TransactionReference = %s", view.TransactionReference)
	}
	if view.PaymentStatus != PaymentCompleted {
		t.Errorf("View().PaymentStatus = %s", view.PaymentStatus)
	}
}
