package models

// PaymentEvent is a payment-status event fed into the reconciliation engine.
// Exactly two producers exist: the gateway webhook and the manual/scholarship
// issuance path. The interface is sealed so the reconciliation rules stay in
// one place instead of ad hoc branching at the call sites.
type PaymentEvent interface {
	// TargetStatus is the terminal status the event reports.
	TargetStatus() PaymentStatus

	sealedPaymentEvent()
}

// GatewayPaymentEvent is a payment-status event delivered by the gateway
// webhook. The gateway may deliver it zero, one, or many times, in any order.
type GatewayPaymentEvent struct {
	// EventID is the gateway's delivery id, used for the audit log only.
	EventID string

	// PaymentIntentID matches the event to a ticket created before a
	// transaction completed.
	PaymentIntentID string

	Status   PaymentStatus
	ChargeID string

	// Metadata is echoed back from issuance. The reconciliation engine uses
	// it only to recognise the reference namespace of the purchase.
	Metadata map[string]string
}

func (e GatewayPaymentEvent) TargetStatus() PaymentStatus { return e.Status }
func (e GatewayPaymentEvent) sealedPaymentEvent()         {}

// ManualIssuance confirms a scholarship or manually issued ticket. The ticket
// row must already exist; issuance never creates rows through reconciliation.
type ManualIssuance struct {
	TransactionReference string

	// IssuedBy is the staff id of the admin performing the issuance.
	IssuedBy int
}

func (e ManualIssuance) TargetStatus() PaymentStatus { return PaymentCompleted }
func (e ManualIssuance) sealedPaymentEvent()         {}
