package models

import "slices"

// Status is the purchase lifecycle state.
type Status string

const (
	StatusPendingKYC       Status = "pending_kyc"
	StatusPendingDocuments Status = "pending_documents"
	StatusPendingPayment   Status = "pending_payment"
	StatusProcessing       Status = "processing"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// transitions lists every allowed forward move. Nothing moves backward and
// the terminal states have no exits.
var transitions = map[Status][]Status{
	StatusPendingKYC:       {StatusPendingPayment, StatusCancelled},
	StatusPendingDocuments: {StatusPendingPayment, StatusCancelled},
	StatusPendingPayment:   {StatusCompleted, StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusCompleted, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingKYC, StatusPendingDocuments, StatusPendingPayment,
		StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// IsActive reports whether the purchase still counts toward the one active
// purchase per buyer and property.
func (s Status) IsActive() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// IsDeletable reports whether the owner may still withdraw.
func (s Status) IsDeletable() bool {
	return slices.Contains(DeletableStatuses, s)
}

// DeletableStatuses are the pre-commitment states.
var DeletableStatuses = []Status{StatusPendingKYC, StatusPendingDocuments, StatusPendingPayment}

// AwaitingKYC are the states AdvanceAfterKYC moves to pending_payment.
var AwaitingKYC = []Status{StatusPendingKYC, StatusPendingDocuments}

// Label is the buyer-facing French label.
func (s Status) Label() string {
	switch s {
	case StatusPendingKYC:
		return "En attente de vérification KYC"
	case StatusPendingDocuments:
		return "Documents à fournir"
	case StatusPendingPayment:
		return "En attente de paiement"
	case StatusProcessing:
		return "En cours de traitement"
	case StatusCompleted:
		return "Achat finalisé"
	case StatusCancelled:
		return "Annulé"
	}
	return string(s)
}
