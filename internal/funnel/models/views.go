package models

import (
	purchase "teranga/internal/purchase/models"
	id "teranga/pkg/domain"
)

// KYCState is returned when a buyer opens the identity verification step.
type KYCState struct {
	Resolution
	// PurchaseID is the purchase bound to this verification, if any.
	PurchaseID *id.PurchaseID `json:"purchase_id,omitempty"`
}

// KYCOutcome tells the buyer where to go once documents are submitted.
type KYCOutcome struct {
	RedirectTo string         `json:"redirect_to"`
	PurchaseID *id.PurchaseID `json:"purchase_id,omitempty"`
}

// ProfileView backs the buyer's profile page.
type ProfileView struct {
	Profile         *Profile           `json:"profile"`
	KYCStatus       KYCStatus          `json:"kyc_status"`
	CountryName     string             `json:"country_name,omitempty"`
	Completion      int                `json:"completion"`
	PendingPurchase *purchase.Purchase `json:"pending_purchase,omitempty"`
}
