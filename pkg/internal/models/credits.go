package models

import "gorm.io/datatypes"

type CreditsAccount struct {
	BaseModel

	AccountID uint    `json:"account_id" gorm:"uniqueIndex"`
	Balance   float64 `json:"balance"`

	Account Account `json:"account"`
}

const (
	TransactionKindCreditPurchase = "credit_purchase"
	TransactionKindPromoPurchase  = "promo_purchase"
	TransactionKindRefund         = "refund"
)

const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is an append-only audit row, one per balance movement. The
// reference id is what support staff quote back to users, the numeric primary
// key never leaves the system.
type Transaction struct {
	BaseModel

	AccountID   uint              `json:"account_id"`
	ReferenceID string            `json:"reference_id" gorm:"uniqueIndex"`
	Kind        string            `json:"kind"`
	Amount      float64           `json:"amount"`
	Status      string            `json:"status"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}
