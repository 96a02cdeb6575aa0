package models

import "time"

const (
	StatusSuccess = "SUCCESS"
)

// PaymentTransaction is a completed charge. Rows are never updated.
type PaymentTransaction struct {
	TransactionID string    `gorm:"type:varchar(128);primaryKey" json:"transactionId"`
	UserEmail     string    `gorm:"type:varchar(255);not null;index" json:"userEmail"`
	DealID        int64     `gorm:"not null;index" json:"dealId"`
	Amount        string    `gorm:"type:text;not null" json:"amount"`
	Status        string    `gorm:"type:varchar(32);not null" json:"status"`
	PaymentMethod string    `gorm:"type:varchar(64)" json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CheckoutRequest is the body of POST /payments/checkout.
type CheckoutRequest struct {
	Nonce     string `json:"nonce"`
	Amount    string `json:"amount"`
	UserEmail string `json:"userEmail"`
	DealID    int64  `json:"dealId" binding:"required,gt=0"`
}
