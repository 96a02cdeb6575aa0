package models

import "time"

// Cashback is one credited amount. Records are append-only.
type Cashback struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserEmail      string    `gorm:"type:varchar(255);not null;index" json:"userEmail"`
	DealID         int64     `gorm:"not null" json:"dealId"`
	CashbackAmount float64   `gorm:"type:double precision;not null" json:"cashbackAmount"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`
}

// CashbackSummary is the running total per user.
type CashbackSummary struct {
	UserEmail     string    `gorm:"type:varchar(255);primaryKey" json:"userEmail"`
	TotalCashback float64   `gorm:"type:double precision;not null" json:"totalCashback"`
	UpdatedAt     time.Time `json:"-"`
}

// ProcessedEvent remembers consumed event ids so redelivered events are
// applied once.
type ProcessedEvent struct {
	EventID     string    `gorm:"type:varchar(255);primaryKey"`
	ProcessedAt time.Time `gorm:"not null"`
}

// CashbackView is the listing shape of GET /cashback/user/:email.
type CashbackView struct {
	DealID         int64     `json:"dealId"`
	CashbackAmount float64   `json:"cashbackAmount"`
	Timestamp      time.Time `json:"timestamp"`
}

type AddCashbackRequest struct {
	UserEmail      string  `json:"userEmail" binding:"required,email"`
	DealID         int64   `json:"dealId" binding:"required,gt=0"`
	CashbackAmount float64 `json:"cashbackAmount" binding:"gte=0"`
}
