package models

import "time"

// Deal is a discounted offer that payments are made against.
type Deal struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Discount    float64   `gorm:"not null;default:0" json:"discount"`
	Category    string    `gorm:"type:varchar(100);index" json:"category"`
	ExpiryDate  time.Time `gorm:"index" json:"expiryDate"`
	Active      bool      `gorm:"not null;index" json:"active"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// DealRequest is the payload for creating or replacing a deal.
type DealRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount" binding:"gte=0,lte=100"`
	Category    string    `json:"category" binding:"required,max=100"`
	ExpiryDate  time.Time `json:"expiryDate" binding:"required"`
	Active      *bool     `json:"active"`
	Price       float64   `json:"price" binding:"gte=0"`
}

// Apply copies the request onto d. A missing active flag means true.
func (r *DealRequest) Apply(d *Deal) {
	d.Title = r.Title
	d.Description = r.Description
	d.Discount = r.Discount
	d.Category = r.Category
	d.ExpiryDate = r.ExpiryDate
	d.Price = r.Price
	d.Active = r.Active == nil || *r.Active
}
