package models

import "time"

const (
	OrderStatusCompleted  = "completed"
	OrderStatusProcessing = "processing"
)

type Order struct {
	ID        int64       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Status    string      `json:"status" gorm:"index"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
}

type OrderItem struct {
	ID          int64 `json:"id" gorm:"primaryKey"`
	OrderID     int64 `json:"order_id" gorm:"index;not null"`
	ProductID   int64 `json:"product_id" gorm:"index"`
	VariationID int64 `json:"variation_id"`
	Quantity    int   `json:"quantity"`
}
