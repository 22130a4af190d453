package models

// Medication is a catalog entry. Code is the business key ("M101").
// Rating stays NULL until the medication is rated for the first time.
type Medication struct {
	ID     uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code   string   `gorm:"uniqueIndex;not null"     json:"code"`
	Name   string   `gorm:"not null"                 json:"name"`
	Price  float64  `gorm:"not null"                 json:"price"`
	Stock  int64    `gorm:"not null"                 json:"stock"`
	Rating *float64 `json:"rating,omitempty"`
}

// Order references its medication by key, not by pointer.
// TotalCost is frozen at placement time and never recomputed.
type Order struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MedicationID uint    `gorm:"index;not null"           json:"medication_id"`
	Quantity     int64   `gorm:"not null"                 json:"quantity"`
	TotalCost    float64 `gorm:"not null"                 json:"total_cost"`
	Address      string  `json:"address"`
	Canceled     bool    `gorm:"default:false"            json:"canceled"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)
