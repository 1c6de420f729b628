package entity

const (
	StatusPlaced    = false
	StatusDelivered = true
)

// DateLayout is the wire and storage format of Order.Date.
const DateLayout = "2006-01-02"

type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	User           User        `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	DeliveryCrewID *uint       `gorm:"index" json:"delivery_crew_id"`
	DeliveryCrew   *User       `gorm:"constraint:OnDelete:SET NULL" json:"delivery_crew"`
	Status         bool        `gorm:"not null;default:false;index" json:"status"`
	Total          Money       `gorm:"type:decimal(12,2);not null" json:"total"`
	Date           string      `gorm:"size:10;not null;index" json:"date"`
	Items          []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

func StatusLabel(delivered bool) string {
	if delivered {
		return "delivered"
	}
	return "placed"
}
