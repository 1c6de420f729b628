package entity

type MenuItem struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Title      string   `gorm:"size:255;index;not null" json:"title"`
	Price      Money    `gorm:"type:decimal(6,2);not null;index" json:"price"`
	Featured   bool     `gorm:"not null;default:false;index" json:"featured"`
	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
}
