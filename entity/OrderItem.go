package entity

type OrderItem struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	OrderID    uint     `gorm:"not null;uniqueIndex:idx_order_menu_item" json:"order_id"`
	MenuItemID uint     `gorm:"not null;uniqueIndex:idx_order_menu_item;index" json:"menuitem_id"`
	MenuItem   MenuItem `gorm:"constraint:OnDelete:RESTRICT" json:"menuitem"`
	Quantity   int      `gorm:"not null" json:"quantity"`
	UnitPrice  Money    `gorm:"type:decimal(6,2);not null" json:"unit_price"`
	Price      Money    `gorm:"type:decimal(12,2);not null" json:"price"`
}
