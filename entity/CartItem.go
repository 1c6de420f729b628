package entity

// CartItem is a pending line in a user's cart. Prices are snapshotted when the line is added.
type CartItem struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	UserID     uint     `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	User       User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MenuItemID uint     `gorm:"not null;uniqueIndex:idx_cart_user_item;index" json:"menuitem_id"`
	MenuItem   MenuItem `gorm:"constraint:OnDelete:CASCADE" json:"menuitem"`
	Quantity   int      `gorm:"not null" json:"quantity"`
	UnitPrice  Money    `gorm:"type:decimal(6,2);not null" json:"unit_price"`
	Price      Money    `gorm:"type:decimal(12,2);not null" json:"price"`
}
