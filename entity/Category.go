package entity

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:255;uniqueIndex;not null" json:"title"`
}
