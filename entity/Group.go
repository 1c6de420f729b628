package entity

const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery_crew"
)

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:150;uniqueIndex;not null" json:"name"`
}

func (Group) TableName() string { return "auth_groups" }
