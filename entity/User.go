package entity

import "time"

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:254" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	Groups      []Group   `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"-"`
}

// GroupNames returns the names of the loaded groups.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}
