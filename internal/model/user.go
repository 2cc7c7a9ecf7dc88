package model

import "time"

type User struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uk_users_email"`
	FirstName string    `gorm:"column:first_name;size:120"`
	LastName  string    `gorm:"column:last_name;size:120"`
	Role      string    `gorm:"size:32;not null;default:user;index"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// FullName is what the relay shows admins as the sender of a user message.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
