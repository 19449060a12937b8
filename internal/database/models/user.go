package models

// User represents an account that can own organizations and belong to teams
type User struct {
	BaseModel
	Name         string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email,max=255"`
	PasswordHash string `json:"-" gorm:"not null;size:100"`
	AvatarURL    string `json:"avatar_url" gorm:"size:500" validate:"max=500"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
