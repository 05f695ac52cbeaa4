package model

// User roles
const (
	RoleAdmin  = "admin"
	RoleGuard  = "guard"
	RoleViewer = "viewer"
)

// User operator account, table users
type User struct {
	ID           int64  `gorm:"primaryKey"                                json:"id"`
	Username     string `gorm:"type:varchar(64);not null;unique"          json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                json:"-"`
	FullName     string `gorm:"type:varchar(200);not null"                json:"full_name"`
	Role         string `gorm:"type:varchar(20);not null;default:'guard'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                     json:"is_active"`
	Timestamps
}

// TableName users
func (User) TableName() string { return "users" }
