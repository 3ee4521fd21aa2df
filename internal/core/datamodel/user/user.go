package user

import "time"

type User struct {
	UserID       int64     `gorm:"primaryKey;column:user_id"`
	UserCode     string    `gorm:"column:user_code;uniqueIndex;not null"`
	FirstName    string    `gorm:"column:frist_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash"`
	ImgProfile   string    `gorm:"column:img_profile"`
	RoleID       int       `gorm:"column:role_id"`
	BranchID     int       `gorm:"column:branchid"`
	DepID        int       `gorm:"column:depid"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PasswordResetToken stores only the sha256 of the token; the raw value
// travels in the email link and is never persisted.
type PasswordResetToken struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null"`
	TokenHash []byte     `gorm:"column:token_hash;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	IPAddress string     `gorm:"column:ip_address"`
	UserAgent string     `gorm:"column:user_agent"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
