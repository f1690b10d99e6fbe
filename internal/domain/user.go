package domain

import "time"

// Role is the access level of a platform user
type Role string

const (
	RoleResident      Role = "RESIDENT"
	RoleStaff         Role = "STAFF"
	RoleModerator     Role = "MODERATOR"
	RoleCouncilMember Role = "COUNCIL_MEMBER"
	RoleAdmin         Role = "ADMIN"
)

// CanModerate reports whether the role may access the moderation queue
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanViewAllComments reports whether the role may see non-visible
// comments and raw bodies
func (r Role) CanViewAllComments() bool {
	switch r {
	case RoleStaff, RoleModerator, RoleCouncilMember, RoleAdmin:
		return true
	}
	return false
}

// User is a platform account. Residents authenticate with email OTP;
// there are no passwords.
type User struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	Name      string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Role      Role      `gorm:"column:role;type:varchar(20)" json:"role"`
	Address   string    `gorm:"column:address;type:varchar(255)" json:"-"`
	ZipCode   string    `gorm:"column:zip_code;type:varchar(10)" json:"zip_code,omitempty"`
	District  string    `gorm:"column:district;type:varchar(50)" json:"district,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}

// SendOTPRequest is the payload requesting a login code
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest is the payload verifying a login code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// AuthResponse is returned on successful OTP verification
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
