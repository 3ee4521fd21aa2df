package user

import (
	userDatamodel "github.com/ptec-dev/audit-management/internal/core/datamodel/user"
)

// Profile is the gateway's local view of an account. Credentials live in
// the portal; this record exists for profile display and the password
// reset flow, which the gateway owns end to end.
type Profile struct {
	UserID     int64  `json:"userId"`
	UserCode   string `json:"userCode"`
	FirstName  string `json:"fristName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	ImgProfile string `json:"img_profile"`
	RoleID     int    `json:"role_id"`
	BranchID   int    `json:"branchid"`
	DepID      int    `json:"depid"`
	IsActive   bool   `json:"isActive"`
}

func FromDataModel(u *userDatamodel.User) *Profile {
	return &Profile{
		UserID:     u.UserID,
		UserCode:   u.UserCode,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		ImgProfile: u.ImgProfile,
		RoleID:     u.RoleID,
		BranchID:   u.BranchID,
		DepID:      u.DepID,
		IsActive:   u.IsActive,
	}
}
