package auth

// DTOs are the transport shapes the HTTP handler accepts. Field names match
// what the front end already sends to the original API.

type LoginDTO struct {
	LoginName string `json:"loginname"`
	Password  string `json:"password"`
}

type VerifyOtpDTO struct {
	UserCode    string `json:"usercode"`
	OtpCode     string `json:"otpCode"`
	TrustDevice bool   `json:"trustDevice"`
}

type ResendOtpDTO struct {
	UserCode string `json:"usercode"`
}

type SendOtpDTO struct {
	Email string `json:"email"`
}

type RefreshSessionDTO struct {
	SessionToken string `json:"session_token"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.LoginName == "" {
		return ValidationError{Msg: "loginname is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d VerifyOtpDTO) Validate() error {
	if d.UserCode == "" {
		return ValidationError{Msg: "UserCode and OTP are required"}
	}
	if d.OtpCode == "" {
		return ValidationError{Msg: "UserCode and OTP are required"}
	}
	return nil
}

func (d ResendOtpDTO) Validate() error {
	if d.UserCode == "" {
		return ValidationError{Msg: "UserCode is required"}
	}
	return nil
}

func (d SendOtpDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

func (d RefreshSessionDTO) Validate() error {
	if d.SessionToken == "" {
		return ValidationError{Msg: "session_token is required"}
	}
	return nil
}
