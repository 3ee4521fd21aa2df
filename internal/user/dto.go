package user

type ValidateResetTokenDTO struct {
	Token string `json:"token"`
}

type ResetPasswordDTO struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d ValidateResetTokenDTO) Validate() error {
	if d.Token == "" {
		return ValidationError{Msg: "token is required"}
	}
	return nil
}

func (d ResetPasswordDTO) Validate() error {
	if d.Token == "" {
		return ValidationError{Msg: "token is required"}
	}
	if d.NewPassword == "" {
		return ValidationError{Msg: "newPassword is required"}
	}
	if len(d.NewPassword) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.NewPassword != d.ConfirmPassword {
		return ValidationError{Msg: "passwords do not match"}
	}
	return nil
}
