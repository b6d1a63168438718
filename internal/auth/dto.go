package auth

import (
	"fmt"
	"strings"
	"unicode"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if d.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d *RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return fmt.Errorf("refresh_token is required")
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (d *ForgotPasswordDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

type ResetPasswordDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (d *ResetPasswordDTO) Validate() error {
	if d.Token == "" {
		return fmt.Errorf("token is required")
	}
	return ValidatePasswordStrength(d.NewPassword)
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (d *ChangePasswordDTO) Validate() error {
	if d.CurrentPassword == "" {
		return fmt.Errorf("current_password is required")
	}
	return ValidatePasswordStrength(d.NewPassword)
}

type ActivateInviteDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d *ActivateInviteDTO) Validate() error {
	if d.Token == "" {
		return fmt.Errorf("token is required")
	}
	return ValidatePasswordStrength(d.Password)
}

// ValidatePasswordStrength enforces the minimum password policy: at least 8
// characters containing at least one letter and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
