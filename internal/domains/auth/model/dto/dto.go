package dto

import (
	"strings"

	"driveease/infras/jwt"
	userModel "driveease/internal/domains/user/model"
	userDto "driveease/internal/domains/user/model/dto"
	"driveease/shared/constant"
	gModel "driveease/shared/model"
	"driveease/shared/timezone"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"         validate:"required,min=2,max=50"`
	Email    string `json:"email"        validate:"required,email"`
	Password string `json:"password"     validate:"required,min=8,max=72,password"`
	Phone    string `json:"phone_number" validate:"required,phone"`
}

// Normalize trims the name and lowercases the email before validation.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	id := uuid.NewString()
	phone := r.Phone

	return userModel.User{
		ID:       id,
		Name:     r.Name,
		Email:    r.Email,
		Password: hashedPassword,
		Phone:    &phone,
		Role:     constant.RoleUser,
		Metadata: gModel.NewMetadata(id, timezone.Now()),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *LoginRequest) Normalize() {
	l.Email = NormalizeEmail(l.Email)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest names the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User         userDto.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	ExpiresIn    int64                `json:"expires_in"`
}

func (a *AuthResponse) FromTokenPair(user userModel.User, tokenPair *jwt.TokenPair) {
	a.User.FromModel(user)
	a.AccessToken = tokenPair.AccessToken
	a.RefreshToken = tokenPair.RefreshToken
	a.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.AccessToken = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.ExpiresIn = tokenPair.ExpiresIn
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
