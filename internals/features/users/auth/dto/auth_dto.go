package dto

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=3,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	User        interface{} `json:"user"`
}
