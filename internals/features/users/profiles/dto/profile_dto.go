package dto

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=3,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}
