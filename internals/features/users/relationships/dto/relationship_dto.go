package dto

type CreateRelationshipRequest struct {
	StudentEmail string `json:"student_email" validate:"required,email"`
}
