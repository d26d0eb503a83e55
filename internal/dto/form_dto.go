package dto

import "github.com/mcontreras/contact-form-api/internal/models"

type ContactFormRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=50"`
	Message  string `json:"message" validate:"required"`
}

type FormListData struct {
	Forms []models.ContactForm `json:"forms"`
	Total int64                `json:"total"`
}
