package services

import (
	"fmt"
	"strings"

	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"gorm.io/gorm"
)

type FormService struct {
	db *gorm.DB
}

func NewFormService(db *gorm.DB) *FormService {
	return &FormService{db: db}
}

// Create inserts a contact-form submission. submitterID is non-nil when the
// caller was resolved by the optional auth gate.
func (s *FormService) Create(req *dto.ContactFormRequest, submitterID *uint) (*models.ContactForm, error) {
	form := models.ContactForm{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Message:  strings.TrimSpace(req.Message),
		UserID:   submitterID,
	}
	if err := s.db.Create(&form).Error; err != nil {
		return nil, fmt.Errorf("failed to store contact form: %w", err)
	}
	return &form, nil
}

// List returns every submission, newest first.
func (s *FormService) List() ([]models.ContactForm, int64, error) {
	var forms []models.ContactForm
	if err := s.db.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, 0, err
	}
	return forms, int64(len(forms)), nil
}
