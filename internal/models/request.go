package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// TableAnalysisRequest is a parsed table submitted for analysis.
// With a ProjectID the resulting analysis is stored for that project.
type TableAnalysisRequest struct {
	ProjectID string   `json:"projectId,omitempty" validate:"omitempty,max=128"`
	Source    string   `json:"source,omitempty" validate:"omitempty,max=255"`
	Headers   []string `json:"headers" validate:"required,min=1,dive,max=512"`
	Rows      []Row    `json:"rows" validate:"required,min=1"`
}

// Validate validates the request using go-playground/validator.
func (r *TableAnalysisRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid table analysis request: %w", err)
	}
	return nil
}
