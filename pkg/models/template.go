package models

import "time"

// Template is an email template identity; its content lives in versions.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=1"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateVersion is one immutable rendering of a template. Version numbers
// are monotonic per template; exactly one version per template may be the
// default at any time.
type TemplateVersion struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"template_id"`
	Version    int       `json:"version"`
	HTML       string    `json:"html"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}
