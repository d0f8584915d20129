package dto

import "time"

type FAQCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

type FAQCategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FAQItemRequest struct {
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Question   string `json:"question" validate:"required,max=500"`
	Answer     string `json:"answer" validate:"required,max=20000"`
	IsActive   *bool  `json:"is_active"`
}

type FAQItemResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	AnswerHTML  string    `json:"answer_html"`
	CreatedByID int64     `json:"created_by_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
