package domain

import "time"

// FAQCategory groups knowledge base entries.
type FAQCategory struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// FAQItem is a question with a markdown answer. AnswerHTML is rendered on read.
type FAQItem struct {
	ID          int64     `db:"id"`
	CategoryID  int64     `db:"category_id"`
	Question    string    `db:"question"`
	Answer      string    `db:"answer"`
	AnswerHTML  string    `db:"-"`
	CreatedByID int64     `db:"created_by_id"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
