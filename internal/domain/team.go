package domain

import "time"

// Team represents a sub-group under a department.
type Team struct {
	ID           int64     `db:"id"`
	DepartmentID int64     `db:"department_id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
