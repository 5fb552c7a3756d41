package employee

import "time"

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Email        string    `json:"email"`
	DepartmentID string    `json:"departmentId,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Assignment is a directed reviewer -> reviewee permission edge.
type Assignment struct {
	ReviewerID string    `json:"reviewerId"`
	RevieweeID string    `json:"revieweeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
