package review

import "time"

type Review struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	SubjectID string    `json:"subjectId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
