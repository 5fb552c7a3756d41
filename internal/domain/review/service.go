package review

import "context"

// Assignments is satisfied by the employee store. A review may only be
// written (or edited) while the reviewer -> reviewee edge exists.
type Assignments interface {
	AssignmentExists(ctx context.Context, orgID, reviewerID, revieweeID string) (bool, error)
}

type StoreAPI interface {
	Get(ctx context.Context, orgID, reviewID string) (*Review, error)
	List(ctx context.Context, orgID, subjectID, authorID string) ([]Review, error)
	Create(ctx context.Context, orgID, authorID, subjectID, content string) (string, error)
	UpdateContent(ctx context.Context, orgID, reviewID, content string) error
	Delete(ctx context.Context, orgID, reviewID string) error
}

type Service struct {
	store       StoreAPI
	assignments Assignments
}

func NewService(store StoreAPI, assignments Assignments) *Service {
	return &Service{store: store, assignments: assignments}
}

func (s *Service) Get(ctx context.Context, orgID, reviewID string) (*Review, error) {
	return s.store.Get(ctx, orgID, reviewID)
}

func (s *Service) List(ctx context.Context, orgID, subjectID, authorID string) ([]Review, error) {
	return s.store.List(ctx, orgID, subjectID, authorID)
}

func (s *Service) Create(ctx context.Context, orgID, authorID, subjectID, content string) (string, error) {
	allowed, err := s.assignments.AssignmentExists(ctx, orgID, authorID, subjectID)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrNotAssigned
	}
	return s.store.Create(ctx, orgID, authorID, subjectID, content)
}

// Update rewrites the content of an existing review. Only the author may
// edit, and only while the assignment edge still exists.
func (s *Service) Update(ctx context.Context, orgID, reviewID, callerEmployeeID, content string) error {
	rev, err := s.store.Get(ctx, orgID, reviewID)
	if err != nil {
		return err
	}
	if rev.AuthorID != callerEmployeeID {
		return ErrNotAuthor
	}
	allowed, err := s.assignments.AssignmentExists(ctx, orgID, rev.AuthorID, rev.SubjectID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotAssigned
	}
	return s.store.UpdateContent(ctx, orgID, reviewID, content)
}

func (s *Service) Delete(ctx context.Context, orgID, reviewID, callerEmployeeID string) error {
	rev, err := s.store.Get(ctx, orgID, reviewID)
	if err != nil {
		return err
	}
	if rev.AuthorID != callerEmployeeID {
		return ErrNotAuthor
	}
	return s.store.Delete(ctx, orgID, reviewID)
}
