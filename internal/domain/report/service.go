package report

import (
	"context"
	"errors"
	"time"
)

type StoreAPI interface {
	GetByMonth(ctx context.Context, orgID, employeeID string, month Month) (*Report, error)
	GetByID(ctx context.Context, orgID, reportID string) (*Report, error)
	ListByEmployee(ctx context.Context, orgID, employeeID string) ([]Report, error)
	Create(ctx context.Context, orgID, employeeID string, month Month, syn Synthesis) (*Report, error)
}

// ReviewSource is satisfied by the review store: all review text written
// about one employee inside a time window.
type ReviewSource interface {
	TextsForRange(ctx context.Context, orgID, employeeID string, start, end time.Time) ([]string, error)
}

type EmployeeInfo struct {
	ID    string
	Name  string
	Title string
}

// EmployeeSource is an adapter over the employee store. List must return
// employees in a deterministic fetch order; the ranking's stable sort
// preserves it as the tie-break.
type EmployeeSource interface {
	Get(ctx context.Context, orgID, employeeID string) (EmployeeInfo, error)
	List(ctx context.Context, orgID string) ([]EmployeeInfo, error)
}

// SynthesisRecorder observes the outcome of each model invocation.
type SynthesisRecorder interface {
	RecordSynthesis(err error)
}

type Service struct {
	store     StoreAPI
	reviews   ReviewSource
	employees EmployeeSource
	synth     *Synthesizer
	recorder  SynthesisRecorder
	now       func() time.Time
}

func NewService(store StoreAPI, reviews ReviewSource, employees EmployeeSource, synth *Synthesizer) *Service {
	return &Service{
		store:     store,
		reviews:   reviews,
		employees: employees,
		synth:     synth,
		now:       time.Now,
	}
}

// SetSynthesisRecorder wires a metrics hook. It fires only when the model
// is actually invoked; existing reports and placeholder months never count.
func (s *Service) SetSynthesisRecorder(rec SynthesisRecorder) {
	s.recorder = rec
}

func (s *Service) GetByMonth(ctx context.Context, orgID, employeeID string, month Month) (*Report, error) {
	rep, err := s.store.GetByMonth(ctx, orgID, employeeID, month)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrNotFound
	}
	return rep, nil
}

func (s *Service) GetByID(ctx context.Context, orgID, reportID string) (*Report, error) {
	return s.store.GetByID(ctx, orgID, reportID)
}

func (s *Service) ListByEmployee(ctx context.Context, orgID, employeeID string) ([]Report, error) {
	return s.store.ListByEmployee(ctx, orgID, employeeID)
}

// Generate produces the report for one employee and month. If a report
// already exists it is returned unchanged; reports are never regenerated.
// A month with zero reviews gets the placeholder report without touching
// the model.
func (s *Service) Generate(ctx context.Context, orgID, employeeID string, month Month) (*Report, error) {
	existing, err := s.store.GetByMonth(ctx, orgID, employeeID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	emp, err := s.employees.Get(ctx, orgID, employeeID)
	if err != nil {
		return nil, err
	}

	start, end := month.Bounds()
	texts, err := s.reviews.TextsForRange(ctx, orgID, employeeID, start, end)
	if err != nil {
		return nil, err
	}

	syn := PlaceholderSynthesis()
	if len(texts) > 0 {
		syn, err = s.synth.Synthesize(ctx, emp.Name, emp.Title, texts)
		if s.recorder != nil {
			s.recorder.RecordSynthesis(err)
		}
		if err != nil {
			return nil, err
		}
	}

	// A lost race against a concurrent request surfaces as
	// ErrDuplicateReport here; the caller treats it as "already generated".
	return s.store.Create(ctx, orgID, employeeID, month, syn)
}

type FailedMonth struct {
	Month string `json:"month"`
	Error string `json:"error"`
}

type BackfillResult struct {
	Success      bool          `json:"success"`
	Reports      []*Report     `json:"generatedReports"`
	FailedMonths []FailedMonth `json:"failedMonths"`
}

// Backfill generates any missing report for the requested months, strictly
// sequentially. Each month's failure is recorded and never aborts its
// siblings, so len(Reports)+len(FailedMonths) == len(months) always holds.
func (s *Service) Backfill(ctx context.Context, orgID, employeeID string, months []Month) (BackfillResult, error) {
	if _, err := s.employees.Get(ctx, orgID, employeeID); err != nil {
		return BackfillResult{}, err
	}

	result := BackfillResult{
		Reports:      make([]*Report, 0, len(months)),
		FailedMonths: make([]FailedMonth, 0),
	}
	for _, month := range months {
		rep, err := s.Generate(ctx, orgID, employeeID, month)
		if errors.Is(err, ErrDuplicateReport) {
			// Lost a race against a concurrent generate; the winner's
			// report is this month's result.
			rep, err = s.store.GetByMonth(ctx, orgID, employeeID, month)
			if err == nil && rep == nil {
				err = ErrDuplicateReport
			}
		}
		if err != nil {
			result.FailedMonths = append(result.FailedMonths, FailedMonth{
				Month: month.String(),
				Error: err.Error(),
			})
			continue
		}
		result.Reports = append(result.Reports, rep)
	}
	result.Success = len(result.FailedMonths) == 0
	return result, nil
}
