package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/internal/store"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// DateLayout is the wire format for class dates.
const DateLayout = "2006-01-02"

// DefaultMaxPastDays bounds how far back attendance may be marked.
const DefaultMaxPastDays = 2

// Selector drives scope selection for one screen visit. Choosing a
// session resets class and section; choosing a class resets section.
// The cascade keeps a stale (class, section) pair from a previous
// session out of the confirmed scope.
type Selector struct {
	scope       models.AcademicScope
	initial     models.AcademicScope
	maxPastDays int
	now         func() time.Time
}

// NewSelector starts a selection with the active session pre-picked and
// today's date filled in.
func NewSelector(activeSession string, maxPastDays int, now func() time.Time) *Selector {
	if maxPastDays <= 0 {
		maxPastDays = DefaultMaxPastDays
	}
	if now == nil {
		now = time.Now
	}
	initial := models.AcademicScope{
		SessionID: activeSession,
		Date:      now().Format(DateLayout),
	}
	return &Selector{scope: initial, initial: initial, maxPastDays: maxPastDays, now: now}
}

// Scope returns the current selection.
func (s *Selector) Scope() models.AcademicScope {
	return s.scope
}

// ChooseSession picks a session and cascades the reset.
func (s *Selector) ChooseSession(sessionID string) {
	s.scope.SessionID = sessionID
	s.scope.ClassID = ""
	s.scope.Section = ""
}

// ChooseClass picks a class and resets the section.
func (s *Selector) ChooseClass(classID string) {
	s.scope.ClassID = classID
	s.scope.Section = ""
}

// ChooseSection picks a section.
func (s *Selector) ChooseSection(section string) {
	s.scope.Section = section
}

// ChooseDate picks a class date.
func (s *Selector) ChooseDate(date time.Time) {
	s.scope.Date = date.Format(DateLayout)
}

// Reset returns the selection to its initial state. Resetting a form
// with nothing chosen yet is reported so the UI can say so.
func (s *Selector) Reset() error {
	if s.scope == s.initial {
		return appErrors.Clone(appErrors.ErrValidation, "nothing to clear")
	}
	s.scope = s.initial
	return nil
}

// Validate checks completeness and the date window.
func (s *Selector) Validate() error {
	if !s.scope.Complete() {
		return appErrors.ErrMissingFields
	}
	return ValidateDate(s.scope.Date, s.now(), s.maxPastDays)
}

// ValidateDate accepts a date iff today-maxPastDays <= date <= today,
// comparing at midnight. Pure local check, no retry semantics.
func ValidateDate(date string, today time.Time, maxPastDays int) error {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidDate, "invalid date format, expected YYYY-MM-DD")
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	if d.After(midnight) {
		return appErrors.Clone(appErrors.ErrInvalidDate, "attendance cannot be marked for future dates")
	}
	if d.Before(midnight.AddDate(0, 0, -maxPastDays)) {
		return appErrors.Clone(appErrors.ErrInvalidDate, "attendance cannot be marked for more than two past days")
	}
	return nil
}

// Confirm validates the scope and hands it to the marking screen
// through the session store.
func (s *Selector) Confirm(ctx context.Context, st store.Store) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return store.SetJSON(ctx, st, store.KeyAcademicData, s.scope)
}

// LoadScope reads the confirmed scope left by the selector.
func LoadScope(ctx context.Context, st store.Store) (models.AcademicScope, error) {
	var scope models.AcademicScope
	if err := store.GetJSON(ctx, st, store.KeyAcademicData, &scope); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return scope, appErrors.ErrScopeMissing
		}
		return scope, err
	}
	return scope, nil
}

// ClassOptions returns the distinct classes a teacher may pick.
func ClassOptions(classes []models.TeacherClass) []string {
	seen := map[string]struct{}{}
	options := make([]string, 0, len(classes))
	for _, c := range classes {
		if _, ok := seen[c.ClassID]; ok {
			continue
		}
		seen[c.ClassID] = struct{}{}
		options = append(options, c.ClassID)
	}
	return options
}

// SectionsFor returns the sections available for the chosen class.
func SectionsFor(classes []models.TeacherClass, classID string) []string {
	sections := make([]string, 0, len(classes))
	for _, c := range classes {
		if c.ClassID == classID {
			sections = append(sections, c.Section)
		}
	}
	return sections
}

// ActiveSession returns the session flagged active by the gateway.
func ActiveSession(sessions []models.Session) string {
	for _, s := range sessions {
		if s.IsActive == 1 {
			return s.SessionID
		}
	}
	return ""
}
