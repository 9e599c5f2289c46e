package attendance

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/internal/store"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// FallbackActor is recorded as markedBy when no identity is known.
const FallbackActor = "SYSTEM"

type rosterGateway interface {
	AttendanceRoster(ctx context.Context, scope models.AcademicScope) ([]models.AttendanceRecord, error)
	SaveAttendance(ctx context.Context, records []models.AttendanceRecord) error
}

// Workflow marks attendance for one confirmed scope. Edits are local;
// the gateway sees a single bulk save.
type Workflow struct {
	gw        rosterGateway
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger

	actor        string
	scope        models.AcademicScope
	roster       []models.AttendanceRecord
	anyDefaulted bool
}

// NewWorkflow constructs the marking workflow. actor is the
// authenticated teacher's email used for markedBy.
func NewWorkflow(gw rosterGateway, st store.Store, actor string, validate *validator.Validate, logger *zap.Logger) *Workflow {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if actor == "" {
		actor = FallbackActor
	}
	w := &Workflow{gw: gw, store: st, validator: validate, actor: actor, logger: logger}
	w.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return w
}

// Load reads the confirmed scope, fetches the roster and prepares it
// for display: name order, unmarked students defaulted to Present.
func (w *Workflow) Load(ctx context.Context) error {
	scope, err := LoadScope(ctx, w.store)
	if err != nil {
		return err
	}

	fetched, err := w.gw.AttendanceRoster(ctx, scope)
	if err != nil {
		return err
	}

	roster, anyDefaulted := DefaultFill(SortRoster(fetched))
	w.scope = scope
	w.roster = roster
	w.anyDefaulted = anyDefaulted
	w.logger.Debug("roster_loaded",
		zap.String("class", scope.ClassID),
		zap.String("section", scope.Section),
		zap.String("date", scope.Date),
		zap.Int("students", len(roster)),
		zap.Bool("any_defaulted", anyDefaulted),
	)
	return nil
}

// SortRoster returns the records in stable lexicographic studentName
// order. Display ordering is independent of server order.
func SortRoster(in []models.AttendanceRecord) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StudentName < out[j].StudentName
	})
	return out
}

// DefaultFill assigns Present to every record without a status and
// reports whether any was defaulted. The input is not mutated; running
// the transform twice yields the same roster as once.
func DefaultFill(in []models.AttendanceRecord) ([]models.AttendanceRecord, bool) {
	out := make([]models.AttendanceRecord, len(in))
	copy(out, in)
	anyDefaulted := false
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = models.AttendanceStatusPresent
			anyDefaulted = true
		}
	}
	return out, anyDefaulted
}

// Roster returns the working records in display order.
func (w *Workflow) Roster() []models.AttendanceRecord {
	return w.roster
}

// Scope returns the scope the roster was loaded under.
func (w *Workflow) Scope() models.AcademicScope {
	return w.scope
}

// AnyDefaulted reports whether default-fill touched the roster. Set
// once at load, never cleared; it only drives the save action's label.
func (w *Workflow) AnyDefaulted() bool {
	return w.anyDefaulted
}

// SaveLabel returns the save action's label: a roster that still had
// unmarked students saves, a fully marked one updates.
func (w *Workflow) SaveLabel() string {
	if w.anyDefaulted {
		return "Save Attendance"
	}
	return "Update Attendance"
}

// SetStatus overwrites one student's status in place, stamping the
// scope and actor onto the record. No network call; edits batch into
// the next save.
func (w *Workflow) SetStatus(studentID string, status models.AttendanceStatus) error {
	if err := w.validator.Var(string(status), "required,attendance_status"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	for i := range w.roster {
		if w.roster[i].StudentID != studentID {
			continue
		}
		w.roster[i].Status = status
		w.roster[i].SessionID = w.scope.SessionID
		w.roster[i].ClassID = w.scope.ClassID
		w.roster[i].Section = w.scope.Section
		w.roster[i].ClassDate = w.scope.Date
		w.roster[i].MarkedBy = w.actor
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, "student not on roster")
}

// Save sends the full roster in one request. Default-fill should make
// an unmarked record impossible, but the precondition is re-checked
// before anything leaves the client. Failures surface as retryable
// notifications; resubmitting the same payload is safe.
func (w *Workflow) Save(ctx context.Context) error {
	records := make([]models.AttendanceRecord, len(w.roster))
	copy(records, w.roster)

	for i := range records {
		if records[i].Status == "" {
			return appErrors.ErrUnmarkedAttendance
		}
		if records[i].SessionID == "" {
			records[i].SessionID = w.scope.SessionID
		}
		if records[i].ClassID == "" {
			records[i].ClassID = w.scope.ClassID
		}
		if records[i].Section == "" {
			records[i].Section = w.scope.Section
		}
		if records[i].ClassDate == "" {
			records[i].ClassDate = w.scope.Date
		}
		if records[i].MarkedBy == "" {
			records[i].MarkedBy = w.actor
		}
	}

	if err := w.gw.SaveAttendance(ctx, records); err != nil {
		return err
	}
	w.logger.Info("attendance_saved",
		zap.String("class", w.scope.ClassID),
		zap.String("section", w.scope.Section),
		zap.String("date", w.scope.Date),
		zap.Int("students", len(records)),
	)
	return nil
}
