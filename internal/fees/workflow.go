package fees

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sapientheights/mobile-core/internal/gateway"
	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/pkg/config"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// Method is the chosen payment intent strategy.
type Method string

const (
	MethodQR  Method = "QR"
	MethodUPI Method = "UPI"
)

// The mode recorded on submissions; both strategies settle over UPI.
const paymentMode = "UPI"

type feeGateway interface {
	StudentFee(ctx context.Context, q gateway.StudentQuery) (*models.FeeSummary, error)
	StudentPayments(ctx context.Context, q gateway.StudentQuery) ([]models.StudentPayment, error)
	PaymentSubmissions(ctx context.Context, q gateway.StudentQuery) ([]models.PaymentSubmission, error)
	SubmitPayment(ctx context.Context, payload gateway.SubmissionPayload) error
}

// Workflow aggregates a student's fee position and runs the payment
// submission flow. One outstanding submission gates all new payments
// until an admin resolves it.
type Workflow struct {
	gw        feeGateway
	upi       config.UPIConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	student models.StudentProfile

	summary     models.FeeSummary
	hasSummary  bool
	history     []models.StudentPayment
	submissions []models.PaymentSubmission
	isPending   bool
	notices     []error

	selectedMethod Method
}

// NewWorkflow constructs the fee workflow for an authenticated student.
func NewWorkflow(gw feeGateway, student models.StudentProfile, upi config.UPIConfig, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *Workflow {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Workflow{gw: gw, student: student, upi: upi, validator: validate, logger: logger, now: now}
}

func (w *Workflow) query() gateway.StudentQuery {
	return gateway.StudentQuery{
		SessionID: w.student.Session,
		StudentID: w.student.StudentID,
		ClassID:   w.student.Class,
		Section:   w.student.Section,
	}
}

// Load runs the three aggregation fetches. They have no ordering
// dependency: a server-reported error empties that section and is kept
// as a notice while the others still load. A transport failure aborts
// the remainder, matching the single loading pass the screen performs.
func (w *Workflow) Load(ctx context.Context) error {
	q := w.query()
	w.notices = nil

	history, err := w.gw.StudentPayments(ctx, q)
	if err != nil {
		if !appErrors.IsKind(err, appErrors.KindApplication) {
			return err
		}
		w.notices = append(w.notices, err)
		history = nil
	}
	w.history = history

	summary, err := w.gw.StudentFee(ctx, q)
	if err != nil {
		if !appErrors.IsKind(err, appErrors.KindApplication) {
			return err
		}
		w.notices = append(w.notices, err)
		w.hasSummary = false
		w.summary = models.FeeSummary{}
	} else {
		w.summary = *summary
		w.hasSummary = true
	}

	submissions, err := w.gw.PaymentSubmissions(ctx, q)
	if err != nil {
		if !appErrors.IsKind(err, appErrors.KindApplication) {
			return err
		}
		w.notices = append(w.notices, err)
		submissions = nil
	}
	w.submissions = submissions
	w.isPending = models.AnyPending(submissions)

	w.logger.Debug("fees_loaded",
		zap.String("student", w.student.StudentID),
		zap.Bool("is_pending", w.isPending),
		zap.Int("payments", len(w.history)),
		zap.Int("submissions", len(w.submissions)),
	)
	return nil
}

// Notices returns server-reported section failures from the last load.
func (w *Workflow) Notices() []error { return w.notices }

// Summary returns the fee summary; the zero value when the section
// failed to load.
func (w *Workflow) Summary() models.FeeSummary { return w.summary }

// Pending returns the outstanding amount, unclamped.
func (w *Workflow) Pending() float64 { return w.summary.Pending() }

// History returns the verified payment history.
func (w *Workflow) History() []models.StudentPayment { return w.history }

// TotalPaid sums the history amounts; unparsable rows count as zero.
func (w *Workflow) TotalPaid() float64 {
	total := 0.0
	for _, p := range w.history {
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.Amount), 64); err == nil {
			total += v
		}
	}
	return total
}

// Submissions returns the submission history.
func (w *Workflow) Submissions() []models.PaymentSubmission { return w.submissions }

// IsPending reports whether any submission awaits review.
func (w *Workflow) IsPending() bool { return w.isPending }

// CanInitiatePayment is the submission gate: false while any prior
// submission is Pending, regardless of other state.
func (w *Workflow) CanInitiatePayment() bool { return !w.isPending }

// SelectMethod picks the intent strategy. Blocked while gated.
func (w *Workflow) SelectMethod(m Method) error {
	if w.isPending {
		return appErrors.ErrSubmissionPending
	}
	if m != MethodQR && m != MethodUPI {
		return appErrors.Clone(appErrors.ErrValidation, "unknown payment method")
	}
	w.selectedMethod = m
	return nil
}

// SelectedMethod returns the chosen strategy, empty when none.
func (w *Workflow) SelectedMethod() Method { return w.selectedMethod }

// ValidateAmount checks an entered amount against the pending balance.
// Pure; meant to re-run on every keystroke.
func ValidateAmount(input string, pending float64) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || value <= 0 {
		return appErrors.ErrInvalidAmount
	}
	if value > pending {
		return appErrors.ErrExceedsPending
	}
	return nil
}

// Payment phases within the modal.
type Phase string

const (
	PhaseAmountEntry        Phase = "AmountEntry"
	PhaseTransactionIDEntry Phase = "TransactionIdEntry"
	PhaseSubmitted          Phase = "Submitted"
)

// Payment is one modal instance: AmountEntry, then the QR or UPI
// intent, then MarkedPaid into transaction-id entry, then Submitted.
type Payment struct {
	wf     *Workflow
	method Method

	phase       Phase
	amountInput string
	amount      float64
	amountErr   error
}

// StartPayment opens the modal for the selected method. Blocked while
// the submission gate holds or no method is chosen.
func (w *Workflow) StartPayment() (*Payment, error) {
	if w.isPending {
		return nil, appErrors.ErrSubmissionPending
	}
	if w.selectedMethod == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select a payment method first")
	}
	return &Payment{wf: w, method: w.selectedMethod, phase: PhaseAmountEntry}, nil
}

// Method returns the strategy this payment uses.
func (p *Payment) Method() Method { return p.method }

// Phase returns the current modal phase.
func (p *Payment) Phase() Phase { return p.phase }

// EnterAmount records a keystroke's worth of input and revalidates.
// A valid entry clears any prior error.
func (p *Payment) EnterAmount(input string) error {
	if p.phase != PhaseAmountEntry {
		return appErrors.Clone(appErrors.ErrValidation, "amount is locked after marking paid")
	}
	p.amountInput = input
	if err := ValidateAmount(input, p.wf.Pending()); err != nil {
		p.amount = 0
		p.amountErr = err
		return err
	}
	p.amount, _ = strconv.ParseFloat(strings.TrimSpace(input), 64)
	p.amountErr = nil
	return nil
}

// AmountValid reports whether the entered amount passed validation.
func (p *Payment) AmountValid() bool {
	return p.amountInput != "" && p.amountErr == nil
}

// Amount returns the validated amount, zero when invalid.
func (p *Payment) Amount() float64 { return p.amount }

// IntentLink returns the UPI deep link for the validated amount. The
// QR render and the app intent both encode this link; neither is
// offered until the amount is valid.
func (p *Payment) IntentLink() (string, error) {
	if !p.AmountValid() {
		if p.amountErr != nil {
			return "", p.amountErr
		}
		return "", appErrors.ErrInvalidAmount
	}
	return UPILink(p.wf.upi, p.amount), nil
}

// QRCodePNG renders the scannable code for a QR payment.
func (p *Payment) QRCodePNG(size int) ([]byte, error) {
	if p.method != MethodQR {
		return nil, appErrors.Clone(appErrors.ErrValidation, "qr rendering requires the QR method")
	}
	link, err := p.IntentLink()
	if err != nil {
		return nil, err
	}
	return QRCodePNG(link, size)
}

// OpenUPIApp hands the deep link to the platform dispatcher. A missing
// handler app surfaces as a notification; the phase does not change.
func (p *Payment) OpenUPIApp(ctx context.Context, dispatcher IntentDispatcher) error {
	if p.method != MethodUPI {
		return appErrors.Clone(appErrors.ErrValidation, "app intent requires the UPI method")
	}
	link, err := p.IntentLink()
	if err != nil {
		return err
	}
	if err := dispatcher.OpenURL(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "UPI app not found")
	}
	return nil
}

// MarkPaid moves the modal to transaction-id entry. Requires a valid
// amount with no outstanding error.
func (p *Payment) MarkPaid() error {
	if p.phase != PhaseAmountEntry {
		return appErrors.Clone(appErrors.ErrValidation, "payment already marked paid")
	}
	if !p.AmountValid() {
		if p.amountErr != nil {
			return p.amountErr
		}
		return appErrors.ErrInvalidAmount
	}
	p.phase = PhaseTransactionIDEntry
	return nil
}

// Submit sends the submission for verification. An empty transaction
// id fails validation and keeps the modal open. On success the modal
// closes and the workflow re-runs the full aggregation so the new
// Pending submission gates further payments; there is no optimistic
// local update.
func (p *Payment) Submit(ctx context.Context, transactionID string) error {
	if p.phase != PhaseTransactionIDEntry {
		return appErrors.Clone(appErrors.ErrValidation, "mark the payment as paid first")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return appErrors.ErrMissingTransactionID
	}

	payload := gateway.SubmissionPayload{
		SessionID:     p.wf.student.Session,
		StudentID:     p.wf.student.StudentID,
		ClassID:       p.wf.student.Class,
		Section:       p.wf.student.Section,
		Amount:        strings.TrimSpace(p.amountInput),
		PaymentMode:   paymentMode,
		PaymentDate:   p.wf.now().Format("2006-01-02"),
		TransactionID: transactionID,
	}
	if err := p.wf.gw.SubmitPayment(ctx, payload); err != nil {
		return err
	}

	p.phase = PhaseSubmitted
	p.wf.selectedMethod = ""
	p.wf.logger.Info("payment_submitted",
		zap.String("student", p.wf.student.StudentID),
		zap.String("amount", payload.Amount),
	)
	return p.wf.Load(ctx)
}
