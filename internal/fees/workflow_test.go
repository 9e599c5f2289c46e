package fees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapientheights/mobile-core/internal/gateway"
	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/pkg/config"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

type feeGatewayMock struct {
	summary     *models.FeeSummary
	summaryErr  error
	payments    []models.StudentPayment
	paymentsErr error
	subs        []models.PaymentSubmission
	subsErr     error
	submitErr   error

	submitted   []gateway.SubmissionPayload
	afterSubmit func(m *feeGatewayMock)
}

func (m *feeGatewayMock) StudentFee(_ context.Context, _ gateway.StudentQuery) (*models.FeeSummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

func (m *feeGatewayMock) StudentPayments(_ context.Context, _ gateway.StudentQuery) ([]models.StudentPayment, error) {
	if m.paymentsErr != nil {
		return nil, m.paymentsErr
	}
	return m.payments, nil
}

func (m *feeGatewayMock) PaymentSubmissions(_ context.Context, _ gateway.StudentQuery) ([]models.PaymentSubmission, error) {
	if m.subsErr != nil {
		return nil, m.subsErr
	}
	return m.subs, nil
}

func (m *feeGatewayMock) SubmitPayment(_ context.Context, payload gateway.SubmissionPayload) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, payload)
	if m.afterSubmit != nil {
		m.afterSubmit(m)
	}
	return nil
}

func testStudent() models.StudentProfile {
	return models.StudentProfile{
		StudentID: "S-42",
		Name:      "Aman",
		Session:   "2024-25",
		Class:     "10",
		Section:   "A",
	}
}

func testUPI() config.UPIConfig {
	return config.UPIConfig{
		PayeeAddress: "school@upi",
		PayeeName:    "Test School",
		Purpose:      "Fee Payment",
		Currency:     "INR",
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
}

func newTestWorkflow(t *testing.T, gw *feeGatewayMock) *Workflow {
	t.Helper()
	wf := NewWorkflow(gw, testStudent(), testUPI(), nil, nil, fixedNow)
	require.NoError(t, wf.Load(context.Background()))
	return wf
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		pending float64
		want    error
	}{
		{"valid", "3000", 5000, nil},
		{"valid decimal", "2500.50", 5000, nil},
		{"exact pending", "5000", 5000, nil},
		{"exceeds pending", "6000", 5000, appErrors.ErrExceedsPending},
		{"zero", "0", 5000, appErrors.ErrInvalidAmount},
		{"negative", "-100", 5000, appErrors.ErrInvalidAmount},
		{"not a number", "abc", 5000, appErrors.ErrInvalidAmount},
		{"empty", "", 5000, appErrors.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(tc.input, tc.pending)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestLoadAggregatesFeePosition(t *testing.T) {
	gw := &feeGatewayMock{
		summary: &models.FeeSummary{TotalFee: 12000, Discount: 1000, Paid: 6000},
		payments: []models.StudentPayment{
			{Amount: "3000", PaymentDate: "2025-01-05"},
			{Amount: "3000", PaymentDate: "2025-02-05"},
		},
		subs: []models.PaymentSubmission{
			{Amount: "2000", Status: models.SubmissionStatusVerified},
		},
	}
	wf := newTestWorkflow(t, gw)

	assert.InDelta(t, 5000.0, wf.Pending(), 0.001)
	assert.InDelta(t, 6000.0, wf.TotalPaid(), 0.001)
	assert.Len(t, wf.History(), 2)
	assert.False(t, wf.IsPending())
	assert.True(t, wf.CanInitiatePayment())
	assert.Empty(t, wf.Notices())
}

func TestLoadKeepsSectionFailuresAsNotices(t *testing.T) {
	gw := &feeGatewayMock{
		summary:     &models.FeeSummary{TotalFee: 8000},
		paymentsErr: appErrors.Clone(appErrors.ErrApplication, "no payment records found"),
		subsErr:     appErrors.Clone(appErrors.ErrApplication, "no submissions found"),
	}
	wf := newTestWorkflow(t, gw)

	assert.Len(t, wf.Notices(), 2)
	assert.Empty(t, wf.History())
	assert.Empty(t, wf.Submissions())
	// The summary still loaded and the gate stays open.
	assert.InDelta(t, 8000.0, wf.Pending(), 0.001)
	assert.True(t, wf.CanInitiatePayment())
}

func TestLoadAbortsOnTransportError(t *testing.T) {
	gw := &feeGatewayMock{
		summaryErr: appErrors.Clone(appErrors.ErrTransport, "connection refused"),
		payments:   []models.StudentPayment{{Amount: "100"}},
	}
	wf := NewWorkflow(gw, testStudent(), testUPI(), nil, nil, fixedNow)

	err := wf.Load(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindTransport))
}

func TestSubmissionGateBlocksNewPayments(t *testing.T) {
	gw := &feeGatewayMock{
		summary: &models.FeeSummary{TotalFee: 5000},
		subs: []models.PaymentSubmission{
			{Amount: "2000", Status: models.SubmissionStatusPending},
		},
	}
	wf := newTestWorkflow(t, gw)

	assert.True(t, wf.IsPending())
	assert.False(t, wf.CanInitiatePayment())
	assert.ErrorIs(t, wf.SelectMethod(MethodQR), appErrors.ErrSubmissionPending)

	_, err := wf.StartPayment()
	assert.ErrorIs(t, err, appErrors.ErrSubmissionPending)
}

func TestRejectedSubmissionsDoNotGate(t *testing.T) {
	gw := &feeGatewayMock{
		summary: &models.FeeSummary{TotalFee: 5000},
		subs: []models.PaymentSubmission{
			{Amount: "2000", Status: models.SubmissionStatusRejected},
			{Amount: "1000", Status: models.SubmissionStatusVerified},
		},
	}
	wf := newTestWorkflow(t, gw)

	assert.False(t, wf.IsPending())
	assert.True(t, wf.CanInitiatePayment())
}

func TestStartPaymentRequiresMethod(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)

	_, err := wf.StartPayment()
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestSelectMethodRejectsUnknown(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)

	assert.Error(t, wf.SelectMethod(Method("CASH")))
	require.NoError(t, wf.SelectMethod(MethodUPI))
	assert.Equal(t, MethodUPI, wf.SelectedMethod())
}

func TestPaymentAmountExceedingPending(t *testing.T) {
	// Pending 5000; entering 6000 must block the intent.
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)

	assert.ErrorIs(t, payment.EnterAmount("6000"), appErrors.ErrExceedsPending)
	assert.False(t, payment.AmountValid())

	_, err = payment.IntentLink()
	assert.ErrorIs(t, err, appErrors.ErrExceedsPending)
	assert.ErrorIs(t, payment.MarkPaid(), appErrors.ErrExceedsPending)
	assert.Equal(t, PhaseAmountEntry, payment.Phase())
}

func TestPaymentCorrectedAmountClearsError(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)

	require.Error(t, payment.EnterAmount("6000"))
	require.NoError(t, payment.EnterAmount("3000"))

	assert.True(t, payment.AmountValid())
	assert.InDelta(t, 3000.0, payment.Amount(), 0.001)
}

func TestPaymentQRFlow(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)

	require.NoError(t, payment.EnterAmount("3000"))

	link, err := payment.IntentLink()
	require.NoError(t, err)
	assert.Contains(t, link, "am=3000.00")

	png, err := payment.QRCodePNG(DefaultQRSize)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	require.NoError(t, payment.MarkPaid())
	assert.Equal(t, PhaseTransactionIDEntry, payment.Phase())

	// Amount is locked once marked paid.
	assert.Error(t, payment.EnterAmount("1000"))
}

func TestPaymentUPIMethodGuards(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodUPI))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("2000"))

	_, err = payment.QRCodePNG(DefaultQRSize)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

type dispatcherFunc func(ctx context.Context, link string) error

func (f dispatcherFunc) OpenURL(ctx context.Context, link string) error { return f(ctx, link) }

func TestOpenUPIAppDispatchesLink(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodUPI))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("2000"))

	var opened string
	dispatcher := dispatcherFunc(func(_ context.Context, link string) error {
		opened = link
		return nil
	})
	require.NoError(t, payment.OpenUPIApp(context.Background(), dispatcher))
	assert.Contains(t, opened, "upi://pay?")
	assert.Contains(t, opened, "am=2000.00")
}

func TestOpenUPIAppHandlerMissing(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodUPI))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("2000"))

	dispatcher := dispatcherFunc(func(_ context.Context, _ string) error {
		return assert.AnError
	})
	err = payment.OpenUPIApp(context.Background(), dispatcher)
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindTransport))
	// Failure notifies; the modal stays where it was.
	assert.Equal(t, PhaseAmountEntry, payment.Phase())
}

func TestSubmitRequiresTransactionID(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("3000"))
	require.NoError(t, payment.MarkPaid())

	assert.ErrorIs(t, payment.Submit(context.Background(), "   "), appErrors.ErrMissingTransactionID)
	assert.Equal(t, PhaseTransactionIDEntry, payment.Phase())
	assert.Empty(t, gw.submitted)
}

func TestSubmitBeforeMarkPaid(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)

	err = payment.Submit(context.Background(), "TXN123")
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestSubmitSendsPayloadAndRefetches(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000}}
	// The server records the submission as Pending; the re-fetch after
	// a successful submit must pick it up and close the gate.
	gw.afterSubmit = func(m *feeGatewayMock) {
		m.subs = []models.PaymentSubmission{
			{Amount: "3000", Status: models.SubmissionStatusPending},
		}
	}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("3000"))
	require.NoError(t, payment.MarkPaid())

	require.NoError(t, payment.Submit(context.Background(), " TXN123 "))

	require.Len(t, gw.submitted, 1)
	sent := gw.submitted[0]
	assert.Equal(t, "2024-25", sent.SessionID)
	assert.Equal(t, "S-42", sent.StudentID)
	assert.Equal(t, "10", sent.ClassID)
	assert.Equal(t, "A", sent.Section)
	assert.Equal(t, "3000", sent.Amount)
	assert.Equal(t, "UPI", sent.PaymentMode)
	assert.Equal(t, "2025-03-10", sent.PaymentDate)
	assert.Equal(t, "TXN123", sent.TransactionID)

	assert.Equal(t, PhaseSubmitted, payment.Phase())
	assert.Equal(t, Method(""), wf.SelectedMethod())
	assert.True(t, wf.IsPending())
	assert.False(t, wf.CanInitiatePayment())
}

func TestSubmitSurfacesGatewayError(t *testing.T) {
	gw := &feeGatewayMock{
		summary:   &models.FeeSummary{TotalFee: 5000},
		submitErr: appErrors.Clone(appErrors.ErrApplication, "failed to record submission"),
	}
	wf := newTestWorkflow(t, gw)
	require.NoError(t, wf.SelectMethod(MethodQR))
	payment, err := wf.StartPayment()
	require.NoError(t, err)
	require.NoError(t, payment.EnterAmount("3000"))
	require.NoError(t, payment.MarkPaid())

	err = payment.Submit(context.Background(), "TXN123")
	require.Error(t, err)
	assert.True(t, appErrors.Retryable(err))
	assert.Equal(t, PhaseTransactionIDEntry, payment.Phase())
}

func TestTotalPaidSkipsUnparsableRows(t *testing.T) {
	gw := &feeGatewayMock{
		summary: &models.FeeSummary{TotalFee: 5000},
		payments: []models.StudentPayment{
			{Amount: "1500.50"},
			{Amount: "n/a"},
			{Amount: " 500 "},
		},
	}
	wf := newTestWorkflow(t, gw)
	assert.InDelta(t, 2000.50, wf.TotalPaid(), 0.001)
}

func TestOverpaymentReportsNegativePending(t *testing.T) {
	gw := &feeGatewayMock{summary: &models.FeeSummary{TotalFee: 5000, Paid: 6000}}
	wf := newTestWorkflow(t, gw)
	assert.InDelta(t, -1000.0, wf.Pending(), 0.001)
}
