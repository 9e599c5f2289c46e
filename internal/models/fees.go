package models

// FeeSummary is the fee position reported by the gateway for a student.
type FeeSummary struct {
	TotalFee float64 `json:"fee"`
	Discount float64 `json:"discount"`
	Paid     float64 `json:"paid"`
}

// Pending returns the unclamped outstanding amount. A negative value
// (over-payment) is a display anomaly, not an error.
func (f FeeSummary) Pending() float64 {
	return f.TotalFee - f.Discount - f.Paid
}

// StudentPayment is one verified historical payment.
type StudentPayment struct {
	SessionID   string `json:"sessionId"`
	StudentID   string `json:"sId"`
	ClassID     string `json:"classId"`
	Section     string `json:"section"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"paymentDate"`
	PaymentMode string `json:"paymentMode"`
	Remark      string `json:"remark"`
	StudentName string `json:"studentName"`
}

// SubmissionStatus tracks a payment submission through admin review.
// The client never transitions a submission itself; it only re-fetches.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "Pending"
	SubmissionStatusRejected SubmissionStatus = "Rejected"
	SubmissionStatusVerified SubmissionStatus = "Verified"
)

// PaymentSubmission is a client-initiated payment awaiting verification.
type PaymentSubmission struct {
	SessionID     string           `json:"sessionId"`
	StudentID     string           `json:"sId"`
	ClassID       string           `json:"classId"`
	Section       string           `json:"section"`
	Amount        string           `json:"amount"`
	PaymentDate   string           `json:"paymentDate"`
	PaymentMode   string           `json:"paymentMode"`
	TransactionID string           `json:"transactionId"`
	Status        SubmissionStatus `json:"status"`
}

// AnyPending reports whether any submission is still awaiting review.
// While true, new payment initiation is gated off.
func AnyPending(subs []PaymentSubmission) bool {
	for _, s := range subs {
		if s.Status == SubmissionStatusPending {
			return true
		}
	}
	return false
}
