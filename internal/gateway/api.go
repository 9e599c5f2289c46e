package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sapientheights/mobile-core/internal/models"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// Endpoint names on the PHP gateway.
const (
	endpointStudentLogin      = "studentLogin.php"
	endpointTeacherLogin      = "teacherLogin.php"
	endpointSessions          = "getSessions.php"
	endpointTeacherClasses    = "getTeacherClasses.php"
	endpointAttendanceRoster  = "getAttendanceData.php"
	endpointSaveAttendance    = "saveAttendanceData.php"
	endpointStudentFee        = "getStdFee.php"
	endpointStudentPayments   = "getStdPayments.php"
	endpointSubmissionHistory = "getPaymentsSubmission.php"
	endpointSubmissionCreate  = "paymentSubmission.php"
)

// StudentQuery identifies a student's enrollment for fee endpoints.
type StudentQuery struct {
	SessionID string `json:"sessionId"`
	StudentID string `json:"sId"`
	ClassID   string `json:"classId"`
	Section   string `json:"section"`
}

// LoginResult carries the token and the raw identity blob; the session
// manager decodes the blob per user type.
type LoginResult struct {
	Token string
	User  json.RawMessage
}

type loginResponse struct {
	Envelope
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login authenticates against the role-specific endpoint.
func (c *Client) Login(ctx context.Context, userType models.UserType, loginID, password string, rememberMe bool) (*LoginResult, error) {
	endpoint := endpointTeacherLogin
	if userType == models.UserTypeStudent {
		endpoint = endpointStudentLogin
	}

	body := map[string]interface{}{
		"loginId":    loginID,
		"pass":       password,
		"rememberMe": rememberMe,
	}
	var res loginResponse
	if err := c.call(ctx, http.MethodPost, endpoint, body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrApplication, "login response missing token")
	}
	return &LoginResult{Token: res.Token, User: res.User}, nil
}

type sessionsResponse struct {
	Envelope
	SessionsData []models.Session `json:"sessionsData"`
}

// Sessions lists academic sessions.
func (c *Client) Sessions(ctx context.Context) ([]models.Session, error) {
	var res sessionsResponse
	if err := c.call(ctx, http.MethodGet, endpointSessions, nil, &res); err != nil {
		return nil, err
	}
	return res.SessionsData, nil
}

type teacherClassesResponse struct {
	Envelope
	TClassesData []models.TeacherClass `json:"tClassesData"`
}

// TeacherClasses lists the classes allotted to a teacher in a session.
func (c *Client) TeacherClasses(ctx context.Context, teacherID, sessionID string) ([]models.TeacherClass, error) {
	body := map[string]string{"tId": teacherID, "sessionId": sessionID}
	var res teacherClassesResponse
	if err := c.call(ctx, http.MethodPost, endpointTeacherClasses, body, &res); err != nil {
		return nil, err
	}
	return res.TClassesData, nil
}

type rosterResponse struct {
	Envelope
	AttData []models.AttendanceRecord `json:"attData"`
}

// AttendanceRoster fetches the roster for a scope. Records may come
// back without a status for students not yet marked.
func (c *Client) AttendanceRoster(ctx context.Context, scope models.AcademicScope) ([]models.AttendanceRecord, error) {
	var res rosterResponse
	if err := c.call(ctx, http.MethodPost, endpointAttendanceRoster, scope, &res); err != nil {
		return nil, err
	}
	return res.AttData, nil
}

type saveAttendanceRequest struct {
	AttData []models.AttendanceRecord `json:"attData"`
}

// SaveAttendance sends the full roster in one request. The server
// upserts by (student, date), so a resubmission converges to the same
// state.
func (c *Client) SaveAttendance(ctx context.Context, records []models.AttendanceRecord) error {
	var res Envelope
	return c.call(ctx, http.MethodPost, endpointSaveAttendance, saveAttendanceRequest{AttData: records}, &res)
}

type feeResponse struct {
	Envelope
	FeeData []models.FeeSummary `json:"feeData"`
}

// StudentFee fetches the fee summary for a student.
func (c *Client) StudentFee(ctx context.Context, q StudentQuery) (*models.FeeSummary, error) {
	var res feeResponse
	if err := c.call(ctx, http.MethodPost, endpointStudentFee, map[string]StudentQuery{"stdData": q}, &res); err != nil {
		return nil, err
	}
	if len(res.FeeData) == 0 {
		return nil, appErrors.Clone(appErrors.ErrApplication, "no fee data for student")
	}
	return &res.FeeData[0], nil
}

type paymentsResponse struct {
	Envelope
	PaymentsData []models.StudentPayment `json:"paymentsData"`
}

// StudentPayments fetches the verified payment history.
func (c *Client) StudentPayments(ctx context.Context, q StudentQuery) ([]models.StudentPayment, error) {
	var res paymentsResponse
	if err := c.call(ctx, http.MethodPost, endpointStudentPayments, map[string]StudentQuery{"stdData": q}, &res); err != nil {
		return nil, err
	}
	return res.PaymentsData, nil
}

type submissionsResponse struct {
	Envelope
	PaymentsData []models.PaymentSubmission `json:"paymentsData"`
}

// PaymentSubmissions fetches submissions awaiting or past review.
func (c *Client) PaymentSubmissions(ctx context.Context, q StudentQuery) ([]models.PaymentSubmission, error) {
	var res submissionsResponse
	if err := c.call(ctx, http.MethodPost, endpointSubmissionHistory, q, &res); err != nil {
		return nil, err
	}
	return res.PaymentsData, nil
}

// SubmissionPayload is the client-created submission sent for
// verification. Status is assigned server-side.
type SubmissionPayload struct {
	SessionID     string `json:"sessionId"`
	StudentID     string `json:"sId"`
	ClassID       string `json:"classId"`
	Section       string `json:"section"`
	Amount        string `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	PaymentDate   string `json:"paymentDate"`
	TransactionID string `json:"transactionId"`
}

// SubmitPayment creates a submission for admin verification.
func (c *Client) SubmitPayment(ctx context.Context, payload SubmissionPayload) error {
	var res Envelope
	return c.call(ctx, http.MethodPost, endpointSubmissionCreate, map[string]SubmissionPayload{"paymentData": payload}, &res)
}
