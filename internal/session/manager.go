package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sapientheights/mobile-core/internal/gateway"
	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/internal/store"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

type loginGateway interface {
	Login(ctx context.Context, userType models.UserType, loginID, password string, rememberMe bool) (*gateway.LoginResult, error)
}

// Manager owns the persisted identity: token and user blob written at
// login, read at every screen mount, cleared at logout.
type Manager struct {
	store     store.Store
	gw        loginGateway
	validator *validator.Validate
	logger    *zap.Logger
}

// NewManager constructs a session manager over the given store.
func NewManager(st store.Store, gw loginGateway, validate *validator.Validate, logger *zap.Logger) *Manager {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: st, gw: gw, validator: validate, logger: logger}
}

// LoginRequest is the credential payload for either portal.
type LoginRequest struct {
	UserType   models.UserType `validate:"required,oneof=student teacher"`
	LoginID    string          `validate:"required"`
	Password   string          `validate:"required"`
	RememberMe bool
}

// Login authenticates and persists the identity. The raw user blob is
// stored as received so each portal decodes its own shape later.
func (m *Manager) Login(ctx context.Context, req LoginRequest) error {
	if err := m.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.KindValidation, "invalid login payload")
	}

	result, err := m.gw.Login(ctx, req.UserType, req.LoginID, req.Password, req.RememberMe)
	if err != nil {
		return err
	}

	if err := m.store.Set(ctx, store.KeyAuthToken, []byte(result.Token)); err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyUserData, result.User); err != nil {
		return err
	}

	m.logger.Info("login", zap.String("user_type", string(req.UserType)))
	return nil
}

// Logout clears every persisted key, including any attendance scope
// handoff left behind.
func (m *Manager) Logout(ctx context.Context) error {
	var firstErr error
	for _, key := range []string{store.KeyAuthToken, store.KeyUserData, store.KeyAcademicData} {
		if err := m.store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	m.logger.Info("logout")
	return nil
}

// Token returns the persisted bearer token. Implements
// gateway.TokenSource; an absent token reads as empty, not an error.
func (m *Manager) Token(ctx context.Context) (string, error) {
	raw, err := m.store.Get(ctx, store.KeyAuthToken)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}

// TokenValid reports whether a token is present and, when it carries an
// exp claim, not yet expired. The client holds no signing secret, so
// the claim is inspected without verification; the gateway remains the
// authority.
func (m *Manager) TokenValid(ctx context.Context) bool {
	token, err := m.Token(ctx)
	if err != nil || token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Opaque tokens pass through; the gateway will reject stale ones.
		return true
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return true
	}
	return expiry.After(time.Now())
}

// CurrentTeacher decodes the persisted identity as a teacher profile.
func (m *Manager) CurrentTeacher(ctx context.Context) (*models.TeacherProfile, error) {
	raw, err := m.userData(ctx)
	if err != nil {
		return nil, err
	}
	var profile models.TeacherProfile
	if err := json.Unmarshal(raw, &profile); err != nil || profile.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "no teacher session")
	}
	return &profile, nil
}

// CurrentStudent decodes the persisted identity as a student profile.
func (m *Manager) CurrentStudent(ctx context.Context) (*models.StudentProfile, error) {
	raw, err := m.userData(ctx)
	if err != nil {
		return nil, err
	}
	var profile models.StudentProfile
	if err := json.Unmarshal(raw, &profile); err != nil || profile.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "no student session")
	}
	return &profile, nil
}

func (m *Manager) userData(ctx context.Context) ([]byte, error) {
	raw, err := m.store.Get(ctx, store.KeyUserData)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
		}
		return nil, err
	}
	return raw, nil
}
