package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"go.uber.org/zap"

	"github.com/sapientheights/mobile-core/internal/gateway"
	"github.com/sapientheights/mobile-core/internal/models"
	"github.com/sapientheights/mobile-core/internal/session"
	"github.com/sapientheights/mobile-core/internal/store"
	"github.com/sapientheights/mobile-core/pkg/config"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
	"github.com/sapientheights/mobile-core/pkg/logger"
)

const usage = `usage: schoolapp <command>

commands:
  login       sign in to the student or teacher portal
  logout      clear the stored session
  attendance  select a class scope and mark attendance (teacher)
  payfee      view fee position and submit a payment (student)
  receipt     export the payment history as a PDF (student)
`

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Store
	client *gateway.Client
	sess   *session.Manager
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	st, err := store.Open(cfg.Store)
	if err != nil {
		logr.Sugar().Fatalw("failed to open session store", "backend", cfg.Store.Backend, "error", err)
	}
	defer st.Close() //nolint:errcheck

	metrics := gateway.NewMetrics(nil)
	client := gateway.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logr, gateway.WithMetrics(metrics))
	sess := session.NewManager(st, client, nil, logr)
	client.SetTokenSource(sess)

	a := &app{cfg: cfg, logger: logr, store: st, client: client, sess: sess}

	// Cancelling the context abandons any in-flight fetch; nothing is
	// written into a discarded workflow afterwards.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "login":
		err = a.runLogin(ctx)
	case "logout":
		err = a.sess.Logout(ctx)
		if err == nil {
			fmt.Println("Signed out.")
		}
	case "attendance":
		err = a.runAttendance(ctx)
	case "payfee":
		err = a.runPayFee(ctx)
	case "receipt":
		err = a.runReceipt(ctx)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}

	if err != nil {
		notify(err)
		os.Exit(1)
	}
}

func (a *app) runLogin(ctx context.Context) error {
	var userType string
	if err := survey.AskOne(&survey.Select{
		Message: "Portal:",
		Options: []string{string(models.UserTypeTeacher), string(models.UserTypeStudent)},
	}, &userType); err != nil {
		return err
	}

	answers := struct {
		LoginID    string
		Password   string
		RememberMe bool
	}{}
	qs := []*survey.Question{
		{Name: "loginID", Prompt: &survey.Input{Message: "Login ID:"}, Validate: survey.Required},
		{Name: "password", Prompt: &survey.Password{Message: "Password:"}, Validate: survey.Required},
		{Name: "rememberMe", Prompt: &survey.Confirm{Message: "Remember me?", Default: true}},
	}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	err := a.sess.Login(ctx, session.LoginRequest{
		UserType:   models.UserType(userType),
		LoginID:    answers.LoginID,
		Password:   answers.Password,
		RememberMe: answers.RememberMe,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Signed in to %s.\n", a.cfg.SchoolName)
	return nil
}

// notify prints an error the way the app toasts one: validation
// errors ask for corrected input, everything else invites a retry.
func notify(err error) {
	e := appErrors.FromError(err)
	if appErrors.Retryable(err) {
		fmt.Fprintf(os.Stderr, "Error: %s. Please try again.\n", e.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", e.Message)
}
