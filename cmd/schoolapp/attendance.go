package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/sapientheights/mobile-core/internal/attendance"
	"github.com/sapientheights/mobile-core/internal/models"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

func (a *app) runAttendance(ctx context.Context) error {
	if !a.sess.TokenValid(ctx) {
		return appErrors.Clone(appErrors.ErrNotAuthenticated, "please log in first")
	}
	teacher, err := a.sess.CurrentTeacher(ctx)
	if err != nil {
		return err
	}

	selector, classes, err := a.buildSelector(ctx, teacher)
	if err != nil {
		return err
	}
	if err := selector.Confirm(ctx, a.store); err != nil {
		return err
	}

	wf := attendance.NewWorkflow(a.client, a.store, teacher.EmailID, nil, a.logger)
	if err := wf.Load(ctx); err != nil {
		return err
	}

	return a.markLoop(ctx, wf, classes)
}

func (a *app) buildSelector(ctx context.Context, teacher *models.TeacherProfile) (*attendance.Selector, []models.TeacherClass, error) {
	sessions, err := a.client.Sessions(ctx)
	if err != nil {
		return nil, nil, err
	}
	sessionIDs := make([]string, len(sessions))
	for i, s := range sessions {
		sessionIDs[i] = s.SessionID
	}

	selector := attendance.NewSelector(attendance.ActiveSession(sessions), a.cfg.Attendance.MaxPastDays, nil)

	var sessionID string
	if err := survey.AskOne(&survey.Select{
		Message: "Session:",
		Options: sessionIDs,
		Default: selector.Scope().SessionID,
	}, &sessionID); err != nil {
		return nil, nil, err
	}
	selector.ChooseSession(sessionID)

	classes, err := a.client.TeacherClasses(ctx, teacher.TeacherID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	classOptions := attendance.ClassOptions(classes)
	if len(classOptions) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "no classes allotted in this session")
	}

	var classID string
	if err := survey.AskOne(&survey.Select{Message: "Class:", Options: classOptions}, &classID); err != nil {
		return nil, nil, err
	}
	selector.ChooseClass(classID)

	var section string
	if err := survey.AskOne(&survey.Select{
		Message: "Section:",
		Options: attendance.SectionsFor(classes, classID),
	}, &section); err != nil {
		return nil, nil, err
	}
	selector.ChooseSection(section)

	var date string
	if err := survey.AskOne(&survey.Input{
		Message: "Date (YYYY-MM-DD):",
		Default: selector.Scope().Date,
	}, &date); err != nil {
		return nil, nil, err
	}
	if d, err := time.Parse(attendance.DateLayout, date); err == nil {
		selector.ChooseDate(d)
	} else {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date format, expected YYYY-MM-DD")
	}

	return selector, classes, nil
}

func (a *app) markLoop(ctx context.Context, wf *attendance.Workflow, _ []models.TeacherClass) error {
	scope := wf.Scope()
	fmt.Printf("\n%s — %s / %s on %s (%d students)\n\n",
		a.cfg.SchoolName, scope.ClassID, scope.Section, scope.Date, len(wf.Roster()))

	for {
		options := make([]string, 0, len(wf.Roster())+1)
		for _, rec := range wf.Roster() {
			options = append(options, fmt.Sprintf("%s — %s", rec.StudentName, rec.Status.Label()))
		}
		options = append(options, wf.SaveLabel())

		var pick int
		if err := survey.AskOne(&survey.Select{
			Message:  "Edit a student, or save:",
			Options:  options,
			PageSize: 15,
		}, &pick); err != nil {
			return err
		}

		if pick == len(wf.Roster()) {
			if err := wf.Save(ctx); err != nil {
				return err
			}
			fmt.Println("Attendance saved! Your attendance has been successfully updated.")
			return nil
		}

		record := wf.Roster()[pick]
		var label string
		if err := survey.AskOne(&survey.Select{
			Message: fmt.Sprintf("Status for %s:", record.StudentName),
			Options: []string{"Present", "Absent", "Leave"},
			Default: record.Status.Label(),
		}, &label); err != nil {
			return err
		}
		if err := wf.SetStatus(record.StudentID, models.StatusFromLabel(label)); err != nil {
			return err
		}
	}
}
