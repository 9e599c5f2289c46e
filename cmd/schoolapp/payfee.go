package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/AlecAivazis/survey/v2"

	"github.com/sapientheights/mobile-core/internal/fees"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
	"github.com/sapientheights/mobile-core/pkg/export"
)

// execDispatcher opens deep links with the desktop URL handler. A
// missing handler is reported, not fatal.
type execDispatcher struct{}

func (execDispatcher) OpenURL(ctx context.Context, link string) error {
	return exec.CommandContext(ctx, "xdg-open", link).Start()
}

func (a *app) feeWorkflow(ctx context.Context) (*fees.Workflow, error) {
	if !a.sess.TokenValid(ctx) {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "please log in first")
	}
	student, err := a.sess.CurrentStudent(ctx)
	if err != nil {
		return nil, err
	}

	wf := fees.NewWorkflow(a.client, *student, a.cfg.UPI, nil, a.logger, nil)
	if err := wf.Load(ctx); err != nil {
		return nil, err
	}
	for _, notice := range wf.Notices() {
		notify(notice)
	}
	return wf, nil
}

func (a *app) runPayFee(ctx context.Context) error {
	wf, err := a.feeWorkflow(ctx)
	if err != nil {
		return err
	}

	printFeePosition(wf)

	if !wf.CanInitiatePayment() {
		fmt.Println("\nPay Now is disabled: wait for pending approvals.")
		return nil
	}

	var proceed bool
	if err := survey.AskOne(&survey.Confirm{Message: "Pay now?", Default: true}, &proceed); err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	var method string
	if err := survey.AskOne(&survey.Select{
		Message: "Payment method:",
		Options: []string{string(fees.MethodQR), string(fees.MethodUPI)},
	}, &method); err != nil {
		return err
	}
	if err := wf.SelectMethod(fees.Method(method)); err != nil {
		return err
	}

	payment, err := wf.StartPayment()
	if err != nil {
		return err
	}

	for {
		var amount string
		if err := survey.AskOne(&survey.Input{Message: "Enter amount:"}, &amount); err != nil {
			return err
		}
		if err := payment.EnterAmount(amount); err != nil {
			notify(err)
			continue
		}
		break
	}

	link, err := payment.IntentLink()
	if err != nil {
		return err
	}

	switch payment.Method() {
	case fees.MethodQR:
		path := "upi_qr.png"
		if err := fees.WriteQRCode(link, path); err != nil {
			notify(err)
		} else {
			fmt.Printf("Scan the code saved to %s to pay.\n", path)
		}
	case fees.MethodUPI:
		if err := payment.OpenUPIApp(ctx, execDispatcher{}); err != nil {
			notify(err)
		}
	}

	var paid bool
	if err := survey.AskOne(&survey.Confirm{Message: "I have paid", Default: false}, &paid); err != nil {
		return err
	}
	if !paid {
		return nil
	}
	if err := payment.MarkPaid(); err != nil {
		return err
	}

	for {
		var txnID string
		if err := survey.AskOne(&survey.Input{Message: "Transaction ID:"}, &txnID); err != nil {
			return err
		}
		if err := payment.Submit(ctx, txnID); err != nil {
			notify(err)
			if appErrors.IsKind(err, appErrors.KindValidation) {
				continue
			}
			return nil
		}
		break
	}

	fmt.Println("Payment submitted. Awaiting admin verification.")
	return nil
}

func (a *app) runReceipt(ctx context.Context) error {
	wf, err := a.feeWorkflow(ctx)
	if err != nil {
		return err
	}

	data := export.PaymentHistoryDataset(wf.History(), wf.TotalPaid())
	pdf, err := export.NewPDFExporter().Render(data, a.cfg.SchoolName+" fee payment history")
	if err != nil {
		return err
	}

	path := "fee_payments.pdf"
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	fmt.Printf("Payment history exported to %s.\n", path)
	return nil
}

func printFeePosition(wf *fees.Workflow) {
	summary := wf.Summary()
	fmt.Printf("\nTotal Fees: %.2f  Discount: %.2f  Paid: %.2f\n", summary.TotalFee, summary.Discount, summary.Paid)
	fmt.Printf("Pending Amount: %.2f\n", wf.Pending())

	if history := wf.History(); len(history) > 0 {
		fmt.Println("\nFee Payment History:")
		for _, p := range history {
			fmt.Printf("  %s  %s (%s)\n", p.PaymentDate, p.Amount, p.PaymentMode)
		}
		fmt.Printf("  Total Paid: %.2f\n", wf.TotalPaid())
	}

	if subs := wf.Submissions(); len(subs) > 0 {
		fmt.Println("\nPayment Submissions:")
		for _, s := range subs {
			fmt.Printf("  %s  %s  txn %s  [%s]\n", s.PaymentDate, s.Amount, s.TransactionID, s.Status)
		}
	}
}
