package fees

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sapientheights/mobile-core/pkg/config"
	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// DefaultQRSize is the rendered QR code edge in pixels.
const DefaultQRSize = 256

// IntentDispatcher opens a deep link with whatever the platform uses
// for URL intents. Failure means no handler app, which is a non-fatal
// notification, never a workflow state change.
type IntentDispatcher interface {
	OpenURL(ctx context.Context, link string) error
}

// UPILink builds the upi://pay deep link for the given amount. The
// same link backs both the QR code and the app intent.
func UPILink(cfg config.UPIConfig, amount float64) string {
	values := url.Values{}
	values.Set("pa", cfg.PayeeAddress)
	values.Set("pn", cfg.PayeeName)
	values.Set("tn", cfg.Purpose)
	values.Set("am", fmt.Sprintf("%.2f", amount))
	values.Set("cu", cfg.Currency)

	// UPI handlers expect %20 for spaces, not the form-encoding plus.
	return "upi://pay?" + strings.ReplaceAll(values.Encode(), "+", "%20")
}

// QRCodePNG renders the deep link as a scannable PNG.
func QRCodePNG(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// WriteQRCode saves the rendered code to disk, the download/share
// analog. Pure side effect; workflow state is untouched.
func WriteQRCode(link, path string) error {
	png, err := QRCodePNG(link, DefaultQRSize)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "failed to render qr image")
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "failed to write qr image")
	}
	return nil
}
