package fees

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUPILinkEncoding(t *testing.T) {
	link := UPILink(testUPI(), 3000)

	assert.True(t, strings.HasPrefix(link, "upi://pay?"))
	// url.Values encodes keys alphabetically.
	assert.Equal(t, "upi://pay?am=3000.00&cu=INR&pa=school%40upi&pn=Test%20School&tn=Fee%20Payment", link)
}

func TestUPILinkAmountAlwaysTwoDecimals(t *testing.T) {
	link := UPILink(testUPI(), 2500.5)
	assert.Contains(t, link, "am=2500.50")
}

func TestUPILinkSpacesUsePercentTwenty(t *testing.T) {
	link := UPILink(testUPI(), 100)
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "pn=Test%20School")
}

func TestUPILinkRoundTripsThroughURLParser(t *testing.T) {
	link := UPILink(testUPI(), 750.25)
	u, err := url.Parse(link)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "school@upi", q.Get("pa"))
	assert.Equal(t, "Test School", q.Get("pn"))
	assert.Equal(t, "Fee Payment", q.Get("tn"))
	assert.Equal(t, "750.25", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
}

func TestQRCodePNGProducesPNG(t *testing.T) {
	png, err := QRCodePNG("upi://pay?am=100.00", DefaultQRSize)
	require.NoError(t, err)
	require.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestQRCodePNGDefaultsSize(t *testing.T) {
	png, err := QRCodePNG("upi://pay?am=100.00", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
