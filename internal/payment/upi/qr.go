package upi

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// PaymentURI builds a upi://pay deep link for the given payee and amount.
// Any UPI app (GPay, PhonePe, Paytm) resolves it into a prefilled transfer.
func PaymentURI(upiID, payeeName string, amount float64) string {
	v := url.Values{}
	v.Set("pa", upiID)
	v.Set("pn", payeeName)
	if amount > 0 {
		v.Set("am", fmt.Sprintf("%.2f", amount))
	}
	v.Set("cu", "INR")
	return "upi://pay?" + v.Encode()
}

// QRCode renders the payment URI as a PNG of the given pixel size.
func QRCode(upiID, payeeName string, amount float64, size int) ([]byte, error) {
	uri := PaymentURI(upiID, payeeName, amount)
	return qrcode.Encode(uri, qrcode.Medium, size)
}
