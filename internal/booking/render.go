package booking

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/orbitlive/transit-notifier/internal/db"
)

// ConfirmationSMS renders the confirmation text message for a booking.
func ConfirmationSMS(user *db.User, b *db.Booking) string {
	return fmt.Sprintf(
		"Hi %s, your %s from %s to %s on %s is confirmed. Fare: ₹%.2f. Thank you for choosing Orbit Live!",
		firstName(user), b.TransitType, b.Source, b.Destination,
		b.TravelDate.Format("Mon, 02 Jan 2006"), b.Fare,
	)
}

// ConfirmationSubject renders the confirmation email subject line.
func ConfirmationSubject(b *db.Booking) string {
	return fmt.Sprintf("Your %s is confirmed!", b.TransitType)
}

func firstName(user *db.User) string {
	if user.FirstName != nil && *user.FirstName != "" {
		return *user.FirstName
	}
	return "there"
}

type emailData struct {
	FirstName   string
	BookingID   string
	TransitType string
	Source      string
	Destination string
	TravelDate  string
	Fare        string
	QRImageURL  string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Booking Confirmation</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #006064; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .booking-details { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; }
        .qr-code { text-align: center; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Orbit Live</h1>
            <p>Your Booking is Confirmed!</p>
        </div>

        <div class="content">
            <h2>Hello {{.FirstName}},</h2>
            <p>Thank you for choosing Orbit Live. Your {{.TransitType}} has been successfully booked.</p>

            <div class="booking-details">
                <h3>Booking Details</h3>
                <p><strong>Booking ID:</strong> {{.BookingID}}</p>
                <p><strong>Route:</strong> {{.Source}} to {{.Destination}}</p>
                <p><strong>Date:</strong> {{.TravelDate}}</p>
                <p><strong>Fare:</strong> ₹{{.Fare}}</p>
                <p><strong>Status:</strong> Confirmed</p>
            </div>
{{if .QRImageURL}}
            <div class="qr-code">
                <h3>Your QR Code</h3>
                <img src="{{.QRImageURL}}" alt="QR Code">
                <p>Please show this QR code at the bus entrance</p>
            </div>
{{end}}
            <p>If you have any questions, please contact our support team.</p>
            <p>Have a safe journey!</p>
        </div>

        <div class="footer">
            <p>© 2026 Orbit Live. All rights reserved.</p>
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`))

// ConfirmationEmailHTML renders the confirmation email body. When the
// booking carries a QR payload the document embeds a generated QR image.
func ConfirmationEmailHTML(user *db.User, b *db.Booking) (string, error) {
	data := emailData{
		FirstName:   firstName(user),
		BookingID:   b.ID.String(),
		TransitType: b.TransitType,
		Source:      b.Source,
		Destination: b.Destination,
		TravelDate:  b.TravelDate.Format("02/01/2006"),
		Fare:        fmt.Sprintf("%.2f", b.Fare),
	}

	if b.QRCode != nil && *b.QRCode != "" {
		data.QRImageURL = fmt.Sprintf(
			"https://api.qrserver.com/v1/create-qr-code/?data=%s&size=200x200",
			url.QueryEscape(*b.QRCode),
		)
	}

	var sb strings.Builder
	if err := confirmationTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}

	return sb.String(), nil
}
