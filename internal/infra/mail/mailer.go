package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// BookingConfirmation carries everything the confirmation mail template needs.
type BookingConfirmation struct {
	BookingID     uint
	GuestName     string
	GuestEmail    string
	ApartmentName string
	UnitNo        string
	CheckIn       time.Time
	CheckOut      time.Time
	Days          int
	GrandTotal    decimal.Decimal
	AmountPaid    decimal.Decimal
	Currency      string
}

func (c BookingConfirmation) Balance() decimal.Decimal {
	return c.GrandTotal.Sub(c.AmountPaid)
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BCC      string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Booking Confirmed</h2>
<p>Dear {{.GuestName}},</p>
<p>Your booking <strong>#{{.BookingID}}</strong> at {{.ApartmentName}}{{if .UnitNo}} (unit {{.UnitNo}}){{end}} is confirmed.</p>
<table>
  <tr><td>Check-in</td><td>{{.CheckIn.Format "02 Jan 2006 15:04"}}</td></tr>
  <tr><td>Check-out</td><td>{{.CheckOut.Format "02 Jan 2006 15:04"}}</td></tr>
  <tr><td>Nights billed</td><td>{{.Days}}</td></tr>
  <tr><td>Total</td><td>{{.GrandTotal}} {{.Currency}}</td></tr>
  <tr><td>Paid</td><td>{{.AmountPaid}} {{.Currency}}</td></tr>
  <tr><td>Balance due</td><td>{{.Balance}} {{.Currency}}</td></tr>
</table>
<p>We look forward to welcoming you.</p>
`))

// SendBookingConfirmation renders and sends the confirmation mail. The BCC
// copy, when configured, gives the office a paper trail.
func (m *Mailer) SendBookingConfirmation(data BookingConfirmation) error {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("mail: render confirmation: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", data.GuestEmail)
	if m.BCC != "" {
		msg.SetHeader("Bcc", m.BCC)
	}
	msg.SetHeader("Subject", fmt.Sprintf("Booking #%d confirmed", data.BookingID))
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: send confirmation: %w", err)
	}
	return nil
}
