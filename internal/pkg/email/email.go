package email

import (
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/qs3c/zubari_server/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg  *config.EmailConfig
	send sendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Receipt is the content of a subscription receipt email.
type Receipt struct {
	PaymentReference    string
	Plan                string
	Amount              int64
	Currency            string
	SubscriptionExpires time.Time
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #16a34a;">Zubari Premium is active</h2>
        <p>Thank you for subscribing. Your payment has been received.</p>
        <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
            <tr><td>Reference</td><td><strong>{{.PaymentReference}}</strong></td></tr>
            <tr><td>Plan</td><td>{{.Plan}}</td></tr>
            <tr><td>Amount</td><td>{{.Currency}} {{.Amount}}</td></tr>
            <tr><td>Premium until</td><td>{{.SubscriptionExpires.Format "02 Jan 2006"}}</td></tr>
        </table>
        <p>You now have unlimited AI study tools.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`))

// SendReceipt emails a subscription receipt to to.
func (s *Service) SendReceipt(to string, r Receipt) error {
	var body strings.Builder
	if err := receiptTemplate.Execute(&body, r); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}

	return s.sendHTML(to, "Your Zubari Premium receipt", body.String())
}

func (s *Service) sendHTML(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	msg := buildMessage(s.cfg.From, to, subject, body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, []string{to}, msg)
}

func buildMessage(from, to, subject, body string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}
