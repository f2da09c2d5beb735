package notification

import (
	"bytes"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, password: password, from: from}
}

func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.user, m.password)
	return d.DialAndSend(msg)
}

// LogMailer is used when no SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(to []string, subject, _ string) error {
	m.log.Info("mail not sent, SMTP disabled", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

// SupplierEnquiryLine is one requested part in a supplier enquiry mail.
type SupplierEnquiryLine struct {
	PartNumber string
	PartDesc   string
	Quantity   string
	Delivery   string
}

type SupplierEnquiryMail struct {
	EnquiryNo    string
	SupplierName string
	SenderName   string
	Lines        []SupplierEnquiryLine
}

var supplierEnquiryTmpl = template.Must(template.New("supplier_enquiry").Parse(`
<html>
	<body>
		<p>Dear {{.SupplierName}},</p>
		<p>Please quote your best price and delivery for enquiry <strong>{{.EnquiryNo}}</strong>:</p>
		<table border="1" cellpadding="4" cellspacing="0">
			<tr><th>Part Number</th><th>Description</th><th>Quantity</th><th>Delivery</th></tr>
			{{range .Lines}}<tr><td>{{.PartNumber}}</td><td>{{.PartDesc}}</td><td>{{.Quantity}}</td><td>{{.Delivery}}</td></tr>
			{{end}}
		</table>
		<p>Regards,<br>{{.SenderName}}</p>
		<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
	</body>
</html>`))

func RenderSupplierEnquiry(m SupplierEnquiryMail) (string, error) {
	var buf bytes.Buffer
	if err := supplierEnquiryTmpl.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}
