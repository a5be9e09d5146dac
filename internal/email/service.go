package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ricardo-ochoa/implaeden-backend/internal/config"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
)

type Sender interface {
	SendPaymentReceipt(ctx context.Context, to string, payment *model.PaymentView) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) SendPaymentReceipt(ctx context.Context, to string, payment *model.PaymentView) error {
	tratamiento := "Sin tratamiento asignado"
	if payment.Tratamiento != nil {
		tratamiento = *payment.Tratamiento
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Recibo de pago %s", payment.NumeroFactura))
	m.SetBody("text/html", fmt.Sprintf(`
		<h2>Recibo de pago</h2>
		<p><strong>Factura:</strong> %s</p>
		<p><strong>Fecha:</strong> %s</p>
		<p><strong>Tratamiento:</strong> %s</p>
		<p><strong>Monto:</strong> $%.2f</p>
	`, payment.NumeroFactura, payment.Fecha.Format("2006-01-02"), tratamiento, payment.Monto))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}
	return nil
}
