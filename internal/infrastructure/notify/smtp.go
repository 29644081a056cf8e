package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier envía eventos de negocio por correo a una lista fija de
// destinatarios (revisores y compras).
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

// NewSMTPNotifier construye el notificador SMTP.
func NewSMTPNotifier(host string, port int, username, password, from string, to []string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

// Send envía el correo. Respeta la cancelación del contexto antes de marcar.
func (s *SMTPNotifier) Send(ctx context.Context, n ports.Notification) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s", n.Event, n.EntityID))
	m.SetBody("text/plain", n.Message)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar correo: %w", err)
	}
	return nil
}
