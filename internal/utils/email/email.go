package email

import (
	"fmt"
	"net/smtp"

	"github.com/finly/finance-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendOverdueNotice sends a summary of a user's overdue savings installments
func (s *Sender) SendOverdueNotice(to, username string, overdueCount int, amountDue float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Overdue Savings Installments"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"You have %d overdue installment(s) on your savings goals, totaling %.2f.\n"+
			"Paying them keeps your savings plan on track.\n"+
			"\nBest regards,\nFinance Service",
		username, overdueCount, amountDue,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
