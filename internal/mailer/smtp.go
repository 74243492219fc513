// internal/mailer/smtp.go
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/unclebandit/outreach-backend/internal/config"
)

// SMTPMailer sends through a plain-auth SMTP account.
type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string, attachments []string, isHTML bool) error {
	if m.cfg.Username == "" || m.cfg.Password == "" || m.cfg.From == "" {
		return &SendError{Code: CodeMissingSenderCreds, Err: errors.New("smtp credentials not configured")}
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	if isHTML {
		e.HTML = []byte(body)
	} else {
		e.Text = []byte(body)
	}

	for _, path := range attachments {
		if _, err := e.AttachFile(path); err != nil {
			return &SendError{Code: CodeSendError, Err: fmt.Errorf("attach %s: %w", path, err)}
		}
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := e.Send(addr, auth); err != nil {
		return &SendError{Code: Classify(err), Err: err}
	}
	return nil
}

// Classify maps a raw SMTP/network error to a reason code. Server replies
// are classified by their SMTP reply code; everything that never reached
// the server is a connect error; unknown SMTP failures fall back to
// smtp_error and non-SMTP failures to send_error.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return classifyReplyCode(tpErr.Code, tpErr.Msg)
	}

	var netErr net.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.As(err, &netErr) {
		return CodeConnectError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "dial") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host"):
		return CodeConnectError
	case strings.Contains(msg, "auth"):
		return CodeAuthError
	case strings.Contains(msg, "helo") || strings.Contains(msg, "ehlo"):
		return CodeHeloError
	case strings.Contains(msg, "smtp"):
		return CodeSMTPError
	default:
		return CodeSendError
	}
}

func classifyReplyCode(code int, msg string) string {
	switch code {
	case 421:
		return CodeTempRateLimited
	case 450, 452:
		return CodeMailboxUnavailable
	case 451:
		return CodeTransactionFailed
	case 530, 534, 535, 538:
		return CodeAuthError
	case 550, 551, 553:
		return CodeInvalidRecipient
	case 552:
		return CodeMailboxUnavailable
	case 554:
		return CodeTransactionFailed
	case 500, 501, 502, 503:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "helo") || strings.Contains(lower, "ehlo") {
			return CodeHeloError
		}
		if strings.Contains(lower, "data") {
			return CodeDataError
		}
		return CodeSMTPError
	default:
		if code >= 400 {
			return CodeSMTPError
		}
		return CodeSendError
	}
}

var _ Mailer = (*SMTPMailer)(nil)
