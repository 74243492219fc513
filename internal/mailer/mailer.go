// internal/mailer/mailer.go
package mailer

import "fmt"

// Reason codes recorded on a failed delivery. Transport failures map to
// one of these; send_error is the catch-all.
const (
	CodeAuthError          = "auth_error"
	CodeInvalidRecipient   = "invalid_recipient"
	CodeSenderRefused      = "sender_refused"
	CodeTempRateLimited    = "temp_rate_limited"
	CodeMailboxUnavailable = "mailbox_unavailable"
	CodeTransactionFailed  = "transaction_failed"
	CodeDataError          = "data_error"
	CodeConnectError       = "connect_error"
	CodeHeloError          = "helo_error"
	CodeSMTPError          = "smtp_error"
	CodeMissingSenderCreds = "missing_sender_creds"
	CodeSendError          = "send_error"
)

// SendError is a transport failure classified with a reason code.
type SendError struct {
	Code string
	Err  error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Mailer attempts delivery of one rendered message. A nil return means the
// message was accepted by the transport; any error carries a reason code
// the repository records on the delivery.
type Mailer interface {
	Send(to, subject, body string, attachments []string, isHTML bool) error
}
