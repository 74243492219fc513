// internal/mailer/smtp_test.go
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/outreach-backend/internal/config"
)

func TestClassifyReplyCodes(t *testing.T) {
	cases := []struct {
		code int
		msg  string
		want string
	}{
		{421, "service not available, try later", CodeTempRateLimited},
		{450, "mailbox busy", CodeMailboxUnavailable},
		{452, "insufficient storage", CodeMailboxUnavailable},
		{552, "message too large", CodeMailboxUnavailable},
		{451, "local error in processing", CodeTransactionFailed},
		{554, "transaction failed", CodeTransactionFailed},
		{530, "authentication required", CodeAuthError},
		{535, "authentication credentials invalid", CodeAuthError},
		{550, "no such user here", CodeInvalidRecipient},
		{551, "user not local", CodeInvalidRecipient},
		{553, "mailbox name not allowed", CodeInvalidRecipient},
		{501, "HELO requires domain address", CodeHeloError},
		{503, "bad sequence: DATA before RCPT", CodeDataError},
		{500, "command unrecognized", CodeSMTPError},
		{471, "some 4xx condition", CodeSMTPError},
	}
	for _, tc := range cases {
		err := &textproto.Error{Code: tc.code, Msg: tc.msg}
		assert.Equal(t, tc.want, Classify(err), "code %d", tc.code)
	}
}

func TestClassifyWrappedReplyCode(t *testing.T) {
	err := fmt.Errorf("send failed: %w", &textproto.Error{Code: 535, Msg: "bad credentials"})
	assert.Equal(t, CodeAuthError, Classify(err))
}

func TestClassifyNetworkErrors(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	assert.Equal(t, CodeConnectError, Classify(opErr))

	assert.Equal(t, CodeConnectError, Classify(errors.New("dial tcp 10.0.0.1:587: i/o timeout")))
	assert.Equal(t, CodeConnectError, Classify(errors.New("lookup smtp.example.com: no such host")))
}

func TestClassifyStringFallbacks(t *testing.T) {
	assert.Equal(t, CodeAuthError, Classify(errors.New("auth mechanism rejected")))
	assert.Equal(t, CodeHeloError, Classify(errors.New("EHLO not accepted")))
	assert.Equal(t, CodeSMTPError, Classify(errors.New("unexpected smtp response")))
	assert.Equal(t, CodeSendError, Classify(errors.New("something else entirely")))
	assert.Equal(t, "", Classify(nil))
}

func TestSendWithoutCredentials(t *testing.T) {
	m := NewSMTPMailer(config.SMTP{Host: "smtp.example.com", Port: 587})

	err := m.Send("alice@example.com", "Hi", "body", nil, false)
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, CodeMissingSenderCreds, sendErr.Code)
}

func TestSendErrorUnwrap(t *testing.T) {
	inner := &textproto.Error{Code: 550, Msg: "no such user"}
	err := &SendError{Code: CodeInvalidRecipient, Err: inner}

	var tpErr *textproto.Error
	require.ErrorAs(t, err, &tpErr)
	assert.Equal(t, 550, tpErr.Code)
	assert.Contains(t, err.Error(), CodeInvalidRecipient)
}
