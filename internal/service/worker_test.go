// internal/service/worker_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/mailer"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

type mockWorkerRepo struct {
	due       []*model.Delivery
	campaigns map[string]*model.Campaign
	outcomes  map[string]repository.Outcome
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{
		campaigns: map[string]*model.Campaign{},
		outcomes:  map[string]repository.Outcome{},
	}
}

func (m *mockWorkerRepo) GetDueDeliveries(now time.Time) ([]*model.Delivery, error) {
	return m.due, nil
}

func (m *mockWorkerRepo) GetByID(id string) (*model.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (m *mockWorkerRepo) ReportOutcome(deliveryID string, outcome repository.Outcome) error {
	if _, dup := m.outcomes[deliveryID]; dup {
		return appErrors.NewDeliveryNotPending(deliveryID, "sent")
	}
	m.outcomes[deliveryID] = outcome
	return nil
}

type mockMailer struct {
	err   error
	panic bool
	sent  []string // recipients, in order
}

func (m *mockMailer) Send(to, subject, body string, attachments []string, isHTML bool) error {
	if m.panic {
		panic("mailer exploded")
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func testCampaign() *model.Campaign {
	return &model.Campaign{
		ID:           "c1",
		Subject:      "Hello",
		Body:         "Hi {name}, this is {my_name}.",
		AddSignature: true,
		SenderProfile: model.SenderSnapshot{
			Name:      "Sam",
			Signature: "Sam\nACME",
		},
	}
}

func testDelivery() *model.Delivery {
	return &model.Delivery{
		ID:             "d1",
		CampaignID:     "c1",
		RecipientEmail: "alice@example.com",
		RecipientSnapshot: &model.RecipientSnapshot{
			Name:  "Alice",
			Email: "alice@example.com",
		},
		Status: model.DeliveryPending,
	}
}

func newTestWorker(repo WorkerRepository, m mailer.Mailer) *Worker {
	return NewWorker(repo, m, nil, time.Minute, zerolog.Nop())
}

func TestWorkerSendsAndReportsRenderedBody(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.campaigns["c1"] = testCampaign()
	repo.due = []*model.Delivery{testDelivery()}
	m := &mockMailer{}

	newTestWorker(repo, m).Poll(context.Background())

	require.Equal(t, []string{"alice@example.com"}, m.sent)
	outcome, ok := repo.outcomes["d1"]
	require.True(t, ok)
	assert.True(t, outcome.Sent)
	assert.Equal(t, "Hi Alice, this is Sam.\n\n--\nSam\nACME", outcome.RenderedBody)
}

func TestWorkerRecordsTransportFailureCode(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.campaigns["c1"] = testCampaign()
	repo.due = []*model.Delivery{testDelivery()}
	m := &mockMailer{err: &mailer.SendError{Code: mailer.CodeInvalidRecipient, Err: errors.New("550 no such user")}}

	newTestWorker(repo, m).Poll(context.Background())

	outcome := repo.outcomes["d1"]
	assert.False(t, outcome.Sent)
	assert.Equal(t, mailer.CodeInvalidRecipient, outcome.Reason)
}

func TestWorkerUnclassifiedSendErrorFallsBack(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.campaigns["c1"] = testCampaign()
	repo.due = []*model.Delivery{testDelivery()}
	m := &mockMailer{err: errors.New("wire fell out")}

	newTestWorker(repo, m).Poll(context.Background())

	assert.Equal(t, mailer.CodeSendError, repo.outcomes["d1"].Reason)
}

func TestWorkerFailsDeliveryWithoutEmail(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.campaigns["c1"] = testCampaign()
	d := testDelivery()
	d.RecipientEmail = ""
	d.RecipientSnapshot = nil
	repo.due = []*model.Delivery{d}
	m := &mockMailer{}

	newTestWorker(repo, m).Poll(context.Background())

	assert.Empty(t, m.sent)
	assert.Equal(t, ReasonMissingEmail, repo.outcomes["d1"].Reason)
}

func TestWorkerFailsDeliveryForMissingCampaign(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.due = []*model.Delivery{testDelivery()}
	m := &mockMailer{}

	newTestWorker(repo, m).Poll(context.Background())

	assert.Empty(t, m.sent)
	assert.Equal(t, ReasonCampaignNotFound, repo.outcomes["d1"].Reason)
}

func TestWorkerRecoversFromPanicAndKeepsDraining(t *testing.T) {
	repo := newMockWorkerRepo()
	repo.campaigns["c1"] = testCampaign()
	d2 := testDelivery()
	d2.ID = "d2"
	repo.due = []*model.Delivery{testDelivery(), d2}
	m := &mockMailer{panic: true}

	w := newTestWorker(repo, m)
	require.NotPanics(t, func() { w.Poll(context.Background()) })

	assert.Equal(t, ReasonUnexpectedError, repo.outcomes["d1"].Reason)
	assert.Equal(t, ReasonUnexpectedError, repo.outcomes["d2"].Reason)
}

func TestWorkerRunStopsOnContextCancel(t *testing.T) {
	repo := newMockWorkerRepo()
	w := NewWorker(repo, &mockMailer{}, nil, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
