package request

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/internal/service/event"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

type fakeRequestRepo struct {
	repository.RequestRepository

	created   []*model.Request
	createErr error
	counted   struct {
		region string
		calls  int
	}
}

func (f *fakeRequestRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, req *model.Request) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.Status = model.RequestStatusOpen
	f.created = append(f.created, req)
	return nil
}

func (f *fakeRequestRepo) CountOpenSince(ctx context.Context, region string, since time.Time) (int, error) {
	f.counted.region = region
	f.counted.calls++
	return 2, nil
}

type fakeOutboxRepo struct {
	repository.OutboxRepository

	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func createForm() *model.CreateRequestRequest {
	return &model.CreateRequestRequest{
		PatientName: "Ravi Kumar",
		BloodGroup:  "B-",
		Units:       2,
		Hospital:    "City Hospital",
		Location:    "Hyderabad",
		Region:      "Telangana",
		Urgency:     "Critical",
		Phone:       "9999999999",
	}
}

func TestCreateStagesEventWithRecord(t *testing.T) {
	repo := &fakeRequestRepo{}
	outbox := &fakeOutboxRepo{}
	svc := NewService(fakeTxRunner{}, repo, event.NewService(outbox))

	requesterID := uuid.New()
	req, err := svc.Create(context.Background(), requesterID, createForm())
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusOpen, req.Status)
	assert.Equal(t, requesterID, req.RequesterID)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventRequestCreated, outbox.events[0].EventType)

	var payload model.RequestCreatedEvent
	require.NoError(t, json.Unmarshal(outbox.events[0].Payload, &payload))
	assert.Equal(t, req.ID, payload.RequestID)
	assert.Equal(t, model.BloodGroupBNeg, payload.BloodGroup)
	assert.Equal(t, "Telangana", payload.Region)
	assert.Equal(t, model.UrgencyCritical, payload.Urgency)
}

func TestCreateRollsBackEventOnRepoFailure(t *testing.T) {
	repo := &fakeRequestRepo{createErr: errors.New("insert failed")}
	outbox := &fakeOutboxRepo{}
	svc := NewService(fakeTxRunner{}, repo, event.NewService(outbox))

	_, err := svc.Create(context.Background(), uuid.New(), createForm())
	require.Error(t, err)
	assert.Empty(t, outbox.events, "no event without a stored request")
}

func TestCreateParsesNeededBy(t *testing.T) {
	repo := &fakeRequestRepo{}
	outbox := &fakeOutboxRepo{}
	svc := NewService(fakeTxRunner{}, repo, event.NewService(outbox))

	form := createForm()
	form.NeededBy = "2026-09-01"
	req, err := svc.Create(context.Background(), uuid.New(), form)
	require.NoError(t, err)
	require.NotNil(t, req.NeededBy)
	assert.Equal(t, "2026-09-01", req.NeededBy.Format("2006-01-02"))
}

func TestNewRequestCount(t *testing.T) {
	repo := &fakeRequestRepo{}
	svc := NewService(fakeTxRunner{}, repo, event.NewService(&fakeOutboxRepo{}))

	since := time.Now().Add(-time.Hour)

	count, err := svc.NewRequestCount(context.Background(), "Telangana", &since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Telangana", repo.counted.region)
}

func TestNewRequestCountWithoutCheckpoint(t *testing.T) {
	repo := &fakeRequestRepo{}
	svc := NewService(fakeTxRunner{}, repo, event.NewService(&fakeOutboxRepo{}))

	count, err := svc.NewRequestCount(context.Background(), "Telangana", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, repo.counted.calls, "first check never hits the store")
}
