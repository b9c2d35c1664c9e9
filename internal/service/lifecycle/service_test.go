package lifecycle

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/config"
	"github.com/jeevanrakshak/donor-api/internal/email"
	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/internal/service/audit"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

type fakeRequestRepo struct {
	repository.RequestRepository

	request     *model.Request
	accepted    bool
	fulfilled   bool
	acceptCalls int
}

func (f *fakeRequestRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Request, error) {
	if f.request == nil || f.request.ID != id {
		return nil, apperrors.NewNotFound("request", nil)
	}
	copy := *f.request
	return &copy, nil
}

func (f *fakeRequestRepo) MarkAcceptedTx(ctx context.Context, tx *sqlx.Tx, requestID, donorID uuid.UUID, donorName string, donationID uuid.UUID) (bool, error) {
	f.acceptCalls++
	if f.request.Status != model.RequestStatusOpen {
		return false, nil
	}
	f.request.Status = model.RequestStatusPendingFulfillment
	f.request.DonorID = &donorID
	f.request.DonorName = &donorName
	f.request.DonationID = &donationID
	f.accepted = true
	return true, nil
}

func (f *fakeRequestRepo) MarkFulfilledTx(ctx context.Context, tx *sqlx.Tx, requestID uuid.UUID) (bool, error) {
	if f.request.Status == model.RequestStatusFulfilled {
		return false, nil
	}
	f.request.Status = model.RequestStatusFulfilled
	f.fulfilled = true
	return true, nil
}

type fakeDonationRepo struct {
	repository.DonationRepository

	created   []*model.Donation
	completed []uuid.UUID
}

func (f *fakeDonationRepo) Create(ctx context.Context, d *model.Donation) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDonationRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, d *model.Donation) error {
	return f.Create(ctx, d)
}

func (f *fakeDonationRepo) CompleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

type fakeDonorRepo struct {
	repository.DonorRepository

	donors     map[uuid.UUID]*model.Donor
	increments []uuid.UUID
}

func (f *fakeDonorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	donor, ok := f.donors[id]
	if !ok {
		return nil, apperrors.NewNotFound("donor", nil)
	}
	return donor, nil
}

func (f *fakeDonorRepo) IncrementDonationCountTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	f.increments = append(f.increments, id)
	return nil
}

type fakeAuditRepo struct {
	repository.AuditRepository

	logs []*model.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func newTestService(t *testing.T, requests *fakeRequestRepo, donations *fakeDonationRepo, donors *fakeDonorRepo) *Service {
	t.Helper()
	appLogger := logger.NewLogger(nil)
	auditor := audit.NewService(&fakeAuditRepo{}, appLogger)
	emailSvc := email.NewService(config.EmailConfig{})
	return NewService(fakeTxRunner{}, requests, donations, donors, emailSvc, auditor, appLogger)
}

func openRequest(requesterID uuid.UUID) *model.Request {
	return &model.Request{
		ID:          uuid.New(),
		RequesterID: requesterID,
		PatientName: "Ravi Kumar",
		BloodGroup:  model.BloodGroupOPos,
		Units:       2,
		Hospital:    "City Hospital",
		Region:      "Telangana",
		Status:      model.RequestStatusOpen,
	}
}

func testDonor() *model.Donor {
	return &model.Donor{
		ID:         uuid.New(),
		Name:       "Asha",
		Email:      "asha@example.com",
		BloodGroup: model.BloodGroupOPos,
		Region:     "Telangana",
	}
}

func TestAcceptOpenRequest(t *testing.T) {
	requester := testDonor()
	donor := testDonor()
	req := openRequest(requester.ID)

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{
		requester.ID: requester,
		donor.ID:     donor,
	}}
	svc := newTestService(t, requests, donations, donors)

	donation, err := svc.Accept(context.Background(), req.ID, donor)
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusPendingFulfillment, req.Status)
	assert.Equal(t, donor.ID, *req.DonorID)
	assert.Equal(t, donation.ID, *req.DonationID)

	require.Len(t, donations.created, 1)
	assert.Equal(t, model.DonationStatusPending, donation.Status)
	assert.Equal(t, model.DonationTypePlatform, donation.Type)
	assert.Equal(t, req.ID, *donation.RequestID)
	assert.Equal(t, req.PatientName, donation.RecipientName)
}

func TestAcceptRejectsNonOpenRequest(t *testing.T) {
	requester := testDonor()
	donor := testDonor()
	req := openRequest(requester.ID)
	req.Status = model.RequestStatusPendingFulfillment

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{requester.ID: requester}}
	svc := newTestService(t, requests, donations, donors)

	_, err := svc.Accept(context.Background(), req.ID, donor)
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, donations.created, "losing accept must not leave a donation behind")
	assert.Zero(t, requests.acceptCalls, "status check happens before any write")
}

func TestAcceptRejectsOwnRequest(t *testing.T) {
	requester := testDonor()
	req := openRequest(requester.ID)

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{requester.ID: requester}}
	svc := newTestService(t, requests, donations, donors)

	_, err := svc.Accept(context.Background(), req.ID, requester)
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, donations.created)
}

func TestMarkFulfilledCompletesLinkedRecords(t *testing.T) {
	requester := testDonor()
	donor := testDonor()
	req := openRequest(requester.ID)
	donationID := uuid.New()
	req.Status = model.RequestStatusPendingFulfillment
	req.DonorID = &donor.ID
	req.DonationID = &donationID

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{
		requester.ID: requester,
		donor.ID:     donor,
	}}
	svc := newTestService(t, requests, donations, donors)

	err := svc.MarkFulfilled(context.Background(), req.ID, requester.ID)
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusFulfilled, req.Status)
	assert.Equal(t, []uuid.UUID{donationID}, donations.completed)
	assert.Equal(t, []uuid.UUID{donor.ID}, donors.increments, "count increments exactly once")
}

func TestMarkFulfilledRejectsRepeatCall(t *testing.T) {
	requester := testDonor()
	donor := testDonor()
	req := openRequest(requester.ID)
	donationID := uuid.New()
	req.Status = model.RequestStatusPendingFulfillment
	req.DonorID = &donor.ID
	req.DonationID = &donationID

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{
		requester.ID: requester,
		donor.ID:     donor,
	}}
	svc := newTestService(t, requests, donations, donors)

	require.NoError(t, svc.MarkFulfilled(context.Background(), req.ID, requester.ID))

	err := svc.MarkFulfilled(context.Background(), req.ID, requester.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Len(t, donors.increments, 1, "repeat fulfillment must not double-count")
}

func TestMarkFulfilledRejectsNonRequester(t *testing.T) {
	requester := testDonor()
	stranger := testDonor()
	req := openRequest(requester.ID)
	req.Status = model.RequestStatusPendingFulfillment

	requests := &fakeRequestRepo{request: req}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{requester.ID: requester}}
	svc := newTestService(t, requests, donations, donors)

	err := svc.MarkFulfilled(context.Background(), req.ID, stranger.ID)
	require.Error(t, err)
	assert.NotEqual(t, model.RequestStatusFulfilled, req.Status)
	assert.Empty(t, donors.increments)
}

func TestLogExternalDonationHasNoRequestLinkage(t *testing.T) {
	donor := testDonor()

	requests := &fakeRequestRepo{}
	donations := &fakeDonationRepo{}
	donors := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{donor.ID: donor}}
	svc := newTestService(t, requests, donations, donors)

	donation, err := svc.LogExternalDonation(context.Background(), donor, &model.LogExternalDonationRequest{
		BloodGroup: "O+",
		Location:   "Red Cross Camp",
		Date:       "2026-08-15",
	})
	require.NoError(t, err)

	assert.Nil(t, donation.RequestID)
	assert.Equal(t, model.DonationTypeExternal, donation.Type)
	assert.Equal(t, model.DonationStatusCompleted, donation.Status)
	assert.Empty(t, donors.increments, "external donations never touch the count")
}

func TestLogExternalDonationRejectsBadDate(t *testing.T) {
	donor := testDonor()

	svc := newTestService(t, &fakeRequestRepo{}, &fakeDonationRepo{}, &fakeDonorRepo{})

	_, err := svc.LogExternalDonation(context.Background(), donor, &model.LogExternalDonationRequest{
		BloodGroup: "O+",
		Location:   "Red Cross Camp",
		Date:       "15-08-2026",
	})
	require.Error(t, err)
}
