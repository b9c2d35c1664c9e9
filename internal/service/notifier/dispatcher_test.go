package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
	"github.com/jeevanrakshak/donor-api/pkg/metrics"
	"github.com/jeevanrakshak/donor-api/pkg/push"
)

type fakeDonorRepo struct {
	repository.DonorRepository

	donors      []*model.Donor
	tokens      map[uuid.UUID][]string
	searchErr   error
	lastFilter  model.DonorFilter
	tokenDonors []uuid.UUID
}

func (f *fakeDonorRepo) Search(ctx context.Context, filter model.DonorFilter) ([]*model.Donor, error) {
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var matched []*model.Donor
	for _, d := range f.donors {
		if d.Availability && (filter.Region == "" || d.Region == filter.Region) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

func (f *fakeDonorRepo) Tokens(ctx context.Context, donorIDs []uuid.UUID) ([]string, error) {
	f.tokenDonors = donorIDs
	var tokens []string
	for _, id := range donorIDs {
		tokens = append(tokens, f.tokens[id]...)
	}
	return tokens, nil
}

type fakeGateway struct {
	tokens  []string
	payload push.Payload
	calls   int
	err     error
}

func (f *fakeGateway) Send(ctx context.Context, tokens []string, payload push.Payload) (*push.BatchResult, error) {
	f.calls++
	f.tokens = tokens
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &push.BatchResult{SuccessCount: len(tokens)}, nil
}

var testMetrics = metrics.NewMetrics("notifier_test")

func newTestDispatcher(repo *fakeDonorRepo, gateway *fakeGateway) *Dispatcher {
	return NewDispatcher(repo, gateway, logger.NewLogger(nil), testMetrics)
}

func eventPayload(t *testing.T, group model.BloodGroup, region string) []byte {
	t.Helper()
	payload, err := json.Marshal(model.RequestCreatedEvent{
		RequestID:  uuid.New(),
		BloodGroup: group,
		Region:     region,
		Urgency:    model.UrgencyUrgent,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	return payload
}

func TestFanOutNotifiesRegionDonors(t *testing.T) {
	inRegion1 := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: true}
	inRegion2 := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: true}
	elsewhere := &model.Donor{ID: uuid.New(), Region: "Kerala", Availability: true}
	unavailable := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: false}

	repo := &fakeDonorRepo{
		donors: []*model.Donor{inRegion1, inRegion2, elsewhere, unavailable},
		tokens: map[uuid.UUID][]string{
			inRegion1.ID: {"t1"},
			inRegion2.ID: {"t2"},
			elsewhere.ID: {"t3"},
		},
	}
	gateway := &fakeGateway{}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupOPos, "Telangana"))
	require.NoError(t, err)

	assert.Equal(t, "Telangana", repo.lastFilter.Region)
	assert.Empty(t, repo.lastFilter.BloodGroup, "fan-out goes to the whole region, not one group")
	assert.Equal(t, []string{"t1", "t2"}, gateway.tokens)
}

func TestFanOutPayloadContent(t *testing.T) {
	donor := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: true}
	repo := &fakeDonorRepo{
		donors: []*model.Donor{donor},
		tokens: map[uuid.UUID][]string{donor.ID: {"t1"}},
	}
	gateway := &fakeGateway{}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupBNeg, "Telangana"))
	require.NoError(t, err)

	assert.Equal(t, "New Blood Request: B-", gateway.payload.Title)
	assert.Equal(t, "A new request for B- blood has been posted in Telangana. Tap to view.", gateway.payload.Body)
}

func TestFanOutSkipsMissingRegion(t *testing.T) {
	repo := &fakeDonorRepo{}
	gateway := &fakeGateway{}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupOPos, ""))
	require.NoError(t, err)
	assert.Zero(t, gateway.calls)
}

func TestFanOutSkipsWhenNoTokens(t *testing.T) {
	donor := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: true}
	repo := &fakeDonorRepo{
		donors: []*model.Donor{donor},
		tokens: map[uuid.UUID][]string{},
	}
	gateway := &fakeGateway{}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupOPos, "Telangana"))
	require.NoError(t, err)
	assert.Zero(t, gateway.calls)
}

func TestFanOutSwallowsGatewayError(t *testing.T) {
	donor := &model.Donor{ID: uuid.New(), Region: "Telangana", Availability: true}
	repo := &fakeDonorRepo{
		donors: []*model.Donor{donor},
		tokens: map[uuid.UUID][]string{donor.ID: {"t1"}},
	}
	gateway := &fakeGateway{err: errors.New("gateway down")}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupOPos, "Telangana"))
	assert.NoError(t, err, "delivery failure must not fail the event")
}

func TestFanOutSwallowsSearchError(t *testing.T) {
	repo := &fakeDonorRepo{searchErr: errors.New("db down")}
	gateway := &fakeGateway{}
	d := newTestDispatcher(repo, gateway)

	err := d.HandleRequestCreated(context.Background(), eventPayload(t, model.BloodGroupOPos, "Telangana"))
	assert.NoError(t, err)
	assert.Zero(t, gateway.calls)
}

func TestFanOutRejectsMalformedPayload(t *testing.T) {
	d := newTestDispatcher(&fakeDonorRepo{}, &fakeGateway{})

	err := d.HandleRequestCreated(context.Background(), []byte("not json"))
	assert.Error(t, err)
}
