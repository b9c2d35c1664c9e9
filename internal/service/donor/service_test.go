package donor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
)

type fakeDonorRepo struct {
	repository.DonorRepository

	donors       map[uuid.UUID]*model.Donor
	top          []*model.Donor
	topCalls     int
	updated      *model.Donor
	searchFilter model.DonorFilter
}

func (f *fakeDonorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	copy := *f.donors[id]
	return &copy, nil
}

func (f *fakeDonorRepo) Update(ctx context.Context, donor *model.Donor) error {
	f.updated = donor
	return nil
}

func (f *fakeDonorRepo) Search(ctx context.Context, filter model.DonorFilter) ([]*model.Donor, error) {
	f.searchFilter = filter
	return nil, nil
}

func (f *fakeDonorRepo) TopDonors(ctx context.Context, limit int) ([]*model.Donor, error) {
	f.topCalls++
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func TestUpdateProfileMergesOnlySuppliedFields(t *testing.T) {
	id := uuid.New()
	repo := &fakeDonorRepo{donors: map[uuid.UUID]*model.Donor{
		id: {
			ID:         id,
			Name:       "Asha",
			Phone:      "111",
			BloodGroup: model.BloodGroupOPos,
			Region:     "Telangana",
			City:       "Hyderabad",
		},
	}}
	svc := NewService(repo, nil, nil)

	newRegion := "Kerala"
	donor, err := svc.UpdateProfile(context.Background(), id, &model.UpdateProfileRequest{
		Region: &newRegion,
	})
	require.NoError(t, err)

	assert.Equal(t, "Kerala", donor.Region)
	assert.Equal(t, "Asha", donor.Name, "absent fields keep their value")
	assert.Equal(t, model.BloodGroupOPos, donor.BloodGroup)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "Kerala", repo.updated.Region)
}

func TestSearchPassesFilterThrough(t *testing.T) {
	repo := &fakeDonorRepo{}
	svc := NewService(repo, nil, nil)

	_, err := svc.Search(context.Background(), model.DonorFilter{
		BloodGroup: model.BloodGroupABNeg,
		Region:     "Telangana",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BloodGroupABNeg, repo.searchFilter.BloodGroup)
	assert.Equal(t, "Telangana", repo.searchFilter.Region)
}

func TestLeaderboardIsCached(t *testing.T) {
	repo := &fakeDonorRepo{top: []*model.Donor{
		{ID: uuid.New(), Name: "Asha", DonationCount: 7},
		{ID: uuid.New(), Name: "Ravi", DonationCount: 3},
	}}
	svc := NewService(repo, nil, nil)

	first, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	second, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.topCalls, "second read comes from cache")
}
