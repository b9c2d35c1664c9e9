package donor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
)

const (
	leaderboardSize     = 10
	leaderboardCacheKey = "leaderboard"
	leaderboardCacheTTL = time.Minute
)

type Service struct {
	repo      repository.DonorRepository
	requests  repository.RequestRepository
	donations repository.DonationRepository
	cache     *gocache.Cache
}

func NewService(repo repository.DonorRepository, requests repository.RequestRepository, donations repository.DonationRepository) *Service {
	return &Service{
		repo:      repo,
		requests:  requests,
		donations: donations,
		cache:     gocache.New(leaderboardCacheTTL, 5*time.Minute),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	return s.repo.Get(ctx, id)
}

// Search returns available donors matching every supplied filter; absent
// filters impose no constraint.
func (s *Service) Search(ctx context.Context, filter model.DonorFilter) ([]*model.Donor, error) {
	donors, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}
	return donors, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, form *model.UpdateProfileRequest) (*model.Donor, error) {
	donor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.Name != nil {
		donor.Name = *form.Name
	}
	if form.Phone != nil {
		donor.Phone = *form.Phone
	}
	if form.BloodGroup != nil {
		donor.BloodGroup = model.BloodGroup(*form.BloodGroup)
	}
	if form.Region != nil {
		donor.Region = *form.Region
	}
	if form.City != nil {
		donor.City = *form.City
	}

	if err := s.repo.Update(ctx, donor); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return donor, nil
}

func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	return nil
}

// RegisterToken appends a notification-endpoint token to the donor's set.
// Registering an already known token is a no-op.
func (s *Service) RegisterToken(ctx context.Context, id uuid.UUID, token string) error {
	if err := s.repo.RegisterToken(ctx, id, token); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

func (s *Service) TouchLastChecked(ctx context.Context, id uuid.UUID) error {
	return s.repo.TouchLastChecked(ctx, id)
}

// Dashboard aggregates the donor's profile with their own requests and
// donations.
func (s *Service) Dashboard(ctx context.Context, id uuid.UUID) (*model.Dashboard, error) {
	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListByRequester(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard requests: %w", err)
	}

	donations, err := s.donations.ListByDonor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard donations: %w", err)
	}

	return &model.Dashboard{
		Profile:   profile,
		Requests:  requests,
		Donations: donations,
	}, nil
}

// Leaderboard returns the top donors by lifetime donation count, cached
// briefly since the list changes only on fulfillment.
func (s *Service) Leaderboard(ctx context.Context) ([]*model.Donor, error) {
	if cached, ok := s.cache.Get(leaderboardCacheKey); ok {
		return cached.([]*model.Donor), nil
	}

	donors, err := s.repo.TopDonors(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	s.cache.Set(leaderboardCacheKey, donors, gocache.DefaultExpiration)
	return donors, nil
}
