package bank

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
)

const (
	banksCacheKey = "blood_banks"
	campsCacheKey = "donation_camps"
	listCacheTTL  = 5 * time.Minute
)

type Service struct {
	repo  repository.BankRepository
	cache *gocache.Cache
}

func NewService(repo repository.BankRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(listCacheTTL, 10*time.Minute),
	}
}

func (s *Service) CreateBank(ctx context.Context, form *model.CreateBloodBankRequest) (*model.BloodBank, error) {
	bank := &model.BloodBank{
		Name:    form.Name,
		Address: form.Address,
		Phone:   form.Phone,
		Hours:   form.Hours,
	}
	if err := s.repo.CreateBank(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to create blood bank: %w", err)
	}
	s.cache.Delete(banksCacheKey)
	return bank, nil
}

func (s *Service) ListBanks(ctx context.Context) ([]*model.BloodBank, error) {
	if cached, ok := s.cache.Get(banksCacheKey); ok {
		return cached.([]*model.BloodBank), nil
	}

	banks, err := s.repo.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood banks: %w", err)
	}

	s.cache.Set(banksCacheKey, banks, gocache.DefaultExpiration)
	return banks, nil
}

func (s *Service) CreateCamp(ctx context.Context, form *model.CreateDonationCampRequest) (*model.DonationCamp, error) {
	campDate, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid camp date: %w", err)
	}

	camp := &model.DonationCamp{
		Organizer: form.Organizer,
		Address:   form.Address,
		CampDate:  campDate,
		Hours:     form.Hours,
	}
	if err := s.repo.CreateCamp(ctx, camp); err != nil {
		return nil, fmt.Errorf("failed to create donation camp: %w", err)
	}
	s.cache.Delete(campsCacheKey)
	return camp, nil
}

func (s *Service) ListCamps(ctx context.Context) ([]*model.DonationCamp, error) {
	if cached, ok := s.cache.Get(campsCacheKey); ok {
		return cached.([]*model.DonationCamp), nil
	}

	camps, err := s.repo.ListCamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list donation camps: %w", err)
	}

	s.cache.Set(campsCacheKey, camps, gocache.DefaultExpiration)
	return camps, nil
}
