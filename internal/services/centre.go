package services

import (
	"context"

	"lead-system/internal/entities"
	"lead-system/internal/repositories"
)

type CentreServiceInterface interface {
	GetCentres(ctx context.Context) ([]entities.Centre, error)
	FindCentre(ctx context.Context, id uint64) (*entities.Centre, error)
}

type CentreService struct {
	centreRepo repositories.CentreRepositoryInterface
}

func NewCentreService(centreRepo repositories.CentreRepositoryInterface) CentreServiceInterface {
	return &CentreService{centreRepo: centreRepo}
}

func (s *CentreService) GetCentres(ctx context.Context) ([]entities.Centre, error) {
	return s.centreRepo.GetCentres(ctx)
}

func (s *CentreService) FindCentre(ctx context.Context, id uint64) (*entities.Centre, error) {
	return s.centreRepo.FindByID(ctx, id)
}
