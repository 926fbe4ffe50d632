package service

import (
	"context"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type TariffService struct {
	tariffs *repository.TariffRepository
}

func NewTariffService(tariffs *repository.TariffRepository) *TariffService {
	return &TariffService{tariffs: tariffs}
}

func (s *TariffService) ListActive(ctx context.Context) ([]model.Tariff, error) {
	return s.tariffs.ListActive(ctx)
}
