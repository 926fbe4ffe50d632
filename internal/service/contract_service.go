package service

import (
	"context"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type ContractService struct {
	contracts *repository.ContractRepository
}

func NewContractService(contracts *repository.ContractRepository) *ContractService {
	return &ContractService{contracts: contracts}
}

func (s *ContractService) List(ctx context.Context, principal model.Principal, activeOnly bool) ([]model.Contract, error) {
	return s.contracts.ListForConsumer(ctx, principal.ConsumerID, activeOnly)
}
