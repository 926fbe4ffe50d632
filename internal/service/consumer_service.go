package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/auth"
	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type ConsumerService struct {
	consumers *repository.ConsumerRepository
	tokens    *auth.Manager
	log       zerolog.Logger
}

func NewConsumerService(consumers *repository.ConsumerRepository, tokens *auth.Manager, log zerolog.Logger) *ConsumerService {
	return &ConsumerService{consumers: consumers, tokens: tokens, log: log}
}

type RegisterInput struct {
	Email           string
	Password        string
	FullName        string
	Type            string
	Address         string
	Phone           string
	PersonalAccount string
}

type AuthResult struct {
	Consumer *model.Consumer
	Token    string
}

func (s *ConsumerService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}

	consumerType, err := parseConsumerType(input.Type)
	if err != nil {
		return nil, err
	}

	if _, err := s.consumers.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	account := strings.TrimSpace(input.PersonalAccount)
	if account == "" {
		account = generatePersonalAccount(time.Now())
	}
	exists, err := s.consumers.ExistsByPersonalAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: personal account already in use", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	consumer := &model.Consumer{
		Type:            consumerType,
		FullName:        strings.TrimSpace(input.FullName),
		Address:         strings.TrimSpace(input.Address),
		Phone:           strings.TrimSpace(input.Phone),
		PersonalAccount: account,
		Email:           email,
		PasswordHash:    string(hash),
	}
	if err := s.consumers.Create(ctx, consumer); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(model.Principal{ConsumerID: consumer.ID, Role: model.RoleConsumer}, time.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("consumer_id", consumer.ID.String()).Msg("consumer registered")
	return &AuthResult{Consumer: consumer, Token: token}, nil
}

func (s *ConsumerService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	consumer, err := s.consumers.GetByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(consumer.PasswordHash), []byte(password)); err != nil {
		return nil, ErrPermissionDenied
	}

	token, err := s.tokens.Issue(model.Principal{ConsumerID: consumer.ID, Role: model.RoleConsumer}, time.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Consumer: consumer, Token: token}, nil
}

func (s *ConsumerService) Get(ctx context.Context, principal model.Principal) (*model.Consumer, error) {
	consumer, err := s.consumers.GetByID(ctx, principal.ConsumerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return consumer, nil
}

func parseConsumerType(raw string) (model.ConsumerType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "individual":
		return model.ConsumerTypeIndividual, nil
	case "legal":
		return model.ConsumerTypeLegal, nil
	default:
		return "", fmt.Errorf("%w: invalid consumer type", ErrInvalidInput)
	}
}

func generatePersonalAccount(now time.Time) string {
	return fmt.Sprintf("PA-%d", now.UnixNano())
}
