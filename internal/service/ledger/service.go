// Package ledger records balance transactions and produces the bank-total
// measurement that drives bank end conditions and donation achievements.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fundcircle/fundcircle/internal/cache"
	"github.com/fundcircle/fundcircle/internal/metrics"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/internal/service/achievements"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// ErrInvalidAmount is returned for non-positive transaction amounts.
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// defaultBankTotalTTL bounds staleness of the cached total between ledger
// writes when no TTL is configured.
const defaultBankTotalTTL = 5 * time.Minute

// TransactionRepository interface for ledger persistence operations.
type TransactionRepository interface {
	Create(tx *models.BalanceTransaction) error
	SumByEvent(eventID uint) (float64, error)
	SumDepositsByUser(userID uint) (float64, error)
	ListByEvent(eventID uint) ([]models.BalanceTransaction, error)
}

// EventEvaluator re-runs condition evaluation after a measurement changes.
type EventEvaluator interface {
	EvaluateEvent(ctx context.Context, eventID uint, m conditions.Measurements) (conditions.Resolution, error)
}

// StatisticRecorder feeds changed user statistics into achievement criteria.
type StatisticRecorder interface {
	RecordStatistic(ctx context.Context, userID uint, statType models.CriterionType, value float64) error
}

// Service maintains the balance ledger of events.
type Service struct {
	txRepo       TransactionRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	evaluator    EventEvaluator
	achievements StatisticRecorder
	log          *logger.Logger
}

// NewService creates a new ledger service. A non-positive cacheTTL falls back
// to the default.
func NewService(
	txRepo *repository.TransactionRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	evaluator *conditions.Service,
	achievementsSvc *achievements.Service,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(txRepo, c, cacheTTL, evaluator, achievementsSvc, log)
}

// NewServiceWithInterfaces creates a new ledger service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	txRepo TransactionRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	evaluator EventEvaluator,
	achievementsSvc StatisticRecorder,
	log *logger.Logger,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultBankTotalTTL
	}
	return &Service{
		txRepo:       txRepo,
		cache:        c,
		cacheTTL:     cacheTTL,
		evaluator:    evaluator,
		achievements: achievementsSvc,
		log:          log,
	}
}

// RecordDeposit appends a deposit to an event's ledger and pushes the new
// bank total into condition evaluation and the donor's achievement
// statistics.
func (s *Service) RecordDeposit(ctx context.Context, eventID, userID uint, amount float64) (*models.BalanceTransaction, error) {
	return s.record(ctx, eventID, userID, amount, models.TransactionDeposit)
}

// RecordRefund appends a refund. The bank total drops, but completed
// conditions and earned achievements stay earned: the engine is monotonic.
func (s *Service) RecordRefund(ctx context.Context, eventID, userID uint, amount float64) (*models.BalanceTransaction, error) {
	return s.record(ctx, eventID, userID, amount, models.TransactionRefund)
}

func (s *Service) record(ctx context.Context, eventID, userID uint, amount float64, txType string) (*models.BalanceTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := &models.BalanceTransaction{
		EventID: eventID,
		UserID:  userID,
		Amount:  amount,
		Type:    txType,
	}
	if err := s.txRepo.Create(tx); err != nil {
		return nil, fmt.Errorf("record %s: %w", txType, err)
	}
	metrics.RecordTransaction(txType, amount)

	if err := s.cache.Del(ctx, cache.BankTotalKey(eventID)); err != nil {
		s.log.Warn().Err(err).Uint("event_id", eventID).Msg("Failed to invalidate bank total cache")
	}

	total, err := s.BankTotal(ctx, eventID)
	if err != nil {
		return tx, fmt.Errorf("bank total after %s: %w", txType, err)
	}

	if _, err := s.evaluator.EvaluateEvent(ctx, eventID, conditions.Measurements{
		models.ConditionBank: total,
	}); err != nil {
		// The transaction is already on the ledger; the periodic pass will
		// re-evaluate.
		s.log.Error().Err(err).Uint("event_id", eventID).Msg("Failed to evaluate event after ledger write")
	}

	if txType == models.TransactionDeposit {
		donated, err := s.txRepo.SumDepositsByUser(userID)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to sum user deposits")
		} else if err := s.achievements.RecordStatistic(ctx, userID, models.CriterionDonationAmount, donated); err != nil {
			s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to record donation statistic")
		}
	}

	s.log.Info().
		Uint("event_id", eventID).
		Uint("user_id", userID).
		Float64("amount", amount).
		Str("type", txType).
		Float64("bank_total", total).
		Msg("Ledger transaction recorded")

	return tx, nil
}

// BankTotal returns an event's current bank total, cache-aside over the
// ledger sum.
func (s *Service) BankTotal(ctx context.Context, eventID uint) (float64, error) {
	key := cache.BankTotalKey(eventID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if total, perr := strconv.ParseFloat(cached, 64); perr == nil {
			return total, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("Bank total cache read failed")
	}

	total, err := s.txRepo.SumByEvent(eventID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, strconv.FormatFloat(total, 'f', -1, 64), s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Bank total cache write failed")
	}
	return total, nil
}

// History returns an event's ledger, newest first.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) History(ctx context.Context, eventID uint) ([]models.BalanceTransaction, error) {
	return s.txRepo.ListByEvent(eventID)
}
