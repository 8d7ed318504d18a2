// Package cache puts a Redis read-through cache in front of the evaluation
// store, so approvals of freshly evaluated loans skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

// DefaultTTL bounds how long a cached evaluation may be served.
const DefaultTTL = 15 * time.Minute

const (
	keyPrefix        = "loanengine:evaluation:"
	generationPrefix = "loanengine:evaluation-gen:"
)

// EvaluationCache implements port.EvaluationPersistenceGateway by
// decorating another gateway. Redis failures are logged and fall through to
// the underlying store; they never fail a call.
//
// Every upsert bumps a per-loan generation counter and drops the cached
// entry. A read-through populate only lands if the generation it observed
// before reading the store is still current, so a slow reader can never put
// back an evaluation older than one already written.
type EvaluationCache struct {
	next   port.EvaluationPersistenceGateway
	client redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// NewEvaluationCache wraps next. ttl <= 0 selects DefaultTTL.
func NewEvaluationCache(next port.EvaluationPersistenceGateway, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *EvaluationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EvaluationCache{next: next, client: client, ttl: ttl, logger: logger}
}

// UpsertEvaluation writes through to the store, then invalidates the cache.
func (c *EvaluationCache) UpsertEvaluation(ctx context.Context, loanID string, result model.CreditScoreResult) error {
	if err := c.next.UpsertEvaluation(ctx, loanID, result); err != nil {
		return err
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(loanID))
		pipe.Expire(ctx, generationKey(loanID), c.generationTTL())
		pipe.Del(ctx, key(loanID))
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "evaluation cache invalidation failed", "loan_id", loanID, "error", err)
	}
	return nil
}

// FindEvaluation serves from Redis when possible and populates it on a miss.
func (c *EvaluationCache) FindEvaluation(ctx context.Context, loanID string) (model.CreditScoreResult, error) {
	raw, err := c.client.Get(ctx, key(loanID)).Bytes()
	switch {
	case err == nil:
		result, decodeErr := decode(raw)
		if decodeErr == nil {
			return result, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cached evaluation", "loan_id", loanID, "error", decodeErr)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "evaluation cache read failed", "loan_id", loanID, "error", err)
	}

	generation, genErr := c.generation(ctx, c.client, loanID)

	result, err := c.next.FindEvaluation(ctx, loanID)
	if err != nil {
		return model.CreditScoreResult{}, err
	}
	if genErr == nil {
		c.populate(ctx, loanID, generation, result)
	}
	return result, nil
}

func (c *EvaluationCache) populate(ctx context.Context, loanID string, generation int64, result model.CreditScoreResult) {
	raw, err := encode(result)
	if err != nil {
		c.logger.WarnContext(ctx, "evaluation cache encode failed", "loan_id", loanID, "error", err)
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(loanID), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(loanID))
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		c.logger.WarnContext(ctx, "evaluation cache write failed", "loan_id", loanID, "error", err)
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *EvaluationCache) generation(ctx context.Context, r getter, loanID string) (int64, error) {
	n, err := r.Get(ctx, generationKey(loanID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// generationTTL outlives any entry populated under the old generation.
func (c *EvaluationCache) generationTTL() time.Duration {
	return c.ttl + time.Hour
}

func key(loanID string) string { return keyPrefix + loanID }

func generationKey(loanID string) string { return generationPrefix + loanID }

type cachedEvaluation struct {
	Classification    string                 `json:"classification"`
	Decision          string                 `json:"decision"`
	TotalScore        decimal.Decimal        `json:"total_score"`
	InterestRate      decimal.Decimal        `json:"interest_rate"`
	MinDownPaymentPct decimal.Decimal        `json:"min_down_payment_pct"`
	Criteria          []model.CriterionScore `json:"criteria"`
	MaxTerm           int                    `json:"max_term"`
}

func encode(r model.CreditScoreResult) ([]byte, error) {
	return json.Marshal(cachedEvaluation{
		Classification:    r.Classification().String(),
		Decision:          r.Decision().String(),
		TotalScore:        r.TotalScore(),
		InterestRate:      r.AppliedInterestRate(),
		MinDownPaymentPct: r.MinDownPaymentPct(),
		Criteria:          r.Criteria(),
		MaxTerm:           r.MaxTerm(),
	})
}

func decode(raw []byte) (model.CreditScoreResult, error) {
	var c cachedEvaluation
	if err := json.Unmarshal(raw, &c); err != nil {
		return model.CreditScoreResult{}, fmt.Errorf("decode cached evaluation: %w", err)
	}
	classification, err := valueobject.NewRiskClassification(c.Classification)
	if err != nil {
		return model.CreditScoreResult{}, err
	}
	decision, err := valueobject.NewDecision(c.Decision)
	if err != nil {
		return model.CreditScoreResult{}, err
	}
	return model.NewCreditScoreResult(c.Criteria, c.TotalScore, classification, decision, model.ApprovalConditions{
		InterestRate:      c.InterestRate,
		MinDownPaymentPct: c.MinDownPaymentPct,
		MaxTerm:           c.MaxTerm,
	}), nil
}
