package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/service"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/pkg/money"
)

// ScoringConfig is the on-disk form of the scoring configuration. Decimal
// values are kept as strings so they never pass through float64.
type ScoringConfig struct {
	Criteria []CriterionConfig `yaml:"criteria"`
	Bands    []BandConfig      `yaml:"bands"`
}

type CriterionConfig struct {
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Weight string `yaml:"weight"`
}

type BandConfig struct {
	Classification    string `yaml:"classification"`
	MinScore          string `yaml:"min_score"`
	Decision          string `yaml:"decision"`
	InterestRate      string `yaml:"interest_rate"`
	MinDownPaymentPct string `yaml:"min_down_payment_pct"`
	MaxTerm           int    `yaml:"max_term"`
}

// LoadScoring reads and parses the scoring file at path.
func LoadScoring(path string) (ScoringConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("read scoring config: %w", err)
	}
	return ParseScoring(raw)
}

// ParseScoring decodes a YAML scoring document, rejecting unknown keys.
func ParseScoring(raw []byte) (ScoringConfig, error) {
	var cfg ScoringConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return ScoringConfig{}, errors.New("parse scoring config: empty document")
		}
		return ScoringConfig{}, fmt.Errorf("parse scoring config: %w", err)
	}
	return cfg, nil
}

// Build converts the document into engine inputs. Semantic checks (weights
// summing to 100, contiguous bands) are left to service.NewCreditScoringEngine.
func (c ScoringConfig) Build() ([]service.ScoreCriterion, service.ScoringPolicy, error) {
	criteria := make([]service.ScoreCriterion, 0, len(c.Criteria))
	for i, cc := range c.Criteria {
		weight, err := money.Parse(cc.Weight)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("criteria[%d].weight: %w", i, err)
		}
		criterion, err := service.NewReferenceCriterion(cc.Kind, cc.Name, weight)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("criteria[%d]: %w", i, err)
		}
		criteria = append(criteria, criterion)
	}

	policy := service.ScoringPolicy{
		Decisions:  make(map[valueobject.RiskClassification]valueobject.Decision, len(c.Bands)),
		Conditions: make(map[valueobject.RiskClassification]model.ApprovalConditions, len(c.Bands)),
	}
	for i, b := range c.Bands {
		rc, err := valueobject.NewRiskClassification(b.Classification)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("bands[%d]: %w", i, err)
		}
		decision, err := valueobject.NewDecision(b.Decision)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("bands[%d]: %w", i, err)
		}
		minScore, err := money.Parse(b.MinScore)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("bands[%d].min_score: %w", i, err)
		}
		rate, err := parseOptional(b.InterestRate)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("bands[%d].interest_rate: %w", i, err)
		}
		minDown, err := parseOptional(b.MinDownPaymentPct)
		if err != nil {
			return nil, service.ScoringPolicy{}, fmt.Errorf("bands[%d].min_down_payment_pct: %w", i, err)
		}

		policy.Bands = append(policy.Bands, service.RiskBand{Classification: rc, MinScore: minScore})
		policy.Decisions[rc] = decision
		policy.Conditions[rc] = model.ApprovalConditions{
			InterestRate:      rate,
			MaxTerm:           b.MaxTerm,
			MinDownPaymentPct: minDown,
		}
	}
	return criteria, policy, nil
}

// NewScoringEngine loads path and builds a validated engine from it.
func NewScoringEngine(path string) (*service.CreditScoringEngine, error) {
	cfg, err := LoadScoring(path)
	if err != nil {
		return nil, err
	}
	criteria, policy, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build scoring config: %w", err)
	}
	engine, err := service.NewCreditScoringEngine(criteria, policy)
	if err != nil {
		return nil, fmt.Errorf("scoring config %s: %w", path, err)
	}
	return engine, nil
}

func parseOptional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return money.Parse(s)
}
