package parameters

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xet-labs/xet-composer/internal/domain"
)

// ValidatorAdapter implements the ParameterValidator port. It enforces the
// same invariants the generated contract re-checks at construction time;
// rejecting early avoids wasting a transaction on a constructor revert.
type ValidatorAdapter struct {
	log *slog.Logger
	now func() time.Time
}

// NewValidatorAdapter creates a new parameter validator.
func NewValidatorAdapter(log *slog.Logger) *ValidatorAdapter {
	return &ValidatorAdapter{
		log: log.With("component", "ValidatorAdapter"),
		now: time.Now,
	}
}

// Validate checks raw input against the descriptor's declared parameters
// and constraint rules. The wall clock is read exactly once per call, so
// time-relative rules cannot race against later pipeline stages. The call
// has no side effects and is idempotent for a fixed clock reading.
func (a *ValidatorAdapter) Validate(
	ctx context.Context,
	d *domain.TemplateDescriptor,
	raw map[string]string,
) (*domain.ParameterSet, error) {
	now := uint64(a.now().Unix())

	for name := range raw {
		if _, ok := d.Param(name); !ok {
			return nil, &domain.ValidationError{Field: name, Rule: "not declared by template"}
		}
	}

	set := domain.NewParameterSet(d.ID)
	for _, p := range d.Params {
		rawVal, ok := raw[p.Name]
		if !ok {
			return nil, &domain.ValidationError{Field: p.Name, Rule: "required"}
		}
		v, verr := parseValue(p, rawVal)
		if verr != nil {
			return nil, verr
		}
		set.Set(p.Name, v)
	}

	for _, rule := range d.Rules {
		if verr := a.checkRule(d, set, rule, now); verr != nil {
			return nil, verr
		}
	}

	a.log.Debug("parameters validated", "template", d.ID, "count", set.Len())
	return set, nil
}

func parseValue(p domain.ParamSpec, raw string) (domain.ParamValue, *domain.ValidationError) {
	raw = strings.TrimSpace(raw)
	switch {
	case p.Kind == domain.KindAddress:
		if !common.IsHexAddress(raw) {
			return domain.ParamValue{}, &domain.ValidationError{Field: p.Name, Rule: "must be a valid hex address"}
		}
		addr := common.HexToAddress(raw)
		if addr == (common.Address{}) {
			return domain.ParamValue{}, &domain.ValidationError{Field: p.Name, Rule: "must not be the zero address"}
		}
		return domain.ParamValue{Kind: p.Kind, Address: addr}, nil

	case p.Kind.IsInteger():
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return domain.ParamValue{}, &domain.ValidationError{Field: p.Name, Rule: "must be a decimal integer"}
		}
		if n.Sign() < 0 {
			return domain.ParamValue{}, &domain.ValidationError{Field: p.Name, Rule: "must not be negative"}
		}
		return domain.ParamValue{Kind: p.Kind, Uint: n}, nil

	default:
		return domain.ParamValue{}, &domain.ValidationError{
			Field: p.Name,
			Rule:  fmt.Sprintf("unsupported parameter kind %q", p.Kind),
		}
	}
}

func (a *ValidatorAdapter) checkRule(
	d *domain.TemplateDescriptor,
	set *domain.ParameterSet,
	rule domain.ConstraintRule,
	now uint64,
) *domain.ValidationError {
	get := func(name string) (*big.Int, *domain.ValidationError) {
		v, ok := set.Get(name)
		if !ok || v.Uint == nil {
			return nil, &domain.ValidationError{
				Field: name,
				Rule:  fmt.Sprintf("rule %s references a non-integer parameter", rule.Kind),
			}
		}
		return v.Uint, nil
	}

	switch rule.Kind {
	case domain.RuleLTE:
		if len(rule.Fields) != 2 {
			return &domain.ValidationError{Field: strings.Join(rule.Fields, ","), Rule: "lte rule needs two fields"}
		}
		lhs, verr := get(rule.Fields[0])
		if verr != nil {
			return verr
		}
		rhs, verr := get(rule.Fields[1])
		if verr != nil {
			return verr
		}
		if lhs.Cmp(rhs) > 0 {
			return &domain.ValidationError{
				Field: rule.Fields[0],
				Rule:  fmt.Sprintf("%s must not exceed %s", rule.Fields[0], rule.Fields[1]),
			}
		}

	case domain.RulePositive:
		if len(rule.Fields) != 1 {
			return &domain.ValidationError{Field: strings.Join(rule.Fields, ","), Rule: "positive rule needs one field"}
		}
		v, verr := get(rule.Fields[0])
		if verr != nil {
			return verr
		}
		if v.Sign() <= 0 {
			return &domain.ValidationError{
				Field: rule.Fields[0],
				Rule:  fmt.Sprintf("%s must be greater than zero", rule.Fields[0]),
			}
		}

	case domain.RuleNotBeforeNow:
		if len(rule.Fields) != 1 {
			return &domain.ValidationError{Field: strings.Join(rule.Fields, ","), Rule: "not_before_now rule needs one field"}
		}
		v, verr := get(rule.Fields[0])
		if verr != nil {
			return verr
		}
		if v.Cmp(new(big.Int).SetUint64(now)) < 0 {
			return &domain.ValidationError{
				Field: rule.Fields[0],
				Rule:  fmt.Sprintf("%s must not be in the past", rule.Fields[0]),
			}
		}

	default:
		return &domain.ValidationError{
			Field: strings.Join(rule.Fields, ","),
			Rule:  fmt.Sprintf("unknown rule kind %q", rule.Kind),
		}
	}
	return nil
}
