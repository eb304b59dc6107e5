package parameters

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xet-labs/xet-composer/internal/domain"
)

func vestingDescriptor() *domain.TemplateDescriptor {
	return &domain.TemplateDescriptor{
		ID:           "token-vesting",
		ContractName: "TokenVesting",
		Params: []domain.ParamSpec{
			{Name: "token_address", Kind: domain.KindAddress},
			{Name: "beneficiary_address", Kind: domain.KindAddress},
			{Name: "owner_address", Kind: domain.KindAddress},
			{Name: "start_time", Kind: domain.KindTimestamp},
			{Name: "cliff_duration", Kind: domain.KindDuration},
			{Name: "duration", Kind: domain.KindDuration},
		},
		Rules: []domain.ConstraintRule{
			{Kind: domain.RuleLTE, Fields: []string{"cliff_duration", "duration"}},
			{Kind: domain.RulePositive, Fields: []string{"duration"}},
			{Kind: domain.RuleNotBeforeNow, Fields: []string{"start_time"}},
		},
	}
}

func validRaw(now time.Time) map[string]string {
	return map[string]string{
		"token_address":       "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"beneficiary_address": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"owner_address":       "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"start_time":          "1700001000",
		"cliff_duration":      "2592000",
		"duration":            "31536000",
	}
}

func newTestValidator(now time.Time) *ValidatorAdapter {
	v := NewValidatorAdapter(slog.Default())
	v.now = func() time.Time { return now }
	return v
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestValidator(now)

	set, err := v.Validate(context.Background(), vestingDescriptor(), validRaw(now))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, "token-vesting", set.TemplateID)
	assert.Equal(t, 6, set.Len())

	tok, ok := set.Get("token_address")
	require.True(t, ok)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", tok.Address.Hex())

	dur, ok := set.Get("duration")
	require.True(t, ok)
	assert.Equal(t, "31536000", dur.Uint.String())
}

func TestValidateIsIdempotent(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestValidator(now)
	d := vestingDescriptor()
	raw := validRaw(now)

	first, err1 := v.Validate(context.Background(), d, raw)
	second, err2 := v.Validate(context.Background(), d, raw)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.Len(), second.Len())
	for _, name := range d.ParamNames() {
		a, _ := first.Get(name)
		b, _ := second.Get(name)
		assert.Equal(t, a, b, "parameter %s", name)
	}
}

func TestValidateRejections(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		mutate   func(raw map[string]string)
		field    string
		ruleFrag string
	}{
		{
			name:     "cliff longer than duration names both fields",
			mutate:   func(raw map[string]string) { raw["cliff_duration"] = "40000000" },
			field:    "cliff_duration",
			ruleFrag: "duration",
		},
		{
			name:     "zero duration",
			mutate:   func(raw map[string]string) { raw["duration"] = "0"; raw["cliff_duration"] = "0" },
			field:    "duration",
			ruleFrag: "greater than zero",
		},
		{
			name:     "start time in the past",
			mutate:   func(raw map[string]string) { raw["start_time"] = "1600000000" },
			field:    "start_time",
			ruleFrag: "in the past",
		},
		{
			name:     "zero address",
			mutate:   func(raw map[string]string) { raw["token_address"] = "0x0000000000000000000000000000000000000000" },
			field:    "token_address",
			ruleFrag: "zero address",
		},
		{
			name:     "malformed address",
			mutate:   func(raw map[string]string) { raw["beneficiary_address"] = "not-an-address" },
			field:    "beneficiary_address",
			ruleFrag: "hex address",
		},
		{
			name:     "negative duration",
			mutate:   func(raw map[string]string) { raw["cliff_duration"] = "-1" },
			field:    "cliff_duration",
			ruleFrag: "negative",
		},
		{
			name:     "non-numeric timestamp",
			mutate:   func(raw map[string]string) { raw["start_time"] = "tomorrow" },
			field:    "start_time",
			ruleFrag: "decimal integer",
		},
		{
			name:     "missing parameter",
			mutate:   func(raw map[string]string) { delete(raw, "owner_address") },
			field:    "owner_address",
			ruleFrag: "required",
		},
		{
			name:     "undeclared parameter",
			mutate:   func(raw map[string]string) { raw["extra"] = "1" },
			field:    "extra",
			ruleFrag: "not declared",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestValidator(now)
			raw := validRaw(now)
			tc.mutate(raw)

			set, err := v.Validate(context.Background(), vestingDescriptor(), raw)
			assert.Nil(t, set)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Contains(t, verr.Rule, tc.ruleFrag)
		})
	}
}

func TestValidateReadsClockOnce(t *testing.T) {
	// start_time equal to the validation instant is accepted; the clock is
	// not re-read between field parsing and rule checks.
	now := time.Unix(1_700_000_000, 0)
	v := newTestValidator(now)
	raw := validRaw(now)
	raw["start_time"] = "1700000000"

	_, err := v.Validate(context.Background(), vestingDescriptor(), raw)
	assert.NoError(t, err)
}
