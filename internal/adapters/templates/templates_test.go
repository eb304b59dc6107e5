package templates

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

func newTestRepository(t *testing.T) *RepositoryAdapter {
	t.Helper()
	repo, err := NewRepositoryAdapter(&config.RuntimeConfig{}, slog.Default())
	require.NoError(t, err)
	return repo
}

func TestRepositoryBuiltinVestingTemplate(t *testing.T) {
	repo := newTestRepository(t)

	d, err := repo.Get(context.Background(), "token-vesting")
	require.NoError(t, err)
	assert.Equal(t, "TokenVesting", d.ContractName)
	assert.Len(t, d.Params, 6)
	assert.Equal(t,
		[]string{"token_address", "beneficiary_address", "owner_address", "start_time", "cliff_duration", "duration"},
		d.ParamNames())
	assert.Len(t, d.Rules, 3)
	assert.Contains(t, d.Source, "contract TokenVesting")
	assert.Contains(t, d.Source, "function release()")
	assert.Contains(t, d.Source, "function releasable_amount()")
}

func TestRepositoryUnknownTemplate(t *testing.T) {
	repo := newTestRepository(t)

	t.Run("suggests a close match", func(t *testing.T) {
		_, err := repo.Get(context.Background(), "token-vestng")
		require.ErrorIs(t, err, domain.ErrTemplateNotFound)
		assert.Contains(t, err.Error(), "token-vesting")
	})

	t.Run("plain not found otherwise", func(t *testing.T) {
		_, err := repo.Get(context.Background(), "zzz")
		require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}

func TestRepositoryList(t *testing.T) {
	repo := newTestRepository(t)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, all)
	ids := make([]string, len(all))
	for i, d := range all {
		ids[i] = d.ID
	}
	assert.Contains(t, ids, "token-vesting")
	assert.IsIncreasing(t, ids)
}

func TestContractNameFromID(t *testing.T) {
	assert.Equal(t, "TokenVesting", contractNameFromID("token-vesting"))
	assert.Equal(t, "TokenVesting", contractNameFromID("token_vesting"))
	assert.Equal(t, "Escrow", contractNameFromID("escrow"))
}

func vestingSet(t *testing.T) (*domain.TemplateDescriptor, *domain.ParameterSet) {
	t.Helper()
	repo := newTestRepository(t)
	d, err := repo.Get(context.Background(), "token-vesting")
	require.NoError(t, err)

	set := domain.NewParameterSet(d.ID)
	set.Set("token_address", domain.ParamValue{Kind: domain.KindAddress,
		Address: common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")})
	set.Set("beneficiary_address", domain.ParamValue{Kind: domain.KindAddress,
		Address: common.HexToAddress("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")})
	set.Set("owner_address", domain.ParamValue{Kind: domain.KindAddress,
		Address: common.HexToAddress("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb")})
	set.Set("start_time", domain.ParamValue{Kind: domain.KindTimestamp, Uint: big.NewInt(1_700_001_000)})
	set.Set("cliff_duration", domain.ParamValue{Kind: domain.KindDuration, Uint: big.NewInt(2_592_000)})
	set.Set("duration", domain.ParamValue{Kind: domain.KindDuration, Uint: big.NewInt(31_536_000)})
	return d, set
}

func TestRendererSubstitutesTypedLiterals(t *testing.T) {
	d, set := vestingSet(t)
	r := NewRendererAdapter(slog.Default())

	src, err := r.Render(context.Background(), d, set)
	require.NoError(t, err)
	assert.Equal(t, "TokenVesting", src.ContractName)
	assert.False(t, strings.Contains(src.Source, "{{"), "unsubstituted placeholder left in source")
	// Addresses render checksummed, integers as decimal literals.
	assert.Contains(t, src.Source, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	assert.Contains(t, src.Source, "1700001000")
	assert.Contains(t, src.Source, "2592000")
}

func TestRendererIsDeterministic(t *testing.T) {
	d, set := vestingSet(t)
	r := NewRendererAdapter(slog.Default())

	first, err := r.Render(context.Background(), d, set)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), d, set)
	require.NoError(t, err)
	assert.Equal(t, first.Source, second.Source)
}

func TestRendererRejections(t *testing.T) {
	r := NewRendererAdapter(slog.Default())

	t.Run("placeholder missing from parameter set", func(t *testing.T) {
		d, set := vestingSet(t)
		incomplete := domain.NewParameterSet(d.ID)
		for _, name := range d.ParamNames() {
			if name == "duration" {
				continue
			}
			v, _ := set.Get(name)
			incomplete.Set(name, v)
		}

		_, err := r.Render(context.Background(), d, incomplete)
		var rerr *domain.RenderError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "duration", rerr.Placeholder)
	})

	t.Run("placeholder not declared by template", func(t *testing.T) {
		d, set := vestingSet(t)
		modified := *d
		modified.Source = d.Source + "\n// {{mystery}}\n"

		_, err := r.Render(context.Background(), &modified, set)
		var rerr *domain.RenderError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "mystery", rerr.Placeholder)
	})

	t.Run("set bound to another template", func(t *testing.T) {
		d, _ := vestingSet(t)
		foreign := domain.NewParameterSet("some-other-template")

		_, err := r.Render(context.Background(), d, foreign)
		var rerr *domain.RenderError
		require.ErrorAs(t, err, &rerr)
	})

	t.Run("unbalanced delimiters", func(t *testing.T) {
		d, set := vestingSet(t)
		modified := *d
		modified.Source = d.Source + "\n// {{ dangling\n"

		_, err := r.Render(context.Background(), &modified, set)
		var rerr *domain.RenderError
		require.ErrorAs(t, err, &rerr)
		assert.Contains(t, rerr.Detail, "delimiters")
	})
}
