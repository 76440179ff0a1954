package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/domain"
)

const (
	tokenContract = "eosio.token"
	usdContract   = "xtokens"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		str       string
		amount    int64
		code      string
		precision uint8
	}{
		{"100.0000 XPR", 1000000, "XPR", 4},
		{"0.5 XUSDC", 5, "XUSDC", 1},
		{"42 PIX", 42, "PIX", 0},
		{"0.00000001 XBTC", 1, "XBTC", 8},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			q, err := domain.ParseQuantity(tt.str, tokenContract)
			require.NoError(t, err)
			require.Equal(t, tt.amount, q.Amount)
			require.Equal(t, tt.code, q.Symbol.Code)
			require.Equal(t, tt.precision, q.Symbol.Precision)
			require.Equal(t, tokenContract, q.Issuer)
		})
	}
}

func TestFailingParseQuantity(t *testing.T) {
	tests := []struct {
		name   string
		str    string
		issuer string
	}{
		{"missing_code", "100.0000", tokenContract},
		{"negative_amount", "-1.0000 XPR", tokenContract},
		{"lowercase_code", "1.0000 xpr", tokenContract},
		{"trailing_dot", "1. XPR", tokenContract},
		{"not_a_number", "abc XPR", tokenContract},
		{"invalid_issuer", "1.0000 XPR", "Invalid_Issuer"},
		{"too_long_issuer", "1.0000 XPR", "thisnameistoolong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseQuantity(tt.str, tt.issuer)
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestParseQuantityWithIssuer(t *testing.T) {
	q, err := domain.ParseQuantityWithIssuer("100.0000 XPR@eosio.token")
	require.NoError(t, err)
	require.Equal(t, xpr(t, 1000000), q)

	// String output parses back to the same quantity.
	q, err = domain.ParseQuantityWithIssuer(usdc(t, 1234567).String())
	require.NoError(t, err)
	require.Equal(t, usdc(t, 1234567), q)

	for _, str := range []string{"100.0000 XPR", "100.0000 XPR@", "@eosio.token"} {
		_, err := domain.ParseQuantityWithIssuer(str)
		require.True(t, errors.Is(err, domain.ErrInvalidInput), str)
	}
}

func TestQuantityString(t *testing.T) {
	q := xpr(t, 1000000)
	require.Equal(t, "100.0000 XPR@eosio.token", q.String())
}

func TestAssetSetValidate(t *testing.T) {
	tests := []struct {
		name string
		set  domain.AssetSet
	}{
		{
			name: "duplicate_token",
			set:  domain.AssetSet{Tokens: []domain.Quantity{xpr(t, 1), xpr(t, 2)}},
		},
		{
			name: "duplicate_nft",
			set:  domain.AssetSet{Nfts: []uint64{1, 2, 1}},
		},
		{
			name: "negative_amount",
			set: domain.AssetSet{Tokens: []domain.Quantity{{
				Amount: -1, Symbol: domain.Symbol{Code: "XPR", Precision: 4}, Issuer: tokenContract,
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}

	// Same code from different issuers does not collide.
	set := domain.AssetSet{Tokens: []domain.Quantity{xpr(t, 1), fakeXpr(t, 1)}}
	require.NoError(t, set.Validate())
}

func TestAssetSetAdd(t *testing.T) {
	set := domain.AssetSet{}

	err := set.Add(domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 100)},
		Nfts:   []uint64{42},
	})
	require.NoError(t, err)

	err = set.Add(domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 50), usdc(t, 10), fakeXpr(t, 7)},
		Nfts:   []uint64{43},
	})
	require.NoError(t, err)

	require.Len(t, set.Tokens, 3)
	require.Equal(t, int64(150), set.Amount(xpr(t, 0).Key()))
	require.Equal(t, int64(10), set.Amount(usdc(t, 0).Key()))
	require.Equal(t, int64(7), set.Amount(fakeXpr(t, 0).Key()))
	require.ElementsMatch(t, []uint64{42, 43}, set.Nfts)

	// zero amounts never materialize as a line.
	err = set.Add(domain.AssetSet{Tokens: []domain.Quantity{mustQuantity(t, 0, "ZERO", 2, tokenContract)}})
	require.NoError(t, err)
	require.Len(t, set.Tokens, 3)
}

func TestFailingAssetSetAdd(t *testing.T) {
	set := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 100)},
		Nfts:   []uint64{42},
	}
	before := set.Clone()

	tests := []struct {
		name  string
		other domain.AssetSet
	}{
		{
			name:  "nft_already_held",
			other: domain.AssetSet{Tokens: []domain.Quantity{xpr(t, 1)}, Nfts: []uint64{42}},
		},
		{
			name: "precision_mismatch",
			other: domain.AssetSet{Tokens: []domain.Quantity{
				mustQuantity(t, 1, "XPR", 2, tokenContract),
			}},
		},
		{
			name: "overflow",
			other: domain.AssetSet{Tokens: []domain.Quantity{
				xpr(t, 1<<63-1),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.Add(tt.other)
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrInvalidInput))
			require.True(t, before.Equal(set))
		})
	}
}

func TestAssetSetSub(t *testing.T) {
	set := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 100), usdc(t, 10)},
		Nfts:   []uint64{42, 43},
	}

	err := set.Sub(domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 40)},
		Nfts:   []uint64{43},
	})
	require.NoError(t, err)
	require.Equal(t, int64(60), set.Amount(xpr(t, 0).Key()))
	require.Equal(t, []uint64{42}, set.Nfts)

	// subtracting the exact held amount removes the line.
	err = set.Sub(domain.AssetSet{Tokens: []domain.Quantity{usdc(t, 10)}})
	require.NoError(t, err)
	require.Len(t, set.Tokens, 1)

	err = set.Sub(domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 60)},
		Nfts:   []uint64{42},
	})
	require.NoError(t, err)
	require.True(t, set.IsEmpty())
	require.Nil(t, set.Tokens)
	require.Nil(t, set.Nfts)
}

func TestFailingAssetSetSub(t *testing.T) {
	set := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 100)},
		Nfts:   []uint64{42},
	}
	before := set.Clone()

	tests := []struct {
		name        string
		other       domain.AssetSet
		expectedErr error
	}{
		{
			name:        "amount_exceeds_balance",
			other:       domain.AssetSet{Tokens: []domain.Quantity{xpr(t, 101)}},
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name:        "token_not_held",
			other:       domain.AssetSet{Tokens: []domain.Quantity{usdc(t, 1)}},
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name:        "same_code_other_issuer",
			other:       domain.AssetSet{Tokens: []domain.Quantity{fakeXpr(t, 1)}},
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name: "nft_not_held",
			other: domain.AssetSet{
				Tokens: []domain.Quantity{xpr(t, 1)},
				Nfts:   []uint64{7},
			},
			expectedErr: domain.ErrAssetNotFound,
		},
		{
			name:        "duplicate_nft",
			other:       domain.AssetSet{Nfts: []uint64{42, 42}},
			expectedErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.Sub(tt.other)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.expectedErr))
			require.True(t, before.Equal(set))
		})
	}

	err := set.Sub(domain.AssetSet{Nfts: []uint64{7}})
	require.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	var assetErr *domain.AssetError
	require.True(t, errors.As(err, &assetErr))
	require.Equal(t, "nft #7", assetErr.Asset)
}

func TestAssetSetRoundTrip(t *testing.T) {
	set := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 100)},
		Nfts:   []uint64{1},
	}
	before := set.Clone()
	delta := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 25), usdc(t, 3)},
		Nfts:   []uint64{2, 3},
	}

	require.NoError(t, set.Add(delta))
	require.NoError(t, set.Sub(delta))
	require.True(t, before.Equal(set))
}

func TestAssetSetEqual(t *testing.T) {
	a := domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 1), usdc(t, 2)},
		Nfts:   []uint64{3, 4},
	}
	b := domain.AssetSet{
		Tokens: []domain.Quantity{usdc(t, 2), xpr(t, 1)},
		Nfts:   []uint64{4, 3},
	}
	require.True(t, a.Equal(b))

	b.Nfts = []uint64{4}
	require.False(t, a.Equal(b))

	require.True(t, domain.AssetSet{}.Equal(domain.AssetSet{
		Tokens: []domain.Quantity{xpr(t, 0)},
	}))
}

func xpr(t *testing.T, amount int64) domain.Quantity {
	return mustQuantity(t, amount, "XPR", 4, tokenContract)
}

func fakeXpr(t *testing.T, amount int64) domain.Quantity {
	return mustQuantity(t, amount, "XPR", 4, "fake.token")
}

func usdc(t *testing.T, amount int64) domain.Quantity {
	return mustQuantity(t, amount, "XUSDC", 6, usdContract)
}

func mustQuantity(
	t *testing.T, amount int64, code string, precision uint8, issuer string,
) domain.Quantity {
	q, err := domain.NewQuantity(amount, code, precision, issuer)
	require.NoError(t, err)
	return q
}
