package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxPrecision is the max number of decimals a token symbol can have.
	MaxPrecision = 18
)

var symbolCodeRegexp = regexp.MustCompile(`^[A-Z]{1,7}$`)

// Symbol identifies a token by its ticker code and number of decimals.
type Symbol struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
}

// Validate returns an error if the code or the precision are not valid.
func (s Symbol) Validate() error {
	if !symbolCodeRegexp.MatchString(s.Code) {
		return invalidInput("symbol code %q must be 1 to 7 uppercase letters", s.Code)
	}
	if s.Precision > MaxPrecision {
		return invalidInput(
			"symbol %s precision must be in range [0, %d]", s.Code, MaxPrecision,
		)
	}
	return nil
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// AssetKey is the identity of a fungible asset. Quantities with different
// keys never merge.
type AssetKey struct {
	Code   string
	Issuer string
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%s@%s", k.Code, k.Issuer)
}

// Quantity is an amount of a fungible token, expressed in the smallest unit,
// tagged with its symbol and issuing contract.
type Quantity struct {
	Amount int64  `json:"amount"`
	Symbol Symbol `json:"symbol"`
	Issuer string `json:"issuer"`
}

// NewQuantity returns a validated Quantity.
func NewQuantity(
	amount int64, code string, precision uint8, issuer string,
) (Quantity, error) {
	q := Quantity{
		Amount: amount,
		Symbol: Symbol{Code: code, Precision: precision},
		Issuer: issuer,
	}
	if err := q.Validate(); err != nil {
		return Quantity{}, err
	}
	return q, nil
}

// ParseQuantity parses a quantity in the "<amount> <CODE>" form, ie.
// "100.0000 XPR", where the number of decimals of amount defines the precision
// of the symbol.
func ParseQuantity(str, issuer string) (Quantity, error) {
	parts := strings.Fields(str)
	if len(parts) != 2 {
		return Quantity{}, invalidInput("malformed quantity %q", str)
	}
	amountStr, code := parts[0], parts[1]

	var precision int
	if i := strings.Index(amountStr, "."); i >= 0 {
		precision = len(amountStr) - i - 1
		if precision == 0 {
			return Quantity{}, invalidInput("malformed quantity %q", str)
		}
	}
	if precision > MaxPrecision {
		return Quantity{}, invalidInput("quantity %q has too many decimals", str)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return Quantity{}, invalidInput("malformed quantity amount %q", amountStr)
	}
	units := amount.Shift(int32(precision))
	if !units.IsInteger() || units.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Quantity{}, invalidInput("quantity %q out of range", str)
	}

	return NewQuantity(units.IntPart(), code, uint8(precision), issuer)
}

// ParseQuantityWithIssuer parses a quantity in the "<amount> <CODE>@<issuer>"
// form returned by String.
func ParseQuantityWithIssuer(str string) (Quantity, error) {
	i := strings.LastIndex(str, "@")
	if i < 0 {
		return Quantity{}, invalidInput("quantity %q is missing the issuer", str)
	}
	return ParseQuantity(str[:i], str[i+1:])
}

// Validate makes sure the amount is not negative and that symbol and issuer
// are well formed.
func (q Quantity) Validate() error {
	if q.Amount < 0 {
		return invalidInput("quantity %s must not be negative", q)
	}
	if err := q.Symbol.Validate(); err != nil {
		return err
	}
	return ValidateName(q.Issuer)
}

// Key returns the identity of the quantity's asset.
func (q Quantity) Key() AssetKey {
	return AssetKey{q.Symbol.Code, q.Issuer}
}

// Decimal returns the amount as a decimal number of tokens.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(q.Amount, -int32(q.Symbol.Precision))
}

// String returns the quantity in the "100.0000 XPR@eosio.token" form.
func (q Quantity) String() string {
	return fmt.Sprintf(
		"%s %s@%s",
		q.Decimal().StringFixed(int32(q.Symbol.Precision)), q.Symbol.Code, q.Issuer,
	)
}

// AssetSet is a bundle of fungible quantities, unique by AssetKey, and
// non-fungible item ids, unique by value.
type AssetSet struct {
	Tokens []Quantity `json:"tokens"`
	Nfts   []uint64   `json:"nfts"`
}

// NewAssetSet returns a validated AssetSet.
func NewAssetSet(tokens []Quantity, nfts []uint64) (AssetSet, error) {
	s := AssetSet{Tokens: tokens, Nfts: nfts}
	if err := s.Validate(); err != nil {
		return AssetSet{}, err
	}
	return s, nil
}

// Validate checks that the set has no duplicate keys, no negative amounts and
// no duplicate non-fungible ids.
func (s AssetSet) Validate() error {
	keys := make(map[AssetKey]struct{}, len(s.Tokens))
	for _, q := range s.Tokens {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, ok := keys[q.Key()]; ok {
			return invalidInput("duplicate token %s", q.Key())
		}
		keys[q.Key()] = struct{}{}
	}

	ids := make(map[uint64]struct{}, len(s.Nfts))
	for _, id := range s.Nfts {
		if _, ok := ids[id]; ok {
			return invalidInput("duplicate nft #%d", id)
		}
		ids[id] = struct{}{}
	}
	return nil
}

// IsEmpty returns whether the set holds neither tokens nor nfts. Zero amount
// lines count as empty.
func (s AssetSet) IsEmpty() bool {
	for _, q := range s.Tokens {
		if q.Amount > 0 {
			return false
		}
	}
	return len(s.Nfts) <= 0
}

// Clone returns a deep copy of the set.
func (s AssetSet) Clone() AssetSet {
	clone := AssetSet{}
	if len(s.Tokens) > 0 {
		clone.Tokens = append([]Quantity{}, s.Tokens...)
	}
	if len(s.Nfts) > 0 {
		clone.Nfts = append([]uint64{}, s.Nfts...)
	}
	return clone
}

// TokensOnly returns the fungible part only.
func (s AssetSet) TokensOnly() AssetSet {
	return AssetSet{Tokens: s.Clone().Tokens}
}

// NftsOnly returns the non-fungible part only.
func (s AssetSet) NftsOnly() AssetSet {
	return AssetSet{Nfts: s.Clone().Nfts}
}

// Amount returns the held amount for the given asset key, 0 if missing.
func (s AssetSet) Amount(key AssetKey) int64 {
	if i := s.indexOf(key); i >= 0 {
		return s.Tokens[i].Amount
	}
	return 0
}

// HasNft returns whether the given non-fungible id belongs to the set.
func (s AssetSet) HasNft(id uint64) bool {
	return s.indexOfNft(id) >= 0
}

// Add merges other into s. Amounts with the same key are summed, new keys are
// appended, zero amounts are skipped. Adding an already held nft is an error.
// On error s is left untouched.
func (s *AssetSet) Add(other AssetSet) error {
	if err := other.Validate(); err != nil {
		return err
	}

	res := s.Clone()
	for _, q := range other.Tokens {
		if q.Amount == 0 {
			continue
		}
		i := res.indexOf(q.Key())
		if i < 0 {
			res.Tokens = append(res.Tokens, q)
			continue
		}
		held := res.Tokens[i]
		if held.Symbol.Precision != q.Symbol.Precision {
			return invalidInput(
				"symbol precision mismatch for %s: got %d, expected %d",
				q.Key(), q.Symbol.Precision, held.Symbol.Precision,
			)
		}
		if held.Amount > math.MaxInt64-q.Amount {
			return invalidInput("amount overflow for %s", q.Key())
		}
		res.Tokens[i].Amount += q.Amount
	}

	for _, id := range other.Nfts {
		if res.HasNft(id) {
			return invalidInput("nft #%d already held", id)
		}
		res.Nfts = append(res.Nfts, id)
	}

	*s = res
	return nil
}

// Sub removes other from s. Every token of other must be held with at least
// the same amount, every nft of other must be held. Lines reaching zero are
// removed. On error s is left untouched.
func (s *AssetSet) Sub(other AssetSet) error {
	if err := other.Validate(); err != nil {
		return err
	}

	res := s.Clone()
	for _, q := range other.Tokens {
		if q.Amount == 0 {
			continue
		}
		i := res.indexOf(q.Key())
		if i < 0 {
			return &AssetError{q.String(), ErrInsufficientBalance}
		}
		held := res.Tokens[i]
		if held.Symbol.Precision != q.Symbol.Precision {
			return invalidInput(
				"symbol precision mismatch for %s: got %d, expected %d",
				q.Key(), q.Symbol.Precision, held.Symbol.Precision,
			)
		}
		if held.Amount < q.Amount {
			return &AssetError{q.String(), ErrInsufficientBalance}
		}
		if held.Amount == q.Amount {
			res.Tokens = append(res.Tokens[:i], res.Tokens[i+1:]...)
			continue
		}
		res.Tokens[i].Amount -= q.Amount
	}

	for _, id := range other.Nfts {
		i := res.indexOfNft(id)
		if i < 0 {
			return &AssetError{fmt.Sprintf("nft #%d", id), ErrAssetNotFound}
		}
		res.Nfts = append(res.Nfts[:i], res.Nfts[i+1:]...)
	}

	if len(res.Tokens) <= 0 {
		res.Tokens = nil
	}
	if len(res.Nfts) <= 0 {
		res.Nfts = nil
	}
	*s = res
	return nil
}

// Contains returns whether other could be subtracted from s.
func (s AssetSet) Contains(other AssetSet) bool {
	clone := s.Clone()
	return clone.Sub(other) == nil
}

// Equal returns whether both sets hold the same amounts and nfts, regardless
// of the order. Zero amount lines are ignored.
func (s AssetSet) Equal(other AssetSet) bool {
	a, b := s.normalized(), other.normalized()
	if len(a.Tokens) != len(b.Tokens) || len(a.Nfts) != len(b.Nfts) {
		return false
	}
	for i := range a.Tokens {
		if a.Tokens[i] != b.Tokens[i] {
			return false
		}
	}
	for i := range a.Nfts {
		if a.Nfts[i] != b.Nfts[i] {
			return false
		}
	}
	return true
}

func (s AssetSet) String() string {
	parts := make([]string, 0, len(s.Tokens)+len(s.Nfts))
	for _, q := range s.Tokens {
		parts = append(parts, q.String())
	}
	for _, id := range s.Nfts {
		parts = append(parts, fmt.Sprintf("#%d", id))
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func (s AssetSet) normalized() AssetSet {
	res := AssetSet{
		Tokens: make([]Quantity, 0, len(s.Tokens)),
		Nfts:   append([]uint64{}, s.Nfts...),
	}
	for _, q := range s.Tokens {
		if q.Amount > 0 {
			res.Tokens = append(res.Tokens, q)
		}
	}
	sort.Slice(res.Tokens, func(i, j int) bool {
		ki, kj := res.Tokens[i].Key(), res.Tokens[j].Key()
		if ki.Issuer != kj.Issuer {
			return ki.Issuer < kj.Issuer
		}
		return ki.Code < kj.Code
	})
	sort.Slice(res.Nfts, func(i, j int) bool { return res.Nfts[i] < res.Nfts[j] })
	return res
}

func (s AssetSet) indexOf(key AssetKey) int {
	for i, q := range s.Tokens {
		if q.Key() == key {
			return i
		}
	}
	return -1
}

func (s AssetSet) indexOfNft(id uint64) int {
	for i, n := range s.Nfts {
		if n == id {
			return i
		}
	}
	return -1
}
