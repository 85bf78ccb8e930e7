package types

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the number of decimal places in one NARA.
const Decimals = 18

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ParseWei parses a base-10 string of raw base units ("wei") into a big.Int.
// Ledger reads return pool balances and claim amounts in this form.
func ParseWei(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative wei amount %q", s)
	}
	return v, nil
}

// FormatNara converts raw base units to a human-readable decimal string,
// trimming trailing fractional zeros.
func FormatNara(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	whole, frac := new(big.Int).QuoRem(wei, unit, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fs := strings.TrimRight(fmt.Sprintf("%018s", frac.String()), "0")
	return whole.String() + "." + fs
}

// ParseNara converts a decimal NARA string to raw base units.
func ParseNara(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)
	whole, ok := new(big.Int).SetString(parts[0], 10)
	if !ok {
		return nil, fmt.Errorf("invalid whole part %q", parts[0])
	}
	out := new(big.Int).Mul(whole, unit)

	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > Decimals {
			return nil, fmt.Errorf("too many decimal places (max %d)", Decimals)
		}
		fracStr += strings.Repeat("0", Decimals-len(fracStr))
		frac, ok := new(big.Int).SetString(fracStr, 10)
		if !ok {
			return nil, fmt.Errorf("invalid fractional part %q", parts[1])
		}
		out.Add(out, frac)
	}
	return out, nil
}

// MinBig returns the smaller of a and b.
func MinBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
