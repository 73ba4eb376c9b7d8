package common

import (
	"fmt"
	"math/big"
	"strings"
)

func pow10(decimal uint64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimal), nil)
}

// FloatToBigInt converts a float to a big int with specific decimal
// Example:
// - FloatToBigInt(1, 4) = 10000
// - FloatToBigInt(1.234, 4) = 12340
func FloatToBigInt(amount float64, decimal uint64) *big.Int {
	f := new(big.Float).SetPrec(256).SetFloat64(amount)
	f.Mul(f, new(big.Float).SetInt(pow10(decimal)))
	// round half away from zero so 1.234 * 10^4 doesn't land on 12339
	if f.Sign() >= 0 {
		f.Add(f, big.NewFloat(0.5))
	} else {
		f.Sub(f, big.NewFloat(0.5))
	}
	result, _ := f.Int(nil)
	return result
}

// BigToFloat converts a big int to float according to its number of decimal digits
// Example:
// - BigToFloat(1100, 3) = 1.1
// - BigToFloat(1100, 5) = 0.011
func BigToFloat(b *big.Int, decimal uint64) float64 {
	f := new(big.Float).SetInt(b)
	res := new(big.Float).Quo(f, new(big.Float).SetInt(pow10(decimal)))
	result, _ := res.Float64()
	return result
}

// BigToFloatString renders value with decimal digits without losing
// precision, trailing zeros are dropped.
// - BigToFloatString(1500000000000000000, 18) = "1.5"
// - BigToFloatString(0, 18) = "0"
func BigToFloatString(value *big.Int, decimal uint64) string {
	if value == nil {
		return "0"
	}
	neg := value.Sign() < 0
	abs := new(big.Int).Abs(value)
	q, r := new(big.Int).QuoRem(abs, pow10(decimal), new(big.Int))

	result := q.String()
	if r.Sign() != 0 {
		frac := fmt.Sprintf("%0*s", int(decimal), r.String())
		result += "." + strings.TrimRight(frac, "0")
	}
	if neg {
		result = "-" + result
	}
	return result
}

// GweiToWei converts Gwei as a float to Wei as a big int
func GweiToWei(n float64) *big.Int {
	return FloatToBigInt(n, 9)
}

func StringToBigInt(str string) (*big.Int, error) {
	result, success := new(big.Int).SetString(strings.TrimSpace(str), 0)
	if !success {
		return nil, fmt.Errorf("parsed %s to big int failed", str)
	}
	return result, nil
}

// ParseTokenIDs parses decimal or 0x prefixed token ids. Negative ids are
// rejected.
func ParseTokenIDs(strs []string) ([]*big.Int, error) {
	result := make([]*big.Int, 0, len(strs))
	for _, s := range strs {
		id, err := StringToBigInt(s)
		if err != nil {
			return nil, err
		}
		if id.Sign() < 0 {
			return nil, fmt.Errorf("token id %s is negative", s)
		}
		result = append(result, id)
	}
	return result, nil
}
