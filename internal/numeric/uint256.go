package numeric

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ToUint256 normalizes any serialized integer representation produced by the
// call layer into an exact unsigned 256-bit integer. It is total: unparseable
// or negative input maps to zero with a logged warning so balance aggregation
// never throws or goes negative mid-sweep.
func ToUint256(v any) *big.Int {
	out, ok := coerce(v)
	if !ok {
		log.Warn().Str("value", fmt.Sprintf("%v", v)).Str("type", fmt.Sprintf("%T", v)).
			Msg("unparseable on-chain quantity, treating as zero")
		return new(big.Int)
	}
	if out.Sign() < 0 {
		log.Warn().Str("value", out.String()).Msg("negative on-chain quantity, treating as zero")
		return new(big.Int)
	}
	if out.Cmp(maxUint256) > 0 {
		log.Warn().Str("value", out.String()).Msg("on-chain quantity exceeds uint256, treating as zero")
		return new(big.Int)
	}
	return out
}

func coerce(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case nil:
		return new(big.Int), true
	case *big.Int:
		if t == nil {
			return new(big.Int), true
		}
		return new(big.Int).Set(t), true
	case big.Int:
		return new(big.Int).Set(&t), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	case uint:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(t)), true
	case int64:
		return big.NewInt(t), true
	case int:
		return big.NewInt(int64(t)), true
	case int8:
		return big.NewInt(int64(t)), true
	case int16:
		return big.NewInt(int64(t)), true
	case int32:
		return big.NewInt(int64(t)), true
	case float64:
		// Only exact integrals inside the float53 window are trustworthy.
		if t != math.Trunc(t) || math.Abs(t) >= 1<<53 {
			return nil, false
		}
		return big.NewInt(int64(t)), true
	case []byte:
		if len(t) == 0 {
			return new(big.Int), true
		}
		return new(big.Int).SetBytes(t), true
	case string:
		return parseIntegerString(t)
	case fmt.Stringer:
		return parseIntegerString(t.String())
	default:
		return nil, false
	}
}

func parseIntegerString(raw string) (*big.Int, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return new(big.Int), true
	}
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		out, ok := new(big.Int).SetString(clean[2:], 16)
		return out, ok
	}
	out, ok := new(big.Int).SetString(clean, 10)
	return out, ok
}
