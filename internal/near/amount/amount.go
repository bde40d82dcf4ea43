// Package amount converts between human NEAR amounts and the chain's integer
// denomination (yoctoNEAR, 10^-24 NEAR).
package amount

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NearNominationExp 1 NEAR = 10^24 yoctoNEAR
const NearNominationExp = 24

var (
	maxUint128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	yoctoScale = decimal.New(1, NearNominationExp)
)

// MaxUint128 返回 2^128-1 的副本
func MaxUint128() *uint256.Int {
	return new(uint256.Int).Set(maxUint128)
}

// FitsUint128 判断是否可以按 u128 编码
func FitsUint128(v *uint256.Int) bool {
	return v == nil || !v.Gt(maxUint128)
}

// Zero 返回新的 0 值
func Zero() *uint256.Int {
	return uint256.NewInt(0)
}

// ParseYocto 解析整数形式的 yoctoNEAR 字符串
func ParseYocto(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(autherr.ErrSerialization, "empty amount")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrSerialization, err, "invalid yocto amount")
	}
	if !FitsUint128(v) {
		return nil, errors.Wrapf(autherr.ErrSerialization, "amount %s exceeds u128", s)
	}
	return v, nil
}

// ParseNear 将十进制 NEAR 数额转换为 yoctoNEAR，例如 "1.5" -> 1500000000000000000000000
func ParseNear(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, errors.Wrap(autherr.ErrSerialization, "empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrSerialization, err, "invalid NEAR amount")
	}
	return FromDecimal(d)
}

// FromDecimal 将 NEAR 数额转换为 yoctoNEAR，超出 yocto 精度视为错误
func FromDecimal(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, errors.Wrapf(autherr.ErrSerialization, "negative amount %s", d.String())
	}
	yocto := d.Mul(yoctoScale)
	if !yocto.Equal(yocto.Truncate(0)) {
		return nil, errors.Wrapf(autherr.ErrSerialization, "amount %s is more precise than 1 yoctoNEAR", d.String())
	}
	return ParseYocto(yocto.StringFixed(0))
}

// FormatNear 将 yoctoNEAR 格式化为去掉末尾 0 的 NEAR 字符串
func FormatNear(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	d, err := decimal.NewFromString(v.Dec())
	if err != nil {
		return "0"
	}
	return d.Div(yoctoScale).String()
}
