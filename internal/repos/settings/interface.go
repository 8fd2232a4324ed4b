package settings

import (
	"context"
	"errors"
)

var ErrUnknownKey = errors.New("unknown setting key")

// Keys of the runtime-tunable settings. Money values are minor units.
const (
	KeyQuizReward    = "quiz_reward"
	KeyQuizCost      = "quiz_cost"
	KeyReferralBonus = "referral_bonus"
	KeyMinReferral   = "min_referral"
	KeyMinWithdraw   = "min_withdraw"
	KeyWithdrawFee   = "withdraw_fee"
)

// Defaults back every read when the seeded row is missing.
var Defaults = map[string]string{
	KeyQuizReward:    "5",
	KeyQuizCost:      "2",
	KeyReferralBonus: "10",
	KeyMinReferral:   "0",
	KeyMinWithdraw:   "1000",
	KeyWithdrawFee:   "0",
}

// IsMoneyKey reports whether the key's value is a minor-unit amount rather
// than a plain count.
func IsMoneyKey(key string) bool {
	return key != KeyMinReferral
}

type Settings interface {
	// Get reads the stored value, falling back to the hard-coded default.
	// Reads always hit the store so an admin change applies on the very
	// next read.
	Get(ctx context.Context, key string) (string, error)
	GetInt64(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key, value string) error
}
