package booster

import "errors"

var (
	ErrStoreNotInitialized = errors.New("booster: store not initialized")
	ErrStoreClosed         = errors.New("booster: store closed")
	ErrProductLimit        = errors.New("booster: product limit reached")
	ErrProductMinimum      = errors.New("booster: product minimum reached")
	ErrUnknownProduct      = errors.New("booster: unknown product")
	ErrUnknownLever        = errors.New("booster: unknown lever")
	ErrUnknownOffer        = errors.New("booster: unknown offer")
	ErrInvalidState        = errors.New("booster: invalid state")
	ErrUnknownField        = errors.New("booster: unknown field")
)
