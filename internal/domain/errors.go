package domain

import "errors"

var (
	ErrUnknownAssetClass    = errors.New("unknown asset class")
	ErrDuplicateAccount     = errors.New("duplicate account id")
	ErrInvalidTaxCategory   = errors.New("invalid tax category")
	ErrInvalidStrategy      = errors.New("invalid tax-location strategy")
	ErrInvalidRebalanceMode = errors.New("invalid rebalance mode")
)
