package entity

import "errors"

var (
	// Voucher errors
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrMalformedVoucher = errors.New("malformed voucher")

	// Related record errors
	ErrBuyerNotFound         = errors.New("buyer not found")
	ErrBuyerWithoutEmail     = errors.New("buyer has no email")
	ErrEstablishmentNotFound = errors.New("establishment not found")

	// General errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
)
