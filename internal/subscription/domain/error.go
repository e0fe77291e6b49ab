package domain

import "errors"

var (
	ErrQuotaExceeded     = errors.New("monthly quota exceeded")
	ErrPaymentNotSettled = errors.New("payment not settled")
	ErrAmountMismatch    = errors.New("payment amount below plan price")
)
