package domain

import "errors"

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidMethod      = errors.New("invalid_method")
	ErrInvalidCreditTerms = errors.New("invalid_credit_terms")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrNotPending         = errors.New("payment is not pending")
	ErrUnauthorized       = errors.New("unauthorized")
)
