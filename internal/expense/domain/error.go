package domain

import "errors"

var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrInvalidDescription   = errors.New("invalid_description")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidCategory      = errors.New("invalid_category")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrReceiptMismatch      = errors.New("receipt flag and url must agree")
	ErrUnauthorized         = errors.New("unauthorized")
)
