package domain

import "errors"

var (
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidLineItems        = errors.New("invalid_line_items")
	ErrInvalidDueDate          = errors.New("invalid_due_date")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotEditable             = errors.New("paid invoices cannot be edited")
	ErrUnauthorized            = errors.New("unauthorized")
)
