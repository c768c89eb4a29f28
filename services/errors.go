package services

import "errors"

var (
	ErrChargeNotPaid    = errors.New("charge is not paid")
	ErrFailureRequired  = errors.New("failure code and message are required")
	ErrNotPayoutCapable = errors.New("channel cannot disburse transfers")
)
