package service

import "errors"

var (
	ErrUnauthorized     = errors.New("caller is not the administrator")
	ErrApprovalNotFound = errors.New("no pending approval found")
	ErrUnknownPlan      = errors.New("unknown subscription plan")
	ErrUnknownInvoice   = errors.New("payment does not match an issued invoice")
	ErrPlanNotAvailable = errors.New("plan selection is not available in the current state")
)
