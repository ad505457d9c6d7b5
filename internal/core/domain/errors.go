package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrUpstream       = errors.New("upstream failure")
)

// UserErrors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRole         = errors.New("invalid role")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
)

// LoanErrors
var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrNotLoanOwner = errors.New("loan is not owned by caller")
)

// ApplicationErrors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrNotApplicationOwner = errors.New("application does not belong to caller")
	ErrApplicationLocked   = errors.New("application is no longer pending")
)

// PaymentErrors
var (
	ErrAlreadyPaid    = errors.New("application fee already paid")
	ErrPaymentNotPaid = errors.New("checkout session is not paid")
)
