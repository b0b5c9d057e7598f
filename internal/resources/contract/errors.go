package contract

import "errors"

var (
	ErrContractNotFound     = errors.New("contract not found")
	ErrContractExists       = errors.New("contract already exists")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrActorNotAllowed      = errors.New("actor is not allowed to perform this action")
	ErrInvalidOTP           = errors.New("invalid OTP")
	ErrFraudDetected        = errors.New("image rejected: AI generated or manipulated")
	ErrAnalysisUnavailable  = errors.New("crop analysis unavailable")
	ErrInvalidUpdate        = errors.New("invalid crop update")
	ErrPackagingIncomplete  = errors.New("packaging report incomplete")
	ErrCheckpointIncomplete = errors.New("checkpoint evidence incomplete")
	ErrDisputeIncomplete    = errors.New("dispute details incomplete")
	ErrUnknownResolution    = errors.New("unknown dispute resolution")
	ErrInvalidMilestones    = errors.New("invalid milestones")
	ErrMilestoneNotFound    = errors.New("milestone not found")
	ErrMilestoneAlreadyPaid = errors.New("milestone already paid")
	ErrMilestoneNotPayable  = errors.New("milestone does not require buyer approval")
	ErrInvalidTerms         = errors.New("invalid contract terms")
)
