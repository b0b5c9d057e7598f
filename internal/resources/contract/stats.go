package contract

import "go.uber.org/atomic"

type Stats struct {
	accepted     atomic.Uint64
	rejected     atomic.Uint64
	fraudBlocked atomic.Uint64
	otpFailures  atomic.Uint64
}

type StatsSnapshot struct {
	Accepted     uint64 `json:"acceptedTransitions"`
	Rejected     uint64 `json:"rejectedTransitions"`
	FraudBlocked uint64 `json:"fraudBlockedUpdates"`
	OTPFailures  uint64 `json:"otpFailures"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Accepted:     s.accepted.Load(),
		Rejected:     s.rejected.Load(),
		FraudBlocked: s.fraudBlocked.Load(),
		OTPFailures:  s.otpFailures.Load(),
	}
}
