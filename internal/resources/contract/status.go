package contract

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a contract. Values are ordered, a contract only moves forward,
// except the dispute branch DELIVERED -> DISPUTED -> RESOLVED
type Status uint8

const (
	StatusSowing Status = iota
	StatusGrowth
	StatusFlowering
	StatusHarvestReady
	StatusPackaging
	StatusAwaitingDispatch
	StatusTransitAssigned
	StatusReachedPickup
	StatusPickupCheckpoint // pickup OTP accepted, checkpoint evidence not yet submitted
	StatusCollected
	StatusInTransit
	StatusReachedDestination
	StatusDelivered
	StatusCompleted
	StatusDisputed
	StatusResolved
)

var statusNames = [...]string{
	StatusSowing:             "SOWING",
	StatusGrowth:             "GROWTH",
	StatusFlowering:          "FLOWERING",
	StatusHarvestReady:       "HARVEST_READY",
	StatusPackaging:          "PACKAGING",
	StatusAwaitingDispatch:   "AWAITING_DISPATCH",
	StatusTransitAssigned:    "TRANSIT_ASSIGNED",
	StatusReachedPickup:      "REACHED_PICKUP",
	StatusPickupCheckpoint:   "PICKUP_CHECKPOINT",
	StatusCollected:          "COLLECTED",
	StatusInTransit:          "IN_TRANSIT",
	StatusReachedDestination: "REACHED_DESTINATION",
	StatusDelivered:          "DELIVERED",
	StatusCompleted:          "COMPLETED",
	StatusDisputed:           "DISPUTED",
	StatusResolved:           "RESOLVED",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN"
}

func ParseStatus(str string) (Status, error) {
	str = strings.ToUpper(strings.TrimSpace(str))
	for i, name := range statusNames {
		if name == str {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown contract status %q", str)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	status, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// IsPreHarvest is true while the crop is still in the field
func (s Status) IsPreHarvest() bool {
	return s <= StatusHarvestReady
}

// IsFinal is true for statuses no event can leave
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusResolved
}

func statusRange(from, to Status) []Status {
	var res []Status
	for s := from; s <= to; s++ {
		res = append(res, s)
	}
	return res
}
