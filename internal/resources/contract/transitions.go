package contract

import (
	"fmt"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"golang.org/x/exp/slices"
)

type Event uint8

const (
	EventLogGrowthUpdate Event = iota + 1
	EventSetFarmLocation
	EventCompletePackaging
	EventReleaseMilestone
	EventApprovePackaging
	EventAcceptJob
	EventArriveAtPickup
	EventVerifyPickupOTP
	EventSubmitCheckpoint
	EventStartDelivery
	EventArriveAtDestination
	EventVerifyDeliveryOTP
	EventConfirmDelivery
	EventRaiseDispute
	EventResolveDispute
)

var eventNames = map[Event]string{
	EventLogGrowthUpdate:     "LogGrowthUpdate",
	EventSetFarmLocation:     "SetFarmLocation",
	EventCompletePackaging:   "CompletePackaging",
	EventReleaseMilestone:    "ReleaseMilestone",
	EventApprovePackaging:    "ApprovePackaging",
	EventAcceptJob:           "AcceptJob",
	EventArriveAtPickup:      "ArriveAtPickup",
	EventVerifyPickupOTP:     "VerifyPickupOTP",
	EventSubmitCheckpoint:    "SubmitCheckpoint",
	EventStartDelivery:       "StartDelivery",
	EventArriveAtDestination: "ArriveAtDestination",
	EventVerifyDeliveryOTP:   "VerifyDeliveryOTP",
	EventConfirmDelivery:     "ConfirmDelivery",
	EventRaiseDispute:        "RaiseDispute",
	EventResolveDispute:      "ResolveDispute",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

type rule struct {
	role resources.Role
	from []Status
	to   Status
	// stay keeps the current status, the operation may still move it forward on its own
	stay bool
}

var rules = map[Event]rule{
	EventLogGrowthUpdate:     {role: resources.RoleFarmer, from: statusRange(StatusSowing, StatusHarvestReady), stay: true},
	EventSetFarmLocation:     {role: resources.RoleFarmer, from: statusRange(StatusSowing, StatusPickupCheckpoint), stay: true},
	EventCompletePackaging:   {role: resources.RoleFarmer, from: statusRange(StatusSowing, StatusHarvestReady), to: StatusPackaging},
	EventReleaseMilestone:    {role: resources.RoleBuyer, from: statusRange(StatusSowing, StatusPackaging), stay: true},
	EventApprovePackaging:    {role: resources.RoleBuyer, from: []Status{StatusPackaging}, to: StatusAwaitingDispatch},
	EventAcceptJob:           {role: resources.RoleTransporter, from: []Status{StatusAwaitingDispatch}, to: StatusTransitAssigned},
	EventArriveAtPickup:      {role: resources.RoleTransporter, from: []Status{StatusTransitAssigned}, to: StatusReachedPickup},
	EventVerifyPickupOTP:     {role: resources.RoleTransporter, from: []Status{StatusReachedPickup}, to: StatusPickupCheckpoint},
	EventSubmitCheckpoint:    {role: resources.RoleTransporter, from: []Status{StatusPickupCheckpoint}, to: StatusCollected},
	EventStartDelivery:       {role: resources.RoleTransporter, from: []Status{StatusCollected}, to: StatusInTransit},
	EventArriveAtDestination: {role: resources.RoleTransporter, from: []Status{StatusInTransit}, to: StatusReachedDestination},
	EventVerifyDeliveryOTP:   {role: resources.RoleTransporter, from: []Status{StatusReachedDestination}, to: StatusDelivered},
	EventConfirmDelivery:     {role: resources.RoleBuyer, from: []Status{StatusDelivered}, to: StatusCompleted},
	EventRaiseDispute:        {role: resources.RoleBuyer, from: []Status{StatusDelivered}, to: StatusDisputed},
	EventResolveDispute:      {role: resources.RoleAdmin, from: []Status{StatusDisputed}, to: StatusResolved},
}

// Transition is the single authority on which events are valid. It returns the status the contract
// moves to when the given role fires the event in the current status
func Transition(current Status, event Event, role resources.Role) (Status, error) {
	r, ok := rules[event]
	if !ok {
		return current, lib.WrapErrorf(ErrInvalidTransition, "unknown event %s", event)
	}
	if r.role != role {
		return current, lib.WrapErrorf(ErrActorNotAllowed, "%s requires role %s, got %s", event, r.role, role)
	}
	if !slices.Contains(r.from, current) {
		return current, lib.WrapErrorf(ErrInvalidTransition, "%s is not allowed in status %s", event, current)
	}
	if r.stay {
		return current, nil
	}
	return r.to, nil
}

// checkParty verifies the actor is the party of the contract the event belongs to
func checkParty(c *Contract, event Event, actor resources.Actor) error {
	var expected string
	switch rules[event].role {
	case resources.RoleFarmer:
		expected = c.FarmerID
	case resources.RoleBuyer:
		expected = c.BuyerID
	case resources.RoleTransporter:
		if event == EventAcceptJob {
			return nil
		}
		expected = c.TransporterID
	default:
		return nil
	}
	if expected == "" || actor.ID != expected {
		return lib.WrapErrorf(ErrActorNotAllowed, "%s is not a party of contract %s for %s", actor, c.ID, event)
	}
	return nil
}

// stageFor maps a growth update type to the stage it evidences
var stageFor = map[UpdateType]Status{
	UpdateGrowth:    StatusGrowth,
	UpdateFlowering: StatusFlowering,
	UpdateHarvest:   StatusHarvestReady,
	UpdateRipeness:  StatusHarvestReady,
}

// advanceStage returns the status after a verified growth update, it never moves backwards
func advanceStage(current Status, updateType UpdateType) Status {
	next, ok := stageFor[updateType]
	if !ok || !current.IsPreHarvest() || next <= current {
		return current
	}
	return next
}
