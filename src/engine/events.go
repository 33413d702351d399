package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

type EventType string

const (
	EventProfileCreated     EventType = "ProfileCreated"
	EventProfileVerified    EventType = "ProfileVerified"
	EventScoreUpdated       EventType = "ScoreUpdated"
	EventEndorsementUpdated EventType = "EndorsementUpdated"
	EventProposalCreated    EventType = "ProposalCreated"
	EventVoteCast           EventType = "VoteCast"
	EventProposalExecuted   EventType = "ProposalExecuted"
	EventProposalCancelled  EventType = "ProposalCancelled"
	EventRewardsDistributed EventType = "RewardsDistributed"
)

// Event describes one state change. Events for the same entity are
// published in the order the operations were applied.
type Event struct {
	Type       EventType
	Address    string
	ProposalID uint64
	Payload    map[string]any
	At         time.Time
}

// Sink receives events after the transaction that produced them has
// committed. Implementations must not block the caller for long.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// recorder accumulates events during one operation. flush persists
// them inside the mutating transaction so the stored log keeps apply
// order even if the stream mirror lags.
type recorder struct {
	at     time.Time
	events []Event
}

func (r *recorder) emit(t EventType, address string, proposalID uint64, payload map[string]any) {
	r.events = append(r.events, Event{
		Type:       t,
		Address:    address,
		ProposalID: proposalID,
		Payload:    payload,
		At:         r.at,
	})
}

func (r *recorder) flush(tx *gorm.DB) error {
	for _, ev := range r.events {
		var payload []byte
		if ev.Payload != nil {
			payload, _ = json.Marshal(ev.Payload)
		}
		row := types.Event{
			Type:       string(ev.Type),
			Address:    ev.Address,
			ProposalID: ev.ProposalID,
			Payload:    string(payload),
			CreatedAt:  ev.At,
		}
		if err := tx.Create(&row).Error; err != nil {
			return internalErr("event log append", err)
		}
	}
	return nil
}
