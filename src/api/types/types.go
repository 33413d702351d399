package types

import "time"

// Profiles. One row per wallet address; addresses are stored
// lowercase and rows are never deleted.
type Profile struct {
	Address          string `gorm:"primaryKey;size:64"`
	Username         string `gorm:"size:30;uniqueIndex;not null"`
	Verified         bool   `gorm:"default:false"`
	TrustScore       uint32 `gorm:"not null;default:100"`
	TradingMetric    uint32 `gorm:"default:0"`
	GovernanceMetric uint32 `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Endorsements between profiles. Revocation marks the row inactive;
// re-endorsing creates a fresh row.
type Endorsement struct {
	ID        uint64 `gorm:"primaryKey"`
	Endorser  string `gorm:"size:64;index:idx_endorsement_pair;not null"`
	Endorsed  string `gorm:"size:64;index:idx_endorsement_pair;index;not null"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Proposal status values.
const (
	ProposalActive    = "Active"
	ProposalSucceeded = "Succeeded"
	ProposalDefeated  = "Defeated"
	ProposalCancelled = "Cancelled"
)

// Governance proposals
type Proposal struct {
	ID             uint64 `gorm:"primaryKey"`
	Proposer       string `gorm:"size:64;index;not null"`
	Title          string `gorm:"size:255;not null"`
	Description    string `gorm:"type:text"`
	Category       string `gorm:"size:32"`
	Status         string `gorm:"size:16;index;default:Active"`
	ForVotes       uint64 `gorm:"default:0"`
	AgainstVotes   uint64 `gorm:"default:0"`
	VotingDeadline time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Votes          []Vote `gorm:"foreignKey:ProposalID"`
}

// Votes; voting power is frozen at cast time.
type Vote struct {
	ID          uint64 `gorm:"primaryKey"`
	ProposalID  uint64 `gorm:"uniqueIndex:idx_vote_once;index;not null"`
	Voter       string `gorm:"size:64;uniqueIndex:idx_vote_once;not null"`
	Support     bool
	VotingPower uint32 `gorm:"not null"`
	Reason      string `gorm:"size:512"`
	CreatedAt   time.Time
}

// Accrued but unclaimed rewards
type PendingReward struct {
	Address   string `gorm:"primaryKey;size:64"`
	Amount    uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Reward ledger balances (credited on claim)
type LedgerBalance struct {
	Address   string `gorm:"primaryKey;size:64"`
	Balance   uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Privileged operators
type Operator struct {
	Address string `gorm:"primaryKey;size:64"`
}

// Event log; appended in the same transaction as the state change it
// describes, so per-entity ordering matches apply order.
type Event struct {
	ID         uint64 `gorm:"primaryKey"`
	Type       string `gorm:"size:32;index;not null"`
	Address    string `gorm:"size:64;index"`
	ProposalID uint64 `gorm:"index"`
	Payload    string `gorm:"type:text"`
	CreatedAt  time.Time
}
