package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

func proposalKey(id uint64) string { return fmt.Sprintf("proposal/%d", id) }

// CreateProposal opens a proposal for voting. The proposer's trust
// score must meet the creation threshold; the voting deadline is fixed
// at creation and never moves.
func (e *Engine) CreateProposal(ctx context.Context, proposer, title, description, category string) (*types.Proposal, error) {
	addr := normalize(proposer)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var proposal types.Proposal
	err := e.mutate(ctx, addr, func(tx *gorm.DB, rec *recorder) error {
		var profile types.Profile
		if err := loadProfile(tx, addr, &profile); err != nil {
			return err
		}
		if profile.TrustScore < e.cfg.ProposalThreshold {
			return ErrInsufficientReputation
		}

		proposal = types.Proposal{
			Proposer:       addr,
			Title:          title,
			Description:    description,
			Category:       category,
			Status:         types.ProposalActive,
			VotingDeadline: rec.at.Add(e.cfg.VotingPeriod),
			CreatedAt:      rec.at,
			UpdatedAt:      rec.at,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			return internalErr("proposal create", err)
		}

		rec.emit(EventProposalCreated, addr, proposal.ID, map[string]any{
			"title":          title,
			"category":       category,
			"votingDeadline": proposal.VotingDeadline,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Vote casts a reputation-weighted vote. Voting power is the voter's
// trust score at cast time and is frozen on the vote record.
func (e *Engine) Vote(ctx context.Context, proposalID uint64, voter string, support bool, reason string) (*types.Vote, error) {
	addr := normalize(voter)

	var vote types.Vote
	err := e.mutate(ctx, proposalKey(proposalID), func(tx *gorm.DB, rec *recorder) error {
		var proposal types.Proposal
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if proposal.Status != types.ProposalActive {
			return ErrProposalNotActive
		}
		if rec.at.After(proposal.VotingDeadline) {
			return ErrVotingPeriodEnded
		}

		var profile types.Profile
		if err := loadProfile(tx, addr, &profile); err != nil {
			return err
		}
		if profile.TrustScore < e.cfg.MinVotingPower {
			return ErrInsufficientReputation
		}

		var existing types.Vote
		switch err := tx.First(&existing, "proposal_id = ? AND voter = ?", proposalID, addr).Error; err {
		case nil:
			return ErrAlreadyVoted
		case gorm.ErrRecordNotFound:
		default:
			return internalErr("vote lookup", err)
		}

		vote = types.Vote{
			ProposalID:  proposalID,
			Voter:       addr,
			Support:     support,
			VotingPower: profile.TrustScore,
			Reason:      reason,
			CreatedAt:   rec.at,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return internalErr("vote create", err)
		}

		if support {
			proposal.ForVotes += uint64(vote.VotingPower)
		} else {
			proposal.AgainstVotes += uint64(vote.VotingPower)
		}
		proposal.UpdatedAt = rec.at
		if err := tx.Save(&proposal).Error; err != nil {
			return internalErr("tally update", err)
		}

		rec.emit(EventVoteCast, addr, proposalID, map[string]any{
			"support":      support,
			"votingPower":  vote.VotingPower,
			"forVotes":     proposal.ForVotes,
			"againstVotes": proposal.AgainstVotes,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ExecuteProposal finalizes an active proposal after its deadline.
// Strict majority is required: a tie, like an empty tally, defeats the
// proposal. Winning-side voters accrue pending rewards proportional to
// their frozen voting power.
func (e *Engine) ExecuteProposal(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	var proposal types.Proposal
	err := e.mutate(ctx, proposalKey(proposalID), func(tx *gorm.DB, rec *recorder) error {
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if proposal.Status != types.ProposalActive {
			return ErrProposalNotActive
		}
		if !rec.at.After(proposal.VotingDeadline) {
			return ErrVotingPeriodNotEnded
		}

		winningSide, hasWinner := false, false
		if proposal.ForVotes > proposal.AgainstVotes {
			proposal.Status = types.ProposalSucceeded
			winningSide, hasWinner = true, true
		} else {
			proposal.Status = types.ProposalDefeated
			// Against wins outright only on a strict majority.
			if proposal.AgainstVotes > proposal.ForVotes {
				winningSide, hasWinner = false, true
			}
		}
		proposal.UpdatedAt = rec.at
		if err := tx.Save(&proposal).Error; err != nil {
			return internalErr("proposal finalize", err)
		}

		rewarded := 0
		if hasWinner {
			var winners []types.Vote
			err := tx.Where("proposal_id = ? AND support = ?", proposalID, winningSide).Find(&winners).Error
			if err != nil {
				return internalErr("winner lookup", err)
			}
			for _, w := range winners {
				amount := uint64(w.VotingPower) * e.cfg.VoterRewardRate
				if amount == 0 {
					continue
				}
				if err := accrueReward(tx, w.Voter, amount, rec); err != nil {
					return err
				}
				rewarded++
			}
		}

		rec.emit(EventProposalExecuted, proposal.Proposer, proposalID, map[string]any{
			"status":         proposal.Status,
			"forVotes":       proposal.ForVotes,
			"againstVotes":   proposal.AgainstVotes,
			"rewardedVoters": rewarded,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// CancelProposal withdraws an active proposal. Only the proposer or an
// operator may cancel; no rewards accrue.
func (e *Engine) CancelProposal(ctx context.Context, caller string, proposalID uint64) (*types.Proposal, error) {
	addr := normalize(caller)

	var proposal types.Proposal
	err := e.mutate(ctx, proposalKey(proposalID), func(tx *gorm.DB, rec *recorder) error {
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if addr != proposal.Proposer {
			if ok, err := e.isOperator(tx, addr); err != nil {
				return err
			} else if !ok {
				return ErrNotAuthorized
			}
		}
		if proposal.Status != types.ProposalActive {
			return ErrProposalNotActive
		}

		proposal.Status = types.ProposalCancelled
		proposal.UpdatedAt = rec.at
		if err := tx.Save(&proposal).Error; err != nil {
			return internalErr("proposal cancel", err)
		}

		rec.emit(EventProposalCancelled, addr, proposalID, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (e *Engine) GetProposal(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	var proposal types.Proposal
	if err := loadProposal(e.db.WithContext(ctx), proposalID, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListProposals pages proposals, newest first.
func (e *Engine) ListProposals(ctx context.Context, limit, offset int) ([]types.Proposal, error) {
	if limit <= 0 {
		return nil, ErrInvalidRange
	}
	if offset < 0 {
		offset = 0
	}
	var rows []types.Proposal
	err := e.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, internalErr("proposal list", err)
	}
	return rows, nil
}

// ListVotes returns the votes on a proposal in cast order.
func (e *Engine) ListVotes(ctx context.Context, proposalID uint64) ([]types.Vote, error) {
	var proposal types.Proposal
	if err := loadProposal(e.db.WithContext(ctx), proposalID, &proposal); err != nil {
		return nil, err
	}
	var rows []types.Vote
	err := e.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, internalErr("vote list", err)
	}
	return rows, nil
}

func loadProposal(tx *gorm.DB, id uint64, out *types.Proposal) error {
	err := tx.First(out, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return ErrProposalNotFound
	}
	if err != nil {
		return internalErr("proposal lookup", err)
	}
	return nil
}
