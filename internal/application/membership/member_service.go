// Package membership holds the member administration use cases: review,
// profile edits, the admin message log and the committee listing.
package membership

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecisionRecorder counts review decisions
type DecisionRecorder interface {
	Decided(ctx context.Context, subject, decision string)
}

// TokenRevoker cuts off every token already issued to a member
type TokenRevoker interface {
	RevokeMember(ctx context.Context, memberID string, ttl time.Duration) error
}

// MemberServiceConfig holds the organization settings the service needs
type MemberServiceConfig struct {
	// CommitteePositions ranks committee titles, highest first
	CommitteePositions []string
	// RevocationTTL is how long a member-wide revocation is kept; it should
	// cover the refresh token lifetime.
	RevocationTTL time.Duration
}

// MemberService handles member administration
type MemberService struct {
	repo      membership.MemberRepository
	publisher shared.EventPublisher
	revoker   TokenRevoker
	metrics   DecisionRecorder
	config    MemberServiceConfig
	logger    *zap.Logger
}

// NewMemberService creates a new MemberService. revoker and metrics may be nil.
func NewMemberService(
	repo membership.MemberRepository,
	publisher shared.EventPublisher,
	revoker TokenRevoker,
	metrics DecisionRecorder,
	config MemberServiceConfig,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		repo:      repo,
		publisher: publisher,
		revoker:   revoker,
		metrics:   metrics,
		config:    config,
		logger:    logger,
	}
}

// List returns a page of members
func (s *MemberService) List(ctx context.Context, f MemberListFilter) ([]MemberResponse, int64, error) {
	filter := membership.MemberFilter{Filter: shared.DefaultFilter()}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" {
		st := membership.MemberStatus(f.Status)
		filter.Status = &st
	}
	if f.Role != "" {
		role := membership.Role(f.Role)
		filter.Role = &role
	}

	members, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = ToMemberResponse(&members[i])
	}
	return out, total, nil
}

// Get returns one member
func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMemberResponse(m)
	return &resp, nil
}

// SetStatus approves or rejects a member. Re-reviewing is allowed; repeating
// the current decision changes nothing.
func (s *MemberService) SetStatus(ctx context.Context, actor Actor, id uuid.UUID, decision membership.MemberStatus) (*MemberResponse, error) {
	if actor.MemberID == id {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot review your own account")
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsAdmin() && !actor.Admin {
		return nil, shared.NewDomainError("FORBIDDEN", "Only an admin can review an admin account")
	}

	old := m.Status
	if err := m.SetStatus(decision); err != nil {
		return nil, err
	}
	if old != m.Status {
		if err := s.repo.UpdateStatus(ctx, m); err != nil {
			return nil, err
		}
		s.logger.Info("Member reviewed",
			zap.String("member_id", id.String()),
			zap.String("old_status", old.String()),
			zap.String("new_status", m.Status.String()),
			zap.String("reviewer_id", actor.MemberID.String()))
		if m.Status == membership.MemberStatusRejected {
			s.revokeTokens(ctx, id)
		}
		if s.metrics != nil {
			s.metrics.Decided(ctx, "member", m.Status.String())
		}
		s.publish(ctx, m)
	}

	resp := ToMemberResponse(m)
	return &resp, nil
}

// Update applies an admin edit
func (s *MemberService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateMemberRequest) (*MemberResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && (req.Role != nil || req.Permissions != nil || m.IsAdmin()) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only an admin can change roles, permissions or admin accounts")
	}
	if !actor.Admin && req.changesDues() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only an admin can change dues, payments or joining dates")
	}

	if req.Name != nil || req.Phone != nil || req.Address != nil || req.BloodGroup != nil {
		contact := membership.Contact{Name: m.Name, Phone: m.Phone, Address: m.Address, BloodGroup: m.BloodGroup}
		if req.Name != nil {
			contact.Name = *req.Name
		}
		if req.Phone != nil {
			contact.Phone = *req.Phone
		}
		if req.Address != nil {
			contact.Address = *req.Address
		}
		if req.BloodGroup != nil {
			contact.BloodGroup = *req.BloodGroup
		}
		if err := m.UpdateContact(contact); err != nil {
			return nil, err
		}
	}
	if req.Position != nil {
		m.SetPosition(*req.Position)
	}
	if req.MonthlyAmount != nil {
		if err := m.SetMonthlyAmount(*req.MonthlyAmount); err != nil {
			return nil, err
		}
	}
	if req.ManualDue.Set {
		m.SetManualDue(req.ManualDue.Value)
	}
	if req.ManualTotalPaid.Set {
		m.SetManualTotalPaid(req.ManualTotalPaid.Value)
	}
	if req.PaidMonths != nil {
		if err := m.SetPaidMonths(*req.PaidMonths); err != nil {
			return nil, err
		}
	}
	if req.Permissions != nil {
		m.SetPermissions(*req.Permissions)
	}
	if req.Role != nil {
		if actor.MemberID == id && membership.Role(*req.Role) != m.Role {
			return nil, shared.NewDomainError("FORBIDDEN", "You cannot change your own role")
		}
		if err := m.SetRole(membership.Role(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.JoiningDate != nil {
		if err := m.SetJoiningDate(*req.JoiningDate); err != nil {
			return nil, err
		}
	}

	m.MarkProfileUpdated()
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Member updated",
		zap.String("member_id", id.String()),
		zap.String("editor_id", actor.MemberID.String()))
	s.publish(ctx, m)

	resp := ToMemberResponse(m)
	return &resp, nil
}

// UpdateProfile lets a member edit their own contact details
func (s *MemberService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*MemberResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.UpdateContact(membership.Contact{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
	}); err != nil {
		return nil, err
	}
	m.MarkProfileUpdated()
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.publish(ctx, m)

	resp := ToMemberResponse(m)
	return &resp, nil
}

// SendMessage appends a message to a member's log
func (s *MemberService) SendMessage(ctx context.Context, actor Actor, id uuid.UUID, text string) (*MessageResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sender := membership.DefaultMessageSender
	if !actor.Admin && actor.Name != "" {
		sender = actor.Name
	}
	msg, err := m.AppendMessage(text, sender)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendMessage(ctx, m.ID, msg); err != nil {
		return nil, err
	}
	s.publish(ctx, m)

	resp := ToMessageResponse(msg)
	return &resp, nil
}

// Messages returns a member's message log, newest first
func (s *MemberService) Messages(ctx context.Context, id uuid.UUID) ([]MessageResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs := m.MessagesByRecency()
	out := make([]MessageResponse, len(msgs))
	for i, msg := range msgs {
		out[i] = ToMessageResponse(msg)
	}
	return out, nil
}

// Delete removes a member and the message log. A missing member is not an
// error. Donations are kept so past fund totals do not change.
func (s *MemberService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.MemberID == id {
		return shared.NewDomainError("FORBIDDEN", "You cannot delete your own account")
	}
	m, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if m.IsAdmin() && !actor.Admin {
		return shared.NewDomainError("FORBIDDEN", "Only an admin can delete an admin account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Member deleted",
		zap.String("member_id", id.String()),
		zap.String("deleted_by", actor.MemberID.String()))
	s.revokeTokens(ctx, id)

	m.ClearDomainEvents()
	m.AddDomainEvent(membership.NewMemberDeletedEvent(m))
	s.publish(ctx, m)
	return nil
}

// Committee lists approved members holding a titled position, ordered by the
// configured rank and then by name. Unranked titles come last.
func (s *MemberService) Committee(ctx context.Context) ([]CommitteeMemberResponse, error) {
	approved := membership.MemberStatusApproved
	members, err := s.repo.FindAll(ctx, membership.MemberFilter{
		Filter:        shared.Filter{OrderBy: "name", OrderDir: "asc"},
		Status:        &approved,
		CommitteeOnly: true,
	})
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(s.config.CommitteePositions))
	for i, p := range s.config.CommitteePositions {
		rank[strings.ToLower(p)] = i
	}
	rankOf := func(position string) int {
		if r, ok := rank[strings.ToLower(position)]; ok {
			return r
		}
		return len(rank)
	}

	out := make([]CommitteeMemberResponse, 0, len(members))
	for i := range members {
		m := &members[i]
		if !m.IsCommittee() {
			continue
		}
		out = append(out, CommitteeMemberResponse{
			ID:         m.ID,
			Name:       m.Name,
			Position:   m.Position,
			Phone:      m.Phone,
			BloodGroup: m.BloodGroup,
		})
	}
	slices.SortStableFunc(out, func(a, b CommitteeMemberResponse) int {
		return rankOf(a.Position) - rankOf(b.Position)
	})
	return out, nil
}

func (s *MemberService) revokeTokens(ctx context.Context, id uuid.UUID) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeMember(ctx, id.String(), s.config.RevocationTTL); err != nil {
		s.logger.Error("Failed to revoke member tokens", zap.String("member_id", id.String()), zap.Error(err))
	}
}

func (s *MemberService) publish(ctx context.Context, m *membership.Member) {
	if s.publisher == nil {
		m.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.publisher, m); err != nil {
		s.logger.Error("Failed to publish member events", zap.String("member_id", m.ID.String()), zap.Error(err))
	}
}
