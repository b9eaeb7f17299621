package fund

import (
	"context"
	"errors"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DonationService handles payment submissions and their review
type DonationService struct {
	donations fund.DonationRepository
	members   membership.MemberRepository
	media     storage.MediaStorage
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
}

// NewDonationService creates a new DonationService. metrics may be nil.
func NewDonationService(
	donations fund.DonationRepository,
	members membership.MemberRepository,
	media storage.MediaStorage,
	publisher shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *DonationService {
	return &DonationService{
		donations: donations,
		members:   members,
		media:     media,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit records a pending payment for memberID. proof is optional.
func (s *DonationService) Submit(ctx context.Context, memberID uuid.UUID, req SubmitDonationRequest, proof *storage.Upload) (*DonationResponse, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !m.IsApproved() && !m.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only approved members can submit payments")
	}

	d, err := fund.NewDonation(fund.DonationInput{
		MemberID:      m.ID,
		MemberName:    m.Name,
		Amount:        req.Amount,
		Method:        fund.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
		Type:          fund.DonationType(req.Type),
		PaymentMonth:  req.PaymentMonth,
	})
	if err != nil {
		return nil, err
	}

	if proof != nil {
		ref, err := s.media.Put(ctx, storage.FolderProofs, proof.Data, proof.ContentType)
		if err != nil {
			return nil, err
		}
		d.AttachProof(ref)
	}

	if err := s.donations.Save(ctx, d); err != nil {
		s.removeBlob(ctx, d.ProofRef)
		return nil, err
	}

	s.logger.Info("Donation submitted",
		zap.String("donation_id", d.ID.String()),
		zap.String("member_id", memberID.String()),
		zap.String("method", d.Method.String()),
		zap.String("amount", d.Amount.String()))
	if s.metrics != nil {
		s.metrics.DonationSubmitted(ctx, d.Method.String())
	}
	publishPending(ctx, s.publisher, d, s.logger)

	resp := ToDonationResponse(d, s.proofURL(ctx, d.ProofRef))
	return &resp, nil
}

// SetStatus applies a reviewer decision. Repeating the current status changes
// nothing; a lost race with another reviewer returns a concurrency conflict.
func (s *DonationService) SetStatus(ctx context.Context, reviewerID, id uuid.UUID, decision fund.DonationStatus) (*DonationResponse, error) {
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := d.Status
	if err := d.SetStatus(decision); err != nil {
		return nil, err
	}
	if old != d.Status {
		if err := s.donations.UpdateStatus(ctx, d, old); err != nil {
			return nil, err
		}
		s.logger.Info("Donation reviewed",
			zap.String("donation_id", id.String()),
			zap.String("old_status", old.String()),
			zap.String("new_status", d.Status.String()),
			zap.String("reviewer_id", reviewerID.String()))
		if s.metrics != nil {
			s.metrics.Decided(ctx, "donation", d.Status.String())
		}
		publishPending(ctx, s.publisher, d, s.logger)
	}

	resp := ToDonationResponse(d, s.proofURL(ctx, d.ProofRef))
	return &resp, nil
}

// List returns a page of donations across all members
func (s *DonationService) List(ctx context.Context, f DonationListFilter) ([]DonationResponse, int64, error) {
	return s.list(ctx, f.toDomain())
}

// ListForMember returns a page of one member's donations
func (s *DonationService) ListForMember(ctx context.Context, memberID uuid.UUID, f DonationListFilter) ([]DonationResponse, int64, error) {
	filter := f.toDomain()
	filter.MemberID = &memberID
	return s.list(ctx, filter)
}

func (s *DonationService) list(ctx context.Context, filter fund.DonationFilter) ([]DonationResponse, int64, error) {
	donations, err := s.donations.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.donations.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DonationResponse, len(donations))
	for i := range donations {
		out[i] = ToDonationResponse(&donations[i], s.proofURL(ctx, donations[i].ProofRef))
	}
	return out, total, nil
}

// Get returns one donation
func (s *DonationService) Get(ctx context.Context, id uuid.UUID) (*DonationResponse, error) {
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDonationResponse(d, s.proofURL(ctx, d.ProofRef))
	return &resp, nil
}

// Delete removes a donation and its proof. A missing donation is not an error.
func (s *DonationService) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.donations.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.donations.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlob(ctx, d.ProofRef)
	s.logger.Info("Donation deleted",
		zap.String("donation_id", id.String()),
		zap.String("status", d.Status.String()))

	d.ClearDomainEvents()
	d.AddDomainEvent(fund.NewDonationDeletedEvent(d))
	publishPending(ctx, s.publisher, d, s.logger)
	return nil
}

func (s *DonationService) proofURL(ctx context.Context, ref string) string {
	if ref == "" || s.media == nil {
		return ""
	}
	url, err := s.media.URL(ctx, ref)
	if err != nil {
		s.logger.Warn("Cannot resolve proof URL", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return url
}

func (s *DonationService) removeBlob(ctx context.Context, ref string) {
	if ref == "" || s.media == nil {
		return
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete proof", zap.String("ref", ref), zap.Error(err))
	}
}
