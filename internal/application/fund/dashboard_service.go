package fund

import (
	"context"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
)

// DashboardService summarizes the back office queues and the fund position
type DashboardService struct {
	members    membership.MemberRepository
	donations  fund.DonationRepository
	activities content.ActivityRepository
	stats      *ReconciliationService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	members membership.MemberRepository,
	donations fund.DonationRepository,
	activities content.ActivityRepository,
	stats *ReconciliationService,
) *DashboardService {
	return &DashboardService{members: members, donations: donations, activities: activities, stats: stats}
}

// Summary returns the admin dashboard counters
func (s *DashboardService) Summary(ctx context.Context) (*DashboardResponse, error) {
	pending := membership.MemberStatusPending
	pendingUsers, err := s.members.Count(ctx, membership.MemberFilter{Status: &pending})
	if err != nil {
		return nil, err
	}
	approved := membership.MemberStatusApproved
	totalMembers, err := s.members.Count(ctx, membership.MemberFilter{Status: &approved})
	if err != nil {
		return nil, err
	}
	pendingDonation := fund.DonationStatusPending
	pendingDonations, err := s.donations.Count(ctx, fund.DonationFilter{Status: &pendingDonation})
	if err != nil {
		return nil, err
	}
	totalActivities, err := s.activities.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.OrgStats(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{
		PendingUsers:     pendingUsers,
		PendingDonations: pendingDonations,
		TotalMembers:     totalMembers,
		TotalActivities:  totalActivities,
		Fund:             *stats,
	}, nil
}
