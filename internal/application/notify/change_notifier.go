package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Collection names carried in change notifications
const (
	CollectionMembers    = "members"
	CollectionDonations  = "donations"
	CollectionLedger     = "ledger"
	CollectionNotices    = "notices"
	CollectionActivities = "activities"
)

var collections = map[string]string{
	membership.AggregateTypeMember: CollectionMembers,
	fund.AggregateTypeDonation:     CollectionDonations,
	fund.AggregateTypeLedgerEntry:  CollectionLedger,
	content.AggregateTypeNotice:    CollectionNotices,
	content.AggregateTypeActivity:  CollectionActivities,
}

var actions = map[string]string{
	membership.EventTypeMemberRegistered:     "created",
	membership.EventTypeMemberStatusChanged:  "status",
	membership.EventTypeMemberProfileUpdated: "updated",
	membership.EventTypeMemberMessaged:       "messaged",
	membership.EventTypeMemberDeleted:        "deleted",
	fund.EventTypeDonationSubmitted:          "created",
	fund.EventTypeDonationStatusChanged:      "status",
	fund.EventTypeDonationDeleted:            "deleted",
	fund.EventTypeLedgerEntryRecorded:        "saved",
	fund.EventTypeLedgerEntryDeleted:         "deleted",
	content.EventTypeNoticePublished:         "created",
	content.EventTypeNoticeUpdated:           "updated",
	content.EventTypeNoticeDeleted:           "deleted",
	content.EventTypeActivityPublished:       "created",
	content.EventTypeActivityUpdated:         "updated",
	content.EventTypeActivityDeleted:         "deleted",
}

// ChangeFromEvent describes a domain event as a change notification
func ChangeFromEvent(ev shared.DomainEvent) Change {
	collection, ok := collections[ev.AggregateType()]
	if !ok {
		collection = ev.AggregateType()
	}
	action, ok := actions[ev.EventType()]
	if !ok {
		action = "changed"
	}
	return Change{
		Collection: collection,
		Action:     action,
		ID:         ev.AggregateID().String(),
		At:         ev.OccurredAt(),
	}
}

// StatsInvalidator drops cached fund statistics
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ChangeNotifier reacts to every domain event: cached stats are dropped,
// local stream clients are told, and other instances are notified.
type ChangeNotifier struct {
	stats       StatsInvalidator
	hub         *Hub
	broadcaster cache.ChangeBroadcaster
	logger      *zap.Logger
}

// NewChangeNotifier creates a new ChangeNotifier. broadcaster may be nil.
func NewChangeNotifier(stats StatsInvalidator, hub *Hub, broadcaster cache.ChangeBroadcaster, logger *zap.Logger) *ChangeNotifier {
	return &ChangeNotifier{
		stats:       stats,
		hub:         hub,
		broadcaster: broadcaster,
		logger:      logger.Named("change_notifier"),
	}
}

// Handle implements shared.EventHandler
func (n *ChangeNotifier) Handle(ctx context.Context, ev shared.DomainEvent) error {
	change := ChangeFromEvent(ev)
	n.apply(ctx, change)

	if n.broadcaster == nil {
		return nil
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := n.broadcaster.Publish(ctx, payload); err != nil {
		n.logger.Warn("Failed to relay change", zap.String("collection", change.Collection), zap.Error(err))
	}
	return nil
}

// EventTypes implements shared.EventHandler. The notifier wants every event.
func (n *ChangeNotifier) EventTypes() []string {
	return nil
}

// RunRemote applies changes relayed by other instances until ctx is done
func (n *ChangeNotifier) RunRemote(ctx context.Context) error {
	if n.broadcaster == nil {
		<-ctx.Done()
		return nil
	}
	return n.broadcaster.Run(ctx, func(payload []byte) {
		var change Change
		if err := json.Unmarshal(payload, &change); err != nil {
			n.logger.Warn("Dropping unreadable change", zap.Error(err))
			return
		}
		applyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		n.apply(applyCtx, change)
	})
}

func (n *ChangeNotifier) apply(ctx context.Context, change Change) {
	if n.stats != nil {
		if err := n.stats.Invalidate(ctx); err != nil {
			n.logger.Warn("Failed to invalidate fund stats", zap.Error(err))
		}
	}
	if n.hub != nil {
		n.hub.Broadcast(change)
	}
}

var _ shared.EventHandler = (*ChangeNotifier)(nil)
