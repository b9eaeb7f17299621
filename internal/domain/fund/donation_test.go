package fund

import (
	"testing"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDonationInput() DonationInput {
	return DonationInput{
		MemberID:      uuid.New(),
		MemberName:    "Rahim",
		Amount:        decimal.NewFromInt(500),
		Method:        PaymentMethodBkash,
		TransactionID: "8N7A6B5C4D",
	}
}

func TestNewDonation(t *testing.T) {
	t.Run("creates pending subscription by default", func(t *testing.T) {
		d, err := NewDonation(validDonationInput())

		require.NoError(t, err)
		assert.Equal(t, DonationStatusPending, d.Status)
		assert.Equal(t, DonationTypeSubscription, d.Type)
		assert.False(t, d.IsApproved())

		events := d.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeDonationSubmitted, events[0].EventType())
	})

	t.Run("accepts payment month label", func(t *testing.T) {
		in := validDonationInput()
		in.PaymentMonth = " March  2025 "
		d, err := NewDonation(in)

		require.NoError(t, err)
		assert.Equal(t, "March 2025", d.PaymentMonth)
	})

	t.Run("cash does not need transaction id", func(t *testing.T) {
		in := validDonationInput()
		in.Method = PaymentMethodCash
		in.TransactionID = ""
		_, err := NewDonation(in)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*DonationInput)
		code   string
	}{
		{"zero amount", func(in *DonationInput) { in.Amount = decimal.Zero }, "INVALID_AMOUNT"},
		{"negative amount", func(in *DonationInput) { in.Amount = decimal.NewFromInt(-10) }, "INVALID_AMOUNT"},
		{"unknown method", func(in *DonationInput) { in.Method = "Paypal" }, "INVALID_METHOD"},
		{"missing transaction id", func(in *DonationInput) { in.TransactionID = " " }, "INVALID_TRANSACTION_ID"},
		{"unknown type", func(in *DonationInput) { in.Type = "Gift" }, "INVALID_TYPE"},
		{"bad month label", func(in *DonationInput) { in.PaymentMonth = "2025-03" }, "INVALID_MONTH"},
		{"missing member", func(in *DonationInput) { in.MemberID = uuid.Nil }, "INVALID_MEMBER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validDonationInput()
			tt.mutate(&in)
			_, err := NewDonation(in)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestDonation_StatusTransitions(t *testing.T) {
	newPending := func(t *testing.T) *Donation {
		d, err := NewDonation(validDonationInput())
		require.NoError(t, err)
		d.ClearDomainEvents()
		return d
	}

	t.Run("pending to approved", func(t *testing.T) {
		d := newPending(t)
		require.NoError(t, d.Approve())

		assert.True(t, d.IsApproved())
		assert.Equal(t, 2, d.Version)
		evt, ok := d.GetDomainEvents()[0].(*DonationStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, DonationStatusPending, evt.OldStatus)
		assert.Equal(t, DonationStatusApproved, evt.NewStatus)
	})

	t.Run("pending to rejected", func(t *testing.T) {
		d := newPending(t)
		require.NoError(t, d.Reject())
		assert.Equal(t, DonationStatusRejected, d.Status)
	})

	t.Run("approved can be rejected", func(t *testing.T) {
		d := newPending(t)
		require.NoError(t, d.Approve())
		require.NoError(t, d.Reject())
		assert.Equal(t, DonationStatusRejected, d.Status)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		d := newPending(t)
		require.NoError(t, d.Reject())

		err := d.Approve()
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, DonationStatusRejected, d.Status)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		d := newPending(t)
		require.NoError(t, d.Approve())
		d.ClearDomainEvents()

		require.NoError(t, d.Approve())
		assert.Empty(t, d.GetDomainEvents())
		assert.Equal(t, 2, d.Version)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		d := newPending(t)
		err := d.SetStatus(DonationStatusPending)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATUS", de.Code)
	})
}

func TestDonationStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, DonationStatusPending.CanTransitionTo(DonationStatusApproved))
	assert.True(t, DonationStatusPending.CanTransitionTo(DonationStatusRejected))
	assert.True(t, DonationStatusApproved.CanTransitionTo(DonationStatusRejected))
	assert.False(t, DonationStatusApproved.CanTransitionTo(DonationStatusPending))
	assert.False(t, DonationStatusRejected.CanTransitionTo(DonationStatusApproved))
	assert.False(t, DonationStatusRejected.CanTransitionTo(DonationStatusPending))
	assert.True(t, DonationStatusRejected.IsTerminal())
}
