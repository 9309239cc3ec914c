package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusHappyPath(t *testing.T) {
	steps := []struct {
		action TransitionAction
		actor  Party
		want   TransactionStatus
	}{
		{ActionAccept, PartySeller, TransactionStatusAccepted},
		{ActionAdvancePaid, PartyBuyer, TransactionStatusAdvancePaid},
		{ActionWorkCompleted, PartySeller, TransactionStatusWorkCompleted},
		{ActionFinalPaid, PartyBuyer, TransactionStatusFinalPaid},
		{ActionComplete, PartyBuyer, TransactionStatusCompleted},
	}

	current := TransactionStatusPending
	for _, step := range steps {
		next, err := NextStatus(current, step.action, step.actor)
		require.NoError(t, err, "action %s from %s", step.action, current)
		assert.Equal(t, step.want, next)
		current = next
	}
	assert.True(t, current.IsTerminal())
}

func TestNextStatusRejectsWrongActor(t *testing.T) {
	cases := []struct {
		name    string
		current TransactionStatus
		action  TransitionAction
		actor   Party
	}{
		{"buyer cannot accept", TransactionStatusPending, ActionAccept, PartyBuyer},
		{"seller cannot pay advance", TransactionStatusAccepted, ActionAdvancePaid, PartySeller},
		{"buyer cannot complete work", TransactionStatusAdvancePaid, ActionWorkCompleted, PartyBuyer},
		{"seller cannot pay final", TransactionStatusWorkCompleted, ActionFinalPaid, PartySeller},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NextStatus(tc.current, tc.action, tc.actor)
			assert.ErrorIs(t, err, ErrTransitionNotAllowed)
		})
	}
}

func TestNextStatusRejectsWrongState(t *testing.T) {
	cases := []struct {
		name    string
		current TransactionStatus
		action  TransitionAction
		actor   Party
	}{
		{"cannot skip to final payment", TransactionStatusAccepted, ActionFinalPaid, PartyBuyer},
		{"cannot accept twice", TransactionStatusAccepted, ActionAccept, PartySeller},
		{"cannot cancel after advance", TransactionStatusAdvancePaid, ActionCancel, PartyBuyer},
		{"cannot dispute before money moves", TransactionStatusPending, ActionDispute, PartyBuyer},
		{"cannot dispute pending accept", TransactionStatusAccepted, ActionDispute, PartySeller},
		{"terminal completed", TransactionStatusCompleted, ActionCancel, PartyBuyer},
		{"terminal cancelled", TransactionStatusCancelled, ActionAccept, PartySeller},
		{"terminal disputed", TransactionStatusDisputed, ActionComplete, PartyBuyer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NextStatus(tc.current, tc.action, tc.actor)
			assert.ErrorIs(t, err, ErrTransitionNotAllowed)
		})
	}
}

func TestCancelAndDisputeWindows(t *testing.T) {
	for _, status := range []TransactionStatus{TransactionStatusPending, TransactionStatusAccepted} {
		next, err := NextStatus(status, ActionCancel, PartyBuyer)
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusCancelled, next)

		next, err = NextStatus(status, ActionCancel, PartySeller)
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusCancelled, next)
	}

	for _, status := range []TransactionStatus{TransactionStatusAdvancePaid, TransactionStatusWorkCompleted, TransactionStatusFinalPaid} {
		next, err := NextStatus(status, ActionDispute, PartySeller)
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusDisputed, next)
	}
}

func TestSplitPayment(t *testing.T) {
	cases := []struct {
		amount  int64
		advance int64
		final   int64
	}{
		{1000, 250, 750},
		{100, 25, 75},
		{101, 25, 76},
		{9999, 2499, 7500},
		{10000, 2500, 7500},
	}
	for _, tc := range cases {
		advance, final := SplitPayment(tc.amount)
		assert.Equal(t, tc.advance, advance, "advance of %d", tc.amount)
		assert.Equal(t, tc.final, final, "final of %d", tc.amount)
		assert.Equal(t, tc.amount, advance+final, "legs must sum back for %d", tc.amount)
	}
}

func TestNewTransaction(t *testing.T) {
	svc := &Service{
		ID:       "svc-1",
		SellerID: "seller-1",
		Price:    1000,
	}
	tx := NewTransaction("buyer-1", svc, "logo with three drafts")

	assert.Equal(t, TransactionStatusPending, tx.Status)
	assert.Equal(t, int64(1000), tx.Amount)
	assert.Equal(t, int64(250), tx.Payment.Advance.Amount)
	assert.Equal(t, int64(750), tx.Payment.Final.Amount)
	assert.False(t, tx.Payment.Advance.Paid)
	assert.False(t, tx.Payment.Final.Paid)
	assert.Equal(t, "logo with three drafts", tx.WorkDetails.Requirements)
}

func TestPartyOf(t *testing.T) {
	tx := &Transaction{BuyerID: "b", SellerID: "s"}
	assert.Equal(t, PartyBuyer, tx.PartyOf("b"))
	assert.Equal(t, PartySeller, tx.PartyOf("s"))
	assert.Equal(t, Party(""), tx.PartyOf("stranger"))
}

func TestRequiredActor(t *testing.T) {
	assert.Equal(t, PartySeller, RequiredActor(ActionAccept))
	assert.Equal(t, PartyBuyer, RequiredActor(ActionAdvancePaid))
	assert.Equal(t, PartySeller, RequiredActor(ActionWorkCompleted))
	assert.Equal(t, PartyBuyer, RequiredActor(ActionFinalPaid))
	assert.Equal(t, PartyAny, RequiredActor(ActionComplete))
	assert.Equal(t, PartyAny, RequiredActor(ActionCancel))
	assert.Equal(t, PartyAny, RequiredActor(ActionDispute))
}
