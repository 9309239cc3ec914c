package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
)

type msgFixture struct {
	users    *fakeUserRepo
	messages *fakeMessageRepo
	svc      *MessageService
	alice    *domain.User
	bob      *domain.User
}

func newMsgFixture(t *testing.T) *msgFixture {
	t.Helper()
	ctx := context.Background()

	users := newFakeUserRepo()
	messages := newFakeMessageRepo()
	transactions := newFakeTransactionRepo()

	alice := &domain.User{Name: "Alice", Email: "alice@ucp.edu.pk"}
	bob := &domain.User{Name: "Bob", Email: "bob@ucp.edu.pk"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	svc := NewMessageService(messages, users, transactions, events.NewInMemoryDispatcher())
	return &msgFixture{users: users, messages: messages, svc: svc, alice: alice, bob: bob}
}

func TestSendMessageValidation(t *testing.T) {
	f := newMsgFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: f.alice.ID, Content: "hi me"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: f.bob.ID, Content: "   "})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: "ghost", Content: "anyone there"})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestThreadMarksIncomingRead(t *testing.T) {
	f := newMsgFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: f.bob.ID, Content: "is the laptop still available"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: f.bob.ID, Content: "following up"})
	require.NoError(t, err)

	conversations, err := f.svc.Conversations(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0].UnreadCount)

	// reading the thread flips the incoming messages to read
	msgs, err := f.svc.Thread(ctx, f.bob.ID, f.alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	conversations, err = f.svc.Conversations(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCount)

	// re-reading is a no-op
	_, err = f.svc.Thread(ctx, f.bob.ID, f.alice.ID, 0)
	assert.NoError(t, err)

	// the sender's own view never counted them as unread
	conversations, err = f.svc.Conversations(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCount)
}

func TestMarkReadSingleMessage(t *testing.T) {
	f := newMsgFixture(t)
	ctx := context.Background()

	sent, err := f.svc.Send(ctx, f.alice.ID, MessageSendInput{ReceiverID: f.bob.ID, Content: "one off"})
	require.NoError(t, err)

	// only the receiver can mark it
	_, err = f.svc.MarkRead(ctx, f.alice.ID, sent.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	msg, err := f.svc.MarkRead(ctx, f.bob.ID, sent.ID)
	require.NoError(t, err)
	assert.True(t, msg.Read)
	assert.NotNil(t, msg.ReadAt)
}
