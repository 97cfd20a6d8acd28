package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

func TestResolveSymmetric(t *testing.T) {
	users := newFakeUserRepo(
		&user.User{ID: 1, Username: "bob"},
		&user.User{ID: 2, Username: "alice"},
	)
	r := NewConversationResolver(&fakeMessageRepo{}, users)

	ab, err := r.Resolve(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("resolve(1,2): %v", err)
	}
	ba, err := r.Resolve(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("resolve(2,1): %v", err)
	}
	if ab != ba {
		t.Fatalf("expected symmetric conversation id, got %q and %q", ab, ba)
	}
	if ab != "alice_bob" {
		t.Fatalf("expected canonical ordering alice_bob, got %q", ab)
	}
}

func TestResolveReusesLastMessage(t *testing.T) {
	users := newFakeUserRepo(
		&user.User{ID: 1, Username: "bob"},
		&user.User{ID: 2, Username: "alice"},
	)
	msgs := &fakeMessageRepo{}
	if err := msgs.Create(context.Background(), &message.Message{
		SenderID: 2, ReceiverID: 1, Content: "hi", ConversationID: "legacy_id",
	}); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	r := NewConversationResolver(msgs, users)
	got, err := r.Resolve(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "legacy_id" {
		t.Fatalf("expected prior conversation id to be reused, got %q", got)
	}
}

func TestResolveUnknownParticipant(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Username: "bob"})
	r := NewConversationResolver(&fakeMessageRepo{}, users)

	_, err := r.Resolve(context.Background(), 1, 99)
	if !errors.Is(err, ErrUnknownParticipant) {
		t.Fatalf("expected ErrUnknownParticipant, got %v", err)
	}
}

// 同一对用户首次会话同时走两条写入路径（worker 解析 + 网关直写）时，
// 两边必须得到同一个会话号
func TestResolveConcurrentFirstContact(t *testing.T) {
	users := newFakeUserRepo(
		&user.User{ID: 1, Username: "bob"},
		&user.User{ID: 2, Username: "alice"},
	)
	msgs := &fakeMessageRepo{}
	r := NewConversationResolver(msgs, users)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		// worker 路径：解析后落库
		go func() {
			defer wg.Done()
			id, err := r.Resolve(context.Background(), 1, 2)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			_ = msgs.Create(context.Background(), &message.Message{
				SenderID: 1, ReceiverID: 2, Content: "auto", ConversationID: id,
			})
		}()
		// 网关路径：直接带会话号落库
		go func() {
			defer wg.Done()
			id, err := r.Resolve(context.Background(), 2, 1)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			_ = msgs.Create(context.Background(), &message.Message{
				SenderID: 2, ReceiverID: 1, Content: "live", ConversationID: id,
			})
		}()
	}
	wg.Wait()

	list, err := msgs.ListConversation(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != rounds*2 {
		t.Fatalf("expected %d messages, got %d", rounds*2, len(list))
	}
	for _, m := range list {
		if m.ConversationID != "alice_bob" {
			t.Fatalf("conversation id corrupted: %q", m.ConversationID)
		}
	}
}
