package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahmetcancakir06/nodelab-case/internal/broker"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/automessage"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

var errNotFound = errors.New("record not found")

type fakePresence struct {
	mu      sync.Mutex
	members map[int64]bool
	err     error
}

func newFakePresence(ids ...int64) *fakePresence {
	m := make(map[int64]bool)
	for _, id := range ids {
		m[id] = true
	}
	return &fakePresence{members: m}
}

func (f *fakePresence) Add(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[id] = true
	return nil
}

func (f *fakePresence) Remove(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, id)
	return nil
}

func (f *fakePresence) Members(_ context.Context) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, 0, len(f.members))
	for id := range f.members {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakePresence) IsMember(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[id], nil
}

func (f *fakePresence) Count(_ context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.members)), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	m := make(map[int64]*user.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted {
		return nil, errNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && !u.Deleted {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && !u.Deleted {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = int64(len(f.users) + 1)
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) ListActive(_ context.Context) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.users {
		if !u.Deleted {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListByIDs(_ context.Context, ids []int64) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok && !u.Deleted {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []*message.Message
	createErr func() error // 为空表示始终成功
}

func (f *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	if f.createErr != nil {
		if err := f.createErr(); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.messages) + 1)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) LastBetween(_ context.Context, a, b int64) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) ListConversation(_ context.Context, a, b int64) ([]*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*message.Message
	for _, m := range f.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, receiverID, senderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID {
			m.IsRead = true
		}
	}
	return nil
}

type fakeAutoRepo struct {
	mu            sync.Mutex
	autos         map[int64]*automessage.AutoMessage
	created       []*automessage.AutoMessage
	nextID        int64
	createErr     error
	markQueuedErr error
	markSentErr   error
}

func newFakeAutoRepo() *fakeAutoRepo {
	return &fakeAutoRepo{autos: make(map[int64]*automessage.AutoMessage)}
}

func (f *fakeAutoRepo) Create(_ context.Context, m *automessage.AutoMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now()
	f.autos[m.ID] = m
	f.created = append(f.created, m)
	return nil
}

func (f *fakeAutoRepo) GetByID(_ context.Context, id int64) (*automessage.AutoMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.autos[id]
	if !ok {
		return nil, errNotFound
	}
	return m, nil
}

func (f *fakeAutoRepo) FindDue(_ context.Context, now time.Time) ([]*automessage.AutoMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*automessage.AutoMessage
	for _, m := range f.autos {
		if !m.SendDate.After(now) && !m.IsQueued && !m.IsSent {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeAutoRepo) MarkQueued(_ context.Context, id int64) error {
	if f.markQueuedErr != nil {
		return f.markQueuedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.autos[id]
	if !ok {
		return errNotFound
	}
	m.IsQueued = true
	return nil
}

func (f *fakeAutoRepo) MarkSent(_ context.Context, id int64) error {
	if f.markSentErr != nil {
		return f.markSentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.autos[id]
	if !ok {
		return errNotFound
	}
	m.IsSent = true
	return nil
}

type publishedMsg struct {
	queue      string
	body       []byte
	retryCount int
}

type fakeBroker struct {
	mu         sync.Mutex
	published  []publishedMsg
	publishErr error
}

func (f *fakeBroker) Publish(_ context.Context, queue string, body []byte, retryCount int) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMsg{queue: queue, body: body, retryCount: retryCount})
	return nil
}

func (f *fakeBroker) Consume(ctx context.Context, queue string, handler func(context.Context, *broker.Delivery)) error {
	return nil
}

func (f *fakeBroker) toQueue(queue string) []publishedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedMsg
	for _, p := range f.published {
		if p.queue == queue {
			out = append(out, p)
		}
	}
	return out
}

type emitted struct {
	userID  int64
	event   string
	payload interface{}
}

type fakeNotifier struct {
	mu        sync.Mutex
	connected map[int64]bool
	events    []emitted
}

func newFakeNotifier(connected ...int64) *fakeNotifier {
	m := make(map[int64]bool)
	for _, id := range connected {
		m[id] = true
	}
	return &fakeNotifier{connected: m}
}

func (f *fakeNotifier) IsConnected(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[userID]
}

func (f *fakeNotifier) Emit(userID int64, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{userID: userID, event: event, payload: payload})
}
