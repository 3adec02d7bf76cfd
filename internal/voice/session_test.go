package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientFrame struct {
	messageType int
	data        []byte
}

type fakeClient struct {
	mu     sync.Mutex
	events []ClientEvent
	frames chan clientFrame
}

func newFakeClient() *fakeClient {
	return &fakeClient{frames: make(chan clientFrame, 8)}
}

func (c *fakeClient) ReadMessage() (int, []byte, error) {
	f, ok := <-c.frames
	if !ok {
		return 0, nil, errors.New("client gone")
	}
	return f.messageType, f.data, nil
}

func (c *fakeClient) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v.(ClientEvent))
	return nil
}

func (c *fakeClient) eventTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func (c *fakeClient) lastBasket() *BasketNotice {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Basket != nil {
			return c.events[i].Basket
		}
	}
	return nil
}

type fakeUpstream struct {
	mu        sync.Mutex
	sent      []clientMessage
	inbox     chan serverMessage
	closeOnce sync.Once
	closed    int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{inbox: make(chan serverMessage, 8)}
}

func (u *fakeUpstream) WriteJSON(v interface{}) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sent = append(u.sent, v.(clientMessage))
	return nil
}

func (u *fakeUpstream) ReadJSON(v interface{}) error {
	msg, ok := <-u.inbox
	if !ok {
		return errors.New("upstream gone")
	}
	*(v.(*serverMessage)) = msg
	return nil
}

func (u *fakeUpstream) Close() error {
	u.mu.Lock()
	u.closed++
	u.mu.Unlock()
	u.closeOnce.Do(func() { close(u.inbox) })
	return nil
}

func (u *fakeUpstream) closeCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.closed
}

func (u *fakeUpstream) toolResponses() []toolResponse {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []toolResponse
	for _, m := range u.sent {
		if m.ToolResponse != nil {
			out = append(out, *m.ToolResponse)
		}
	}
	return out
}

func testProducts() []domain.Product {
	return []domain.Product{
		{
			ID:    "apple",
			Name:  domain.LocalizedString{En: "Apples", Ar: "تفاح"},
			Price: decimal.NewFromFloat(1.20),
			Unit:  "kg",
		},
		{
			ID:    "cucumber",
			Name:  domain.LocalizedString{En: "Cucumber", Ar: "خيار"},
			Price: decimal.NewFromFloat(0.65),
			Unit:  "kg",
		},
	}
}

func newTestSession(client *fakeClient, up *fakeUpstream) (*Session, *cart.Store) {
	carts := cart.NewStore(nil)
	s := NewSession(SessionConfig{
		ID:      "sess-1",
		Owner:   "owner-1",
		Lang:    domain.LangEnglish,
		Model:   "models/test-live",
		Client:  client,
		Catalog: NewStaticCatalog(testProducts()),
		Carts:   carts,
		Prompt:  "test",
	})
	s.upstream = up
	return s, carts
}

func pcmFrame(seconds float64) string {
	raw := make([]byte, 2*int(seconds*PlaybackSampleRate))
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSession_HandleToolCall(t *testing.T) {
	client := newFakeClient()
	up := newFakeUpstream()
	s, carts := newTestSession(client, up)

	call := &toolCall{FunctionCalls: []functionCall{{
		ID:   "fc-1",
		Name: ToolAddToBasket,
		Args: json.RawMessage(`{"items":[{"product_id":"apple","quantity":2},{"product_id":"ghost","quantity":1}]}`),
	}}}

	s.handleToolCall(context.Background(), call)

	// The unresolvable id is skipped, the resolvable one lands in the cart.
	c := carts.Get(context.Background(), "owner-1")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "apple", c.Lines[0].Product.ID)
	assert.True(t, decimal.NewFromInt(2).Equal(c.Lines[0].Quantity))

	responses := up.toolResponses()
	require.Len(t, responses, 1)
	require.Len(t, responses[0].FunctionResponses, 1)
	fr := responses[0].FunctionResponses[0]
	assert.Equal(t, "fc-1", fr.ID)
	assert.Equal(t, true, fr.Response["success"])
	assert.Equal(t, 1, fr.Response["items_added"])

	basket := client.lastBasket()
	require.NotNil(t, basket)
	assert.Len(t, basket.Items, 1)
	assert.Equal(t, "apple", basket.Items[0].ProductID)
	assert.True(t, basket.OpenCart)
}

func TestSession_ToolCallAlwaysReplies(t *testing.T) {
	client := newFakeClient()
	up := newFakeUpstream()
	s, carts := newTestSession(client, up)

	call := &toolCall{FunctionCalls: []functionCall{{
		ID:   "fc-2",
		Name: ToolAddToBasket,
		Args: json.RawMessage(`{"items":[{"product_id":"ghost","quantity":1}]}`),
	}}}

	s.handleToolCall(context.Background(), call)

	assert.True(t, carts.Get(context.Background(), "owner-1").IsEmpty())

	responses := up.toolResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, 0, responses[0].FunctionResponses[0].Response["items_added"])

	assert.Nil(t, client.lastBasket(), "no basket notice when nothing resolved")
}

func TestSession_BargeInFlushesBeforeNewAudio(t *testing.T) {
	client := newFakeClient()
	up := newFakeUpstream()
	s, _ := newTestSession(client, up)

	// A long response is mid-playback when the customer interrupts.
	s.playback.Schedule(make([]float32, 5*PlaybackSampleRate), PlaybackSampleRate)
	require.Equal(t, 1, s.playback.Live())

	msg := &serverMessage{ServerContent: &serverContent{
		Interrupted: true,
		ModelTurn: &content{Parts: []part{{
			InlineData: &blob{MimeType: "audio/pcm;rate=24000", Data: pcmFrame(0.2)},
		}}},
	}}
	s.handleServerMessage(context.Background(), msg)

	// Only the fresh frame survives, scheduled against the reset clock
	// rather than after the flushed five-second tail.
	assert.Equal(t, 1, s.playback.Live())
	assert.Less(t, s.playback.NextStart(), 1.0)

	types := client.eventTypes()
	interruptedAt, audioAt := -1, -1
	for i, typ := range types {
		if typ == "interrupted" && interruptedAt == -1 {
			interruptedAt = i
		}
		if typ == "audio" && audioAt == -1 {
			audioAt = i
		}
	}
	require.NotEqual(t, -1, interruptedAt)
	require.NotEqual(t, -1, audioAt)
	assert.Less(t, interruptedAt, audioAt, "flush must be announced before new audio")
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	client := newFakeClient()
	up := newFakeUpstream()
	s, _ := newTestSession(client, up)

	s.playback.Schedule(make([]float32, PlaybackSampleRate), PlaybackSampleRate)

	s.Close()
	s.Close()
	s.Close()

	assert.Equal(t, 1, up.closeCount())
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 0, s.playback.Live())
	assert.Equal(t, 0.0, s.playback.NextStart())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done must be closed after Close")
	}
}

func startedTestSession(t *testing.T) (*Session, *fakeClient, *fakeUpstream) {
	t.Helper()

	client := newFakeClient()
	up := newFakeUpstream()
	up.inbox <- serverMessage{SetupComplete: &struct{}{}}

	carts := cart.NewStore(nil)
	s := NewSession(SessionConfig{
		ID:      "sess-1",
		Owner:   "owner-1",
		Lang:    domain.LangEnglish,
		Model:   "models/test-live",
		Client:  client,
		Dial:    func(ctx context.Context) (UpstreamConn, error) { return up, nil },
		Catalog: NewStaticCatalog(testProducts()),
		Carts:   carts,
		Prompt:  "test",
	})
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, StateListening, s.State())
	return s, client, up
}

func waitClosed(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("session never closed; state=%s", s.State())
	}
}

func TestSession_UserStopTearsDown(t *testing.T) {
	s, client, up := startedTestSession(t)
	defer close(client.frames)

	client.frames <- clientFrame{messageType: 1, data: []byte(`{"action":"stop"}`)}

	waitClosed(t, s)
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, up.closeCount())
	assert.Equal(t, 0, s.playback.Live())
}

func TestSession_RemoteCloseTearsDown(t *testing.T) {
	s, client, _ := startedTestSession(t)
	defer close(client.frames)

	// The upstream drops the connection mid-session.
	s.upstream.Close()

	waitClosed(t, s)
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_ClientDisconnectTearsDown(t *testing.T) {
	s, client, up := startedTestSession(t)

	// The browser socket goes away; its read loop errors out.
	close(client.frames)

	waitClosed(t, s)
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, up.closeCount())
}

func TestManager_RefusesSecondConcurrentSession(t *testing.T) {
	dial := func(ctx context.Context) (UpstreamConn, error) {
		up := newFakeUpstream()
		up.inbox <- serverMessage{SetupComplete: &struct{}{}}
		return up, nil
	}

	m := NewManager(dial, cart.NewStore(nil), "models/test-live")

	client := newFakeClient()
	defer close(client.frames)

	first, err := m.Open(context.Background(), "owner-1", domain.LangEnglish, client, testProducts())
	require.NoError(t, err)
	assert.True(t, m.Active("owner-1"))

	_, err = m.Open(context.Background(), "owner-1", domain.LangEnglish, newFakeClient(), testProducts())
	assert.ErrorIs(t, err, ErrSessionActive)

	// A different owner is unaffected.
	other := newFakeClient()
	defer close(other.frames)
	_, err = m.Open(context.Background(), "owner-2", domain.LangEnglish, other, testProducts())
	assert.NoError(t, err)

	// Closing frees the slot for a fresh session.
	first.Close()
	<-first.Done()
	assert.False(t, m.Active("owner-1"))

	again := newFakeClient()
	defer close(again.frames)
	_, err = m.Open(context.Background(), "owner-1", domain.LangEnglish, again, testProducts())
	assert.NoError(t, err)

	m.CloseAll()
	time.Sleep(50 * time.Millisecond)
}
