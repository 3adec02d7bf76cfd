// Package voice manages realtime shopping-assistant sessions: microphone
// audio relayed to a hosted live speech model, synthesized speech
// scheduled back for gapless playback, and tool-call driven basket
// mutations.
package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/domain"

	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateListening  State = "listening"
	StateSpeaking   State = "speaking"
	StateClosed     State = "closed"
)

var ErrSessionActive = errors.New("a voice session is already open")

// errStopRequested marks a clean user-initiated stop so the pump
// supervisor can tell it apart from a transport failure.
var errStopRequested = errors.New("stop requested")

// UpstreamConn is the open connection to the remote live endpoint.
type UpstreamConn interface {
	WriteJSON(v interface{}) error
	ReadJSON(v interface{}) error
	Close() error
}

// ClientConn is the storefront client's socket: binary frames carry
// captured PCM, text frames carry control messages.
type ClientConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
}

// Dialer opens the upstream connection.
type Dialer func(ctx context.Context) (UpstreamConn, error)

const (
	binaryMessage = 2
)

// Session is one live voice session. Exactly one exists per owner at a
// time; every exit path funnels through Close.
type Session struct {
	id     string
	owner  string
	lang   domain.Language
	model  string
	prompt string

	client   ClientConn
	dial     Dialer
	upstream UpstreamConn
	catalog  Catalog
	carts    *cart.Store
	playback *Playback

	started time.Time

	stateMu sync.RWMutex
	state   State

	upstreamMu sync.Mutex
	clientMu   sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
}

// SessionConfig carries everything a session needs at start.
type SessionConfig struct {
	ID      string
	Owner   string
	Lang    domain.Language
	Model   string
	Client  ClientConn
	Dial    Dialer
	Catalog Catalog
	Carts   *cart.Store
	Prompt  string
}

func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		id:      cfg.ID,
		owner:   cfg.Owner,
		lang:    cfg.Lang,
		model:   cfg.Model,
		prompt:  cfg.Prompt,
		client:  cfg.Client,
		dial:    cfg.Dial,
		catalog: cfg.Catalog,
		carts:   cfg.Carts,
		state:   StateIdle,
		done:    make(chan struct{}),
	}
	s.started = time.Now()
	s.playback = NewPlayback(func() float64 {
		return time.Since(s.started).Seconds()
	})
	s.playback.SetOnDrain(func() {
		// Inbound queue drained: the model finished its turn.
		if s.State() == StateSpeaking {
			s.setState(StateListening)
		}
	})
	return s
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.stateMu.Lock()
	if s.state == state || s.state == StateClosed {
		s.stateMu.Unlock()
		return
	}
	s.state = state
	s.stateMu.Unlock()
	s.sendClientEvent(ClientEvent{Type: "state", State: string(state)})
}

// Start dials the upstream endpoint, performs the setup handshake and
// wires the full-duplex pumps. Any failure tears the session down and
// leaves it ready for a fresh start; there is no automatic retry.
func (s *Session) Start(ctx context.Context) error {
	if s.State() != StateIdle {
		return fmt.Errorf("session already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.setState(StateConnecting)

	conn, err := s.dial(s.ctx)
	if err != nil {
		s.fail("connect", err)
		return err
	}
	s.upstream = conn

	setup := clientMessage{Setup: &setupPayload{
		Model:             s.model,
		SystemInstruction: &content{Parts: []part{{Text: s.prompt}}},
		Tools:             []tool{addToBasketTool()},
	}}
	if err := s.writeUpstream(setup); err != nil {
		s.fail("setup", err)
		return err
	}

	var first serverMessage
	if err := conn.ReadJSON(&first); err != nil {
		s.fail("handshake", err)
		return err
	}
	if first.SetupComplete == nil {
		err := fmt.Errorf("unexpected handshake reply")
		s.fail("handshake", err)
		return err
	}

	s.started = time.Now()
	s.setState(StateListening)

	g, gctx := errgroup.WithContext(s.ctx)
	g.Go(func() error { return s.clientLoop(gctx) })
	g.Go(func() error { return s.upstreamLoop(gctx) })

	// The loops block in reads that do not watch gctx, so the first one
	// to exit must actively tear the session down: Close cancels the
	// context and closes the upstream handle, and Done unblocks the
	// handler which closes the client socket, releasing the other loop.
	go func() {
		<-gctx.Done()
		s.Close()
	}()
	go func() {
		if err := g.Wait(); err != nil &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, errStopRequested) {
			log.Printf("voice: session %s: %v", s.id, err)
		}
	}()

	return nil
}

func (s *Session) fail(stage string, err error) {
	log.Printf("voice: session %s %s: %v", s.id, stage, err)
	s.sendClientEvent(ClientEvent{Type: "error", Message: stage + " failed"})
	s.Close()
}

// clientLoop relays captured audio upstream. It runs in both listening
// and speaking states; the customer may talk over the model at any time.
func (s *Session) clientLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messageType, data, err := s.client.ReadMessage()
		if err != nil {
			return fmt.Errorf("client read: %w", err)
		}
		if messageType == binaryMessage {
			if err := s.sendAudio(data); err != nil {
				return err
			}
			continue
		}
		if strings.Contains(string(data), `"stop"`) {
			return errStopRequested
		}
	}
}

// sendAudio encodes one captured PCM frame and transmits it as realtime
// input tagged with its format descriptor.
func (s *Session) sendAudio(frame []byte) error {
	msg := clientMessage{RealtimeInput: &realtimeInput{
		MediaChunks: []blob{{
			MimeType: captureMimeType,
			Data:     base64.StdEncoding.EncodeToString(frame),
		}},
	}}
	return s.writeUpstream(msg)
}

// upstreamLoop consumes server messages: synthesized audio, interruption
// signals and tool calls.
func (s *Session) upstreamLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var msg serverMessage
		if err := s.upstream.ReadJSON(&msg); err != nil {
			return fmt.Errorf("upstream read: %w", err)
		}
		s.handleServerMessage(ctx, &msg)
	}
}

func (s *Session) handleServerMessage(ctx context.Context, msg *serverMessage) {
	if msg.ServerContent != nil {
		sc := msg.ServerContent

		// Barge-in: flush everything scheduled before any frame in this
		// or a later message may be processed.
		if sc.Interrupted {
			s.playback.Flush()
			s.sendClientEvent(ClientEvent{Type: "interrupted"})
			s.setState(StateListening)
		}

		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData == nil || !strings.HasPrefix(p.InlineData.MimeType, "audio/pcm") {
					continue
				}
				s.scheduleFrame(p.InlineData.Data)
			}
		}
	}

	if msg.ToolCall != nil {
		s.handleToolCall(ctx, msg.ToolCall)
	}
}

// scheduleFrame decodes one inbound frame and places it on the playback
// timeline, forwarding the schedule to the client.
func (s *Session) scheduleFrame(data string) {
	samples, err := DecodePCM16(data)
	if err != nil {
		log.Printf("voice: session %s: %v", s.id, err)
		return
	}
	buf := s.playback.Schedule(samples, PlaybackSampleRate)
	s.setState(StateSpeaking)
	s.sendClientEvent(ClientEvent{Type: "audio", Audio: &AudioChunk{
		ID:         buf.ID,
		Data:       data,
		SampleRate: buf.SampleRate,
		StartTime:  buf.Start,
		Duration:   buf.Duration,
	}})
}

func (s *Session) writeUpstream(v interface{}) error {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	if s.upstream == nil {
		return errors.New("upstream not connected")
	}
	return s.upstream.WriteJSON(v)
}

func (s *Session) sendClientEvent(event ClientEvent) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	if err := s.client.WriteJSON(event); err != nil {
		log.Printf("voice: session %s client write: %v", s.id, err)
	}
}

// Close tears the session down. Every close path runs the same four
// steps: stop the capture relay, flush scheduled playback and zero the
// scheduling clock, close the upstream handle, and mark the session
// closed. Safe to call from any state, any number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.playback.Flush()
		if s.upstream != nil {
			if err := s.upstream.Close(); err != nil {
				log.Printf("voice: session %s upstream close: %v", s.id, err)
			}
		}
		s.setState(StateClosed)
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Done is closed once the session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
