package voice

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// Clock reports the current playback-clock time in seconds. Injected so
// scheduling can be tested without real time.
type Clock func() float64

// Buffer is one scheduled chunk of synthesized speech.
type Buffer struct {
	ID         int
	Start      float64
	Duration   float64
	Samples    []float32
	SampleRate int
}

// Playback schedules inbound audio buffers for gapless, strictly
// sequential playback. Each buffer starts at max(nextStart, now) and
// nextStart advances by the buffer's exact duration, never by wall-clock
// elapsed time, which keeps long responses drift-free under jitter.
type Playback struct {
	mu        sync.Mutex
	now       Clock
	after     func(d time.Duration, f func()) *time.Timer
	nextStart float64
	nextID    int
	live      map[int]Buffer
	timers    map[int]*time.Timer
	onDrain   func()
}

func NewPlayback(now Clock) *Playback {
	return &Playback{
		now:    now,
		after:  time.AfterFunc,
		live:   make(map[int]Buffer),
		timers: make(map[int]*time.Timer),
	}
}

// SetOnDrain registers the callback invoked when the last live buffer
// finishes naturally. It is not invoked on Flush.
func (p *Playback) SetOnDrain(f func()) {
	p.mu.Lock()
	p.onDrain = f
	p.mu.Unlock()
}

// Schedule adds a buffer to the playback timeline and returns it with its
// assigned start time. A buffer never starts before the previous one ends
// and never starts in the past relative to the playback clock.
func (p *Playback) Schedule(samples []float32, sampleRate int) Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	start := p.nextStart
	if now > start {
		start = now
	}
	duration := float64(len(samples)) / float64(sampleRate)

	p.nextID++
	buf := Buffer{
		ID:         p.nextID,
		Start:      start,
		Duration:   duration,
		Samples:    samples,
		SampleRate: sampleRate,
	}
	p.live[buf.ID] = buf
	p.nextStart = start + duration

	if p.after != nil {
		id := buf.ID
		delay := time.Duration((start + duration - now) * float64(time.Second))
		p.timers[id] = p.after(delay, func() { p.Complete(id) })
	}
	return buf
}

// Complete removes a naturally finished buffer from the live set and fires
// the drain callback when the set empties.
func (p *Playback) Complete(id int) {
	p.mu.Lock()
	if _, ok := p.live[id]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.live, id)
	if t, ok := p.timers[id]; ok {
		t.Stop()
		delete(p.timers, id)
	}
	drained := len(p.live) == 0
	onDrain := p.onDrain
	p.mu.Unlock()

	if drained && onDrain != nil {
		onDrain()
	}
}

// Flush stops every live buffer and resets the scheduling position to
// zero. Called on barge-in and on teardown, before any later frame may be
// scheduled; a stale nextStart would delay or overlap the next response.
// Returns the ids of the buffers that were stopped.
func (p *Playback) Flush() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	stopped := make([]int, 0, len(p.live))
	for id := range p.live {
		stopped = append(stopped, id)
	}
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
	p.live = make(map[int]Buffer)
	p.nextStart = 0
	return stopped
}

// Live reports the number of buffers currently scheduled or playing.
func (p *Playback) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// NextStart exposes the scheduling position, in seconds.
func (p *Playback) NextStart() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextStart
}

// DecodePCM16 decodes a base64 payload of 16-bit little-endian PCM into
// normalized float samples in [-1, 1].
func DecodePCM16(data string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode audio frame: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("pcm frame has odd length %d", len(raw))
	}
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768
	}
	return samples, nil
}
