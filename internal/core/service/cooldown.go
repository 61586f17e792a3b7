package service

import (
	"sync"
	"time"
)

// CooldownState is the resend sub-state machine:
//
//	idle → sending → cooldown(N seconds) → idle
//
// Resend is available only while idle.
type CooldownState string

const (
	CooldownIdle    CooldownState = "idle"
	CooldownSending CooldownState = "sending"
	CooldownActive  CooldownState = "cooldown"
)

// Cooldown is one countdown for one verification channel. Each armed
// cooldown runs a single cancellable ticking task; Stop cancels it on
// teardown so no tick ever lands after the owning flow has gone away.
type Cooldown struct {
	mu        sync.Mutex
	state     CooldownState
	remaining int
	stopCh    chan struct{}
	stopped   bool

	// newTicker is swapped in tests to drive simulated seconds.
	newTicker func() (<-chan time.Time, func())
}

func NewCooldown() *Cooldown {
	return &Cooldown{
		state: CooldownIdle,
		newTicker: func() (<-chan time.Time, func()) {
			t := time.NewTicker(time.Second)
			return t.C, t.Stop
		},
	}
}

// Begin moves idle → sending. It returns false while a send is in flight or
// a countdown is running, which is exactly when the resend action must stay
// disabled.
func (c *Cooldown) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CooldownIdle {
		return false
	}
	c.state = CooldownSending
	return true
}

// Fail returns sending → idle after a dispatch that did not go out.
func (c *Cooldown) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CooldownSending {
		c.state = CooldownIdle
	}
}

// Arm moves sending → cooldown(seconds) and starts the countdown task.
func (c *Cooldown) Arm(seconds int) {
	c.mu.Lock()
	if c.state != CooldownSending || seconds <= 0 {
		if c.state == CooldownSending {
			c.state = CooldownIdle
		}
		c.mu.Unlock()
		return
	}
	c.state = CooldownActive
	c.remaining = seconds
	c.stopCh = make(chan struct{})
	c.stopped = false
	stopCh := c.stopCh
	ticks, stopTicker := c.newTicker()
	c.mu.Unlock()

	go c.run(ticks, stopTicker, stopCh)
}

func (c *Cooldown) run(ticks <-chan time.Time, stopTicker func(), stopCh <-chan struct{}) {
	defer stopTicker()
	for {
		select {
		case <-stopCh:
			return
		case <-ticks:
			if c.tick() {
				return
			}
		}
	}
}

// tick counts one elapsed second; it reports true when the countdown is
// finished and the state is back to idle.
func (c *Cooldown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CooldownActive {
		return true
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = CooldownIdle
		return true
	}
	return false
}

// CanSend reports whether a resend may be dispatched now.
func (c *Cooldown) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == CooldownIdle
}

// Remaining returns the seconds left in the countdown, zero when idle.
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// State returns the current sub-state.
func (c *Cooldown) State() CooldownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stop cancels the countdown task and resets to idle. Safe to call more
// than once and on a cooldown that never armed.
func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil && !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
	c.state = CooldownIdle
	c.remaining = 0
}

// CooldownSet tracks the per-device, per-channel cooldowns. Logout tears a
// device's cooldowns down so no ticker outlives its session.
type CooldownSet struct {
	mu sync.Mutex
	m  map[string]*Cooldown
}

func NewCooldownSet() *CooldownSet {
	return &CooldownSet{m: make(map[string]*Cooldown)}
}

func (s *CooldownSet) Get(deviceID, channel string) *Cooldown {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deviceID + ":" + channel
	cd, ok := s.m[key]
	if !ok {
		cd = NewCooldown()
		s.m[key] = cd
	}
	return cd
}

// DropDevice stops and removes every cooldown owned by deviceID.
func (s *CooldownSet) DropDevice(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, cd := range s.m {
		if len(key) > len(deviceID) && key[:len(deviceID)+1] == deviceID+":" {
			cd.Stop()
			delete(s.m, key)
		}
	}
}
