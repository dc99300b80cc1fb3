package domain

import "time"

// CallState is the lifecycle state of a call session.
type CallState string

const (
	CallStateIdle       CallState = "idle"
	CallStateConnecting CallState = "connecting"
	CallStateActive     CallState = "active"
	CallStateEnded      CallState = "ended"
)

func (s CallState) String() string {
	return string(s)
}

// CallSession is a snapshot of an active or ended call. Duration counts
// while the call is active and is frozen once it ends.
type CallSession struct {
	ID         string        `json:"id"`
	ConsumerID string        `json:"consumerId"`
	BusinessID string        `json:"businessId"`
	AgentID    string        `json:"agentId,omitempty"`
	State      CallState     `json:"state"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"-"`
}

// DurationSeconds is the elapsed call time in whole seconds, the unit
// the display layer renders.
func (c CallSession) DurationSeconds() int64 {
	return int64(c.Duration / time.Second)
}
