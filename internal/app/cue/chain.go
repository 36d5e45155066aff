package cue

import (
	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// Chain delivers events to the cues that react to them.
type Chain struct {
	cues []Cue
}

// NewChain creates a new cue chain.
func NewChain() *Chain {
	return &Chain{
		cues: make([]Cue, 0),
	}
}

// Add adds a cue to the chain.
func (c *Chain) Add(cue Cue) {
	c.cues = append(c.cues, cue)
}

// HandleEvent runs every cue triggered by the event, in order.
func (c *Chain) HandleEvent(event countdown.Event) {
	for _, cue := range c.cues {
		if !triggeredBy(cue, event.Type) {
			continue
		}
		cue.Handle(event)
	}
}

// Cues returns all cues in the chain.
func (c *Chain) Cues() []Cue {
	return c.cues
}

func triggeredBy(c Cue, eventType countdown.EventType) bool {
	for _, t := range c.Triggers() {
		if t == eventType {
			return true
		}
	}
	return false
}
