package domain

import "strings"

// Order channels accepted when recording a sale.
const (
	ChannelDineIn  = "dine-in"
	ChannelTakeout = "takeout"
)

var channelAliases = map[string]string{
	"dine-in":  ChannelDineIn,
	"dine in":  ChannelDineIn,
	"dinein":   ChannelDineIn,
	"takeout":  ChannelTakeout,
	"take-out": ChannelTakeout,
	"take out": ChannelTakeout,
}

// ParseChannel returns the canonical channel for a label (case-insensitive).
func ParseChannel(label string) (string, bool) {
	ch, ok := channelAliases[strings.ToLower(strings.TrimSpace(label))]

	return ch, ok
}

// RunStatus is the lifecycle state of a forecast run.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// Terminal reports whether no further transition is expected.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}
