package engine

import "fmt"

// State is what the engine is doing right now.
type State int

const (
	Idle State = iota
	Scanning
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Processing:
		return "processing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
