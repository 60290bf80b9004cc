package heist

// Decider supplies the discrete player choices a run suspends on: optional
// ability and tool gates, and upgrade selection. Interactive clients block on
// the player; automated callers use AutoDecider.
type Decider interface {
	// AskYesNo gates one optional action.
	AskYesNo(prompt string) bool

	// Choose picks one option by index. Implementations must return an index
	// in range for a non-empty options slice.
	Choose(prompt string, options []string) int
}

// AutoDecider accepts every gate and picks the first option. Used by the
// queue worker and by tests.
type AutoDecider struct{}

func (AutoDecider) AskYesNo(string) bool { return true }

func (AutoDecider) Choose(_ string, options []string) int {
	if len(options) == 0 {
		return -1
	}
	return 0
}

// DeclineDecider refuses every gate. Useful in tests that exercise the plain
// check path with ability-holding crews.
type DeclineDecider struct{}

func (DeclineDecider) AskYesNo(string) bool { return false }

func (DeclineDecider) Choose(_ string, options []string) int {
	if len(options) == 0 {
		return -1
	}
	return 0
}
