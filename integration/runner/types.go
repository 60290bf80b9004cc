package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions. Market actions map one-to-one onto /v1/market endpoints.
const (
	ActionRun      = "run"
	ActionRunAsync = "run_async"
	ActionFence    = "fence"
	ActionHeal     = "heal"
	ActionBuy      = "buy"
	ActionBribe    = "bribe"
)

// TestSuite defines a complete integration test scenario.
// Can either be a regular test with Steps, or a suite that references other Cases.
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single API interaction and its expected outcomes.
// Run steps carry heist parameters; market steps carry the market fields.
type TestStep struct {
	Name         string            `json:"name,omitempty"`
	Action       string            `json:"action"`
	HeistID      string            `json:"heist_id,omitempty"`
	Participants []string          `json:"participants,omitempty"`
	Tools        map[string]string `json:"tools,omitempty"`
	FactionID    string            `json:"faction_id,omitempty"`
	OperativeID  string            `json:"operative_id,omitempty"`
	ToolID       string            `json:"tool_id,omitempty"`
	LootIndex    *int              `json:"loot_index,omitempty"`
	ExpectError  bool              `json:"expect_error,omitempty"`
	Expectations Expectations      `json:"expect"`
}

// Expectations defines what to check after a test step executes. Save-game
// checks run against the freshly reloaded save; report checks only apply to
// run steps.
type Expectations struct {
	// Run report
	Success        *bool    `json:"success,omitempty"`
	MinLines       *int     `json:"min_lines,omitempty"`
	LogContains    []string `json:"log_contains,omitempty"`
	LogNotContains []string `json:"log_not_contains,omitempty"`

	// Save-game state, aligned with pkg/world/world.go
	Treasury        *int              `json:"treasury,omitempty"`
	MinTreasury     *int              `json:"min_treasury,omitempty"`
	Notoriety       *int              `json:"notoriety,omitempty"`
	MaxNotoriety    *int              `json:"max_notoriety,omitempty"`
	HeistsCompleted *int              `json:"heists_completed,omitempty"`
	LootCount       *int              `json:"loot_count,omitempty"`
	UnlockedHeists  []string          `json:"unlocked_heists,omitempty"`
	Tools           map[string]int    `json:"tools,omitempty"`
	CrewStatus      map[string]string `json:"crew_status,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName  string
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	RequestID string
	Lines     []string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	SaveID   uuid.UUID // ID of the save game used for this test
}
