package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/handlers"
	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running heist-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence.
// Returns a list of actual test suites (expanded from the sequence if needed).
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against a fresh save game
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	saveID, err := r.createSave(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create save game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SaveID = saveID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, saveID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// createSave creates a fresh save game via POST /v1/games
func (r *Runner) createSave(ctx context.Context) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/games", nil)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create POST request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create save game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return uuid.UUID{}, fmt.Errorf("create save game returned %d: %s", resp.StatusCode, string(body))
	}

	var sg storage.SaveGame
	if err := json.NewDecoder(resp.Body).Decode(&sg); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to decode created save game: %w", err)
	}
	return sg.ID, nil
}

// getSave retrieves the current save game
func (r *Runner) getSave(ctx context.Context, saveID uuid.UUID) (*storage.SaveGame, error) {
	return GetSaveGame(ctx, r.Client, r.BaseURL, saveID)
}

// runStep executes a single test step and checks expectations
func (r *Runner) runStep(ctx context.Context, saveID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	var report *heist.Report
	var stepErr error

	switch step.Action {
	case ActionRun:
		report, stepErr = r.postRun(ctx, saveID, step)
	case ActionRunAsync:
		requestID, err := PostRunAsync(ctx, r.Client, r.BaseURL, saveID, step)
		if err != nil {
			stepErr = err
			break
		}
		result.RequestID = requestID
		report, stepErr = PollForReport(ctx, r.Client, r.BaseURL, requestID, r.Timeout)
	case ActionFence, ActionHeal, ActionBuy, ActionBribe:
		stepErr = r.postMarket(ctx, saveID, step)
	default:
		result.Error = fmt.Errorf("unknown action %q", step.Action)
		result.Duration = time.Since(start)
		return result
	}

	if step.ExpectError {
		if stepErr == nil {
			result.Error = fmt.Errorf("expected an API error, got none")
			result.Duration = time.Since(start)
			return result
		}
		result.Success = true
		result.Duration = time.Since(start)
		return result
	}

	if stepErr != nil {
		result.Error = stepErr
		result.Duration = time.Since(start)
		return result
	}
	if report != nil {
		result.Lines = report.Lines
	}

	save, err := r.getSave(ctx, saveID)
	if err != nil {
		result.Error = fmt.Errorf("failed to get save game after step: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := r.checkExpectations(step.Expectations, save, report); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// postRun executes a synchronous heist run via POST /v1/run
func (r *Runner) postRun(ctx context.Context, saveID uuid.UUID, step TestStep) (*heist.Report, error) {
	body, err := json.Marshal(handlers.RunRequest{
		SaveID:          saveID,
		HeistID:         step.HeistID,
		Participants:    step.Participants,
		ToolAssignments: step.Tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post run: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("run returned %d: %s", resp.StatusCode, string(respBody))
	}

	var report heist.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode run report: %w", err)
	}
	return &report, nil
}

// postMarket executes a market action via POST /v1/market/{action}
func (r *Runner) postMarket(ctx context.Context, saveID uuid.UUID, step TestStep) error {
	body, err := json.Marshal(handlers.MarketRequest{
		SaveID:      saveID,
		FactionID:   step.FactionID,
		LootIndex:   step.LootIndex,
		OperativeID: step.OperativeID,
		ToolID:      step.ToolID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal market request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/market/"+step.Action, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post market action: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("market %s returned %d: %s", step.Action, resp.StatusCode, string(respBody))
	}
	return nil
}

// checkExpectations validates the test expectations against the run report
// and the reloaded save game
func (r *Runner) checkExpectations(exp Expectations, save *storage.SaveGame, report *heist.Report) error {
	// Report checks
	if exp.Success != nil {
		if report == nil {
			return fmt.Errorf("expected a run report, got none")
		}
		if report.Success != *exp.Success {
			return fmt.Errorf("expected run success %t, got %t", *exp.Success, report.Success)
		}
	}

	if exp.MinLines != nil {
		if report == nil {
			return fmt.Errorf("expected a run report, got none")
		}
		if len(report.Lines) < *exp.MinLines {
			return fmt.Errorf("expected at least %d report lines, got %d", *exp.MinLines, len(report.Lines))
		}
	}

	if len(exp.LogContains) > 0 || len(exp.LogNotContains) > 0 {
		if report == nil {
			return fmt.Errorf("expected a run report, got none")
		}
		transcript := strings.ToLower(strings.Join(report.Lines, "\n"))
		for _, expected := range exp.LogContains {
			if !strings.Contains(transcript, strings.ToLower(expected)) {
				return fmt.Errorf("expected transcript to contain '%s', but it didn't", expected)
			}
		}
		for _, unexpected := range exp.LogNotContains {
			if strings.Contains(transcript, strings.ToLower(unexpected)) {
				return fmt.Errorf("expected transcript to NOT contain '%s', but it did", unexpected)
			}
		}
	}

	// Save-game checks
	if exp.Treasury != nil {
		if save.World.Treasury != *exp.Treasury {
			return fmt.Errorf("expected treasury %d, got %d", *exp.Treasury, save.World.Treasury)
		}
	}

	if exp.MinTreasury != nil {
		if save.World.Treasury < *exp.MinTreasury {
			return fmt.Errorf("expected treasury >= %d, got %d", *exp.MinTreasury, save.World.Treasury)
		}
	}

	if exp.Notoriety != nil {
		if save.World.Notoriety != *exp.Notoriety {
			return fmt.Errorf("expected notoriety %d, got %d", *exp.Notoriety, save.World.Notoriety)
		}
	}

	if exp.MaxNotoriety != nil {
		if save.World.Notoriety > *exp.MaxNotoriety {
			return fmt.Errorf("expected notoriety <= %d, got %d", *exp.MaxNotoriety, save.World.Notoriety)
		}
	}

	if exp.HeistsCompleted != nil {
		if save.World.HeistsCompleted != *exp.HeistsCompleted {
			return fmt.Errorf("expected heists_completed %d, got %d", *exp.HeistsCompleted, save.World.HeistsCompleted)
		}
	}

	if exp.LootCount != nil {
		if len(save.World.Loot) != *exp.LootCount {
			return fmt.Errorf("expected %d loot items, got %d", *exp.LootCount, len(save.World.Loot))
		}
	}

	for _, heistID := range exp.UnlockedHeists {
		if !save.World.UnlockedHeists[heistID] {
			return fmt.Errorf("expected heist %s to be unlocked, but it isn't", heistID)
		}
	}

	for toolID, count := range exp.Tools {
		if save.World.ToolInventory[toolID] < count {
			return fmt.Errorf("expected at least %d of tool %s, got %d", count, toolID, save.World.ToolInventory[toolID])
		}
	}

	for opID, status := range exp.CrewStatus {
		found := false
		for _, spec := range save.Crew {
			if spec.ID == opID {
				found = true
				if spec.Status != status {
					return fmt.Errorf("expected operative %s to be %s, got %s", opID, status, spec.Status)
				}
				break
			}
		}
		if !found {
			return fmt.Errorf("expected operative %s to exist, but it doesn't", opID)
		}
	}

	return nil
}
