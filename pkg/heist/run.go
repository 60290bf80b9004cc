package heist

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/effect"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// randomEventChance is the 1-in-N draw for injecting a random event.
const randomEventChance = 4

// Runner executes heist runs against a world and roster. A Runner is not
// safe for concurrent runs against the same world; the embedding application
// must serialize runs per save.
type Runner struct {
	catalog *Catalog
	gear    *gear.Catalog
	world   *world.State
	roster  *crew.Roster
	prog    *crew.Progression
	effects *effect.Engine
	roller  *dice.Roller
	decider Decider
	logger  *slog.Logger

	rolls []int // scripted check rolls, consumed in order
}

// NewRunner wires a run orchestrator. The effect engine shares the same
// world, roster and roller.
func NewRunner(catalog *Catalog, gearCatalog *gear.Catalog, w *world.State, r *crew.Roster, prog *crew.Progression, roller *dice.Roller, decider Decider, logger *slog.Logger) *Runner {
	return &Runner{
		catalog: catalog,
		gear:    gearCatalog,
		world:   w,
		roster:  r,
		prog:    prog,
		effects: effect.NewEngine(w, r, roller, logger),
		roller:  roller,
		decider: decider,
		logger:  logger,
	}
}

// WithRolls scripts the next check rolls in order. Once the script is
// exhausted the roller takes over. Used for replays and tests.
func (r *Runner) WithRolls(rolls ...int) *Runner {
	r.rolls = append(r.rolls, rolls...)
	return r
}

func (r *Runner) popRoll() *int {
	if len(r.rolls) == 0 {
		return nil
	}
	v := r.rolls[0]
	r.rolls = r.rolls[1:]
	return &v
}

// runState holds the mutable per-run bookkeeping, reset at Setup.
type runState struct {
	participants []string
	tools        map[string]string         // operative id -> assigned tool id
	toolUses     map[string]map[string]int // operative id -> tool id -> uses consumed
	usedAbility  map[string]bool           // ability key -> consumed this run
	mods         crew.TempModifiers
	loot         effect.Accumulator
	stored       bool // arcane reservoir holds a banked success
	doubleLoot   bool
	failures     int
	partials     int
}

// Run executes one full heist: Setup, random-event injection, the event
// loop, the getaway, and resolution. The returned report lists the narrative
// transcript, banked loot, XP awards and leveled-up operatives. Unknown
// heist or operative ids are precondition errors; everything that can go
// wrong inside the run resolves to an in-run failure instead.
func (r *Runner) Run(heistID string, participants []string, toolAssignments map[string]string) (*Report, error) {
	h, ok := r.catalog.Get(heistID)
	if !ok {
		return nil, fmt.Errorf("unknown heist %q", heistID)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("heist %q: no participants", heistID)
	}
	if len(participants) > h.MaxParty() {
		return nil, fmt.Errorf("heist %q: party of %d exceeds limit %d", heistID, len(participants), h.MaxParty())
	}
	for _, id := range participants {
		op := r.roster.Get(id)
		if op == nil {
			return nil, fmt.Errorf("unknown operative %q", id)
		}
		if !op.IsActive() {
			return nil, fmt.Errorf("operative %q is %s and cannot join", id, op.Spec.Status)
		}
	}
	for opID, toolID := range toolAssignments {
		if _, ok := r.gear.Get(toolID); !ok {
			return nil, fmt.Errorf("unknown tool %q assigned to %q", toolID, opID)
		}
	}
	if err := r.checkRequiredRoles(h, participants); err != nil {
		return nil, err
	}

	rs := &runState{
		participants: participants,
		tools:        toolAssignments,
		toolUses:     make(map[string]map[string]int),
		usedAbility:  make(map[string]bool),
		mods:         make(crew.TempModifiers),
	}
	for _, item := range h.PotentialLoot {
		rs.loot.Add(item)
	}

	report := &Report{HeistID: h.ID, HeistName: h.Name}
	report.addLine("The crew moves on %s.", h.Name)

	queue := make([]Event, len(h.Events))
	copy(queue, h.Events)
	if h.Scaling != nil && r.world.Notoriety >= h.Scaling.NotorietyThreshold && h.Scaling.ExtraEvent != "" {
		if sp, ok := r.catalog.Special(h.Scaling.ExtraEvent); ok {
			queue = append(queue, sp.Event)
			report.addLine("Word of the crew has spread. The job has grown a complication: %s", sp.Description)
		} else if r.logger != nil {
			r.logger.Warn("Heist scaling references unknown special event", "heist", h.ID, "special_event", h.Scaling.ExtraEvent)
		}
	}

	queue = r.injectRandomEvent(queue, rs, report)

	report.Events = len(queue)
	for i := range queue {
		r.resolveEvent(&queue[i], rs, report)
	}

	if h.Getaway != nil {
		r.resolveGetaway(h.Getaway, rs, report)
	}

	r.resolve(h, rs, report)
	return report, nil
}

func (r *Runner) checkRequiredRoles(h *Heist, participants []string) error {
	for _, role := range h.RequiredRoles {
		if roleHolder(r.roster, participants, role) == nil {
			return fmt.Errorf("heist %q requires a %s in the party", h.ID, role)
		}
	}
	return nil
}

// injectRandomEvent draws the 1-in-4 random event and splices it into the
// queue at a random position. An Eagle of Brasshaven holder bypasses the
// draw outright; a scout reveals the inserted event's description.
func (r *Runner) injectRandomEvent(queue []Event, rs *runState, report *Report) []Event {
	pool := r.catalog.RandomEvents()
	if len(pool) == 0 {
		return queue
	}

	if op := upgradeHolder(r.roster, rs.participants, UpgradeEagleOfBrasshaven); op != nil {
		report.addLine("%s's clockwork eagle circles above, and the crew slips past every stray patrol.", op.Spec.Name)
		return queue
	}

	if r.roller.Intn(randomEventChance) != 0 {
		return queue
	}

	ev := pool[r.roller.Pick(len(pool))]
	// A feared crew draws harder trouble; a respected one gets warnings.
	switch {
	case r.world.Reputation.Fear > r.world.Reputation.Respect:
		ev.Difficulty++
	case r.world.Reputation.Respect > r.world.Reputation.Fear:
		ev.Difficulty--
	}
	if ev.Success == nil {
		ev.Success = &Outcome{Text: "The crew handles the surprise cleanly."}
	}
	if ev.Failure == nil {
		ev.Failure = &Outcome{Text: "The surprise gets the better of the crew."}
	}

	pos := r.roller.Intn(len(queue) + 1)
	queue = append(queue[:pos], append([]Event{ev}, queue[pos:]...)...)

	if op := roleHolder(r.roster, rs.participants, RoleScout); op != nil {
		report.addLine("%s spots trouble ahead: %s", op.Spec.Name, ev.Description)
	}
	return queue
}

// resolveEvent runs one event through the full ability/tool/check pipeline
// and applies the matching outcome block. Temporary modifiers are cleared
// afterwards regardless of the result.
func (r *Runner) resolveEvent(ev *Event, rs *runState, report *Report) {
	report.addText(ev.Description)

	result, resolved := r.tryBypass(ev, rs, report)
	if !resolved {
		result = r.resolveCheck(ev, rs, report)
	}

	r.applyOutcome(ev, result, rs, report)
	rs.mods.Clear()
}

// tryBypass covers the zero-roll resolutions: spending a banked reservoir
// success, then Ghost in the Gears. The reservoir spend is offered first.
func (r *Runner) tryBypass(ev *Event, rs *runState, report *Report) (crew.CheckResult, bool) {
	if rs.stored {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeArcaneReservoir); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Spend %s's stored success on %q?", op.Spec.Name, ev.Description)) {
				rs.stored = false
				report.addLine("%s releases the arcane reservoir. The moment resolves itself.", op.Spec.Name)
				return crew.Success, true
			}
		}
	}

	if !rs.usedAbility[UpgradeGhostInGears] {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeGhostInGears); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Use %s's Ghost in the Gears to slip past %q?", op.Spec.Name, ev.Description)) {
				rs.usedAbility[UpgradeGhostInGears] = true
				report.addLine("%s is simply not there when the moment comes. No check needed.", op.Spec.Name)
				return crew.Success, true
			}
		}
	}

	return "", false
}

// resolveCheck runs the acting-operative selection, difficulty adjustments,
// ability and tool bonuses, the die roll and the failure-recovery chain.
func (r *Runner) resolveCheck(ev *Event, rs *runState, report *Report) crew.CheckResult {
	bonus := r.eventWideBonuses(ev, rs, report)

	acting := r.selectActing(ev.Check, rs)
	if acting == nil {
		report.addLine("No one in the crew can handle this. It goes badly.")
		return crew.Failure
	}

	difficulty := ev.Difficulty
	if ev.Scaling != nil && r.world.Notoriety >= ev.Scaling.NotorietyThreshold {
		difficulty += ev.Scaling.DifficultyIncrease
		report.addLine("The city is watching for the crew. The job is harder than planned.")
	}

	for skill, min := range ev.Requirements {
		if acting.BaseSkill(skill) < min {
			report.addLine("%s lacks the raw %s for this. Automatic failure.", acting.Spec.Name, skill)
			return crew.Failure
		}
	}

	if !rs.usedAbility[UpgradeTinkersEdge] {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeTinkersEdge); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Use %s's Tinker's Edge (+2 to this check)?", op.Spec.Name)) {
				rs.usedAbility[UpgradeTinkersEdge] = true
				bonus += 2
				report.addLine("%s produces exactly the right gadget.", op.Spec.Name)
			}
		}
	}

	toolBonus, difficulty, bypassed := r.resolveTool(ev, acting, difficulty, rs, report)
	if bypassed {
		return crew.Success
	}
	bonus += toolBonus

	if strings.EqualFold(ev.Check, "stealth") && !rs.usedAbility[UpgradeShadowstep] {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeShadowstep); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Use %s's Shadowstep to vanish through this?", op.Spec.Name)) {
				rs.usedAbility[UpgradeShadowstep] = true
				report.addLine("%s steps into a shadow and out the other side.", op.Spec.Name)
				return crew.Success
			}
		}
	}

	req := crew.CheckRequest{
		Skill:      ev.Check,
		Difficulty: difficulty,
		ToolBonus:  bonus,
		Roll:       r.popRoll(),
		Mods:       rs.mods,
	}
	result := r.roster.SkillCheck(acting.Spec.ID, req, r.roller)
	report.addLine("%s attempts the %s check (difficulty %d): %s.", acting.Spec.Name, ev.Check, difficulty, result)

	if result == crew.Failure {
		result = r.recoverFailure(acting, req, rs, report)
	}

	if result == crew.Success && !rs.stored && !rs.usedAbility[UpgradeArcaneReservoir] && acting.HasUpgrade(UpgradeArcaneReservoir) {
		if r.decider.AskYesNo(fmt.Sprintf("Store this success in %s's arcane reservoir?", acting.Spec.Name)) {
			rs.usedAbility[UpgradeArcaneReservoir] = true
			rs.stored = true
			report.addLine("%s folds the moment of triumph into the reservoir for later.", acting.Spec.Name)
		}
	}

	return result
}

// eventWideBonuses offers the once-per-run abilities that buff every check
// in the current event.
func (r *Runner) eventWideBonuses(ev *Event, rs *runState, report *Report) int {
	bonus := 0

	if !rs.usedAbility["shielding_elixir"] {
		if op := roleHolder(r.roster, rs.participants, RoleAlchemist); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Have %s pass around a shielding elixir (+1 this event)?", op.Spec.Name)) {
				rs.usedAbility["shielding_elixir"] = true
				bonus++
				report.addLine("%s uncorks a shimmering elixir. The crew steadies.", op.Spec.Name)
			}
		}
	}

	if !rs.usedAbility[UpgradeClockworkLegion] {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeClockworkLegion); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Deploy %s's clockwork legion (+2 this event)?", op.Spec.Name)) {
				rs.usedAbility[UpgradeClockworkLegion] = true
				bonus += 2
				report.addLine("A swarm of brass contraptions fans out ahead of the crew.")
			}
		}
	}

	return bonus
}

// selectActing picks the active participant with the highest effective skill
// for the check, temp modifiers included. Ties go to the first participant
// in roster order.
func (r *Runner) selectActing(skill string, rs *runState) *crew.Operative {
	var best *crew.Operative
	bestVal := 0
	for _, id := range rs.participants {
		op := r.roster.Get(id)
		if op == nil || !op.IsActive() {
			continue
		}
		val := op.BaseSkill(skill) + rs.mods.Get(id, skill)
		if best == nil || val > bestVal {
			best = op
			bestVal = val
		}
	}
	return best
}

// resolveTool applies the acting operative's assigned tool against the
// event, honoring per-operative use counts. Returns the flat bonus, the
// possibly reduced difficulty and whether the check was bypassed outright.
func (r *Runner) resolveTool(ev *Event, acting *crew.Operative, difficulty int, rs *runState, report *Report) (int, int, bool) {
	toolID, ok := rs.tools[acting.Spec.ID]
	if !ok {
		return 0, difficulty, false
	}
	te, ok := r.gear.Effect(toolID, acting.Spec.Role)
	if !ok {
		return 0, difficulty, false
	}
	tool, _ := r.gear.Get(toolID)
	if rs.toolUses[acting.Spec.ID][toolID] >= tool.Uses() {
		return 0, difficulty, false
	}

	consume := func() {
		if rs.toolUses[acting.Spec.ID] == nil {
			rs.toolUses[acting.Spec.ID] = make(map[string]int)
		}
		rs.toolUses[acting.Spec.ID][toolID]++
	}

	switch te.Type {
	case gear.EffectBonus:
		if te.Skill != gear.SkillAny && !strings.EqualFold(te.Skill, ev.Check) {
			return 0, difficulty, false
		}
		if !r.decider.AskYesNo(fmt.Sprintf("Use %s (+%d to %s)?", tool.Name, te.Value, ev.Check)) {
			return 0, difficulty, false
		}
		consume()
		report.addLine("%s puts the %s to work.", acting.Spec.Name, tool.Name)
		return te.Value, difficulty, false

	case gear.EffectDifficultyReduction:
		if te.Condition != "" && !strings.Contains(strings.ToLower(ev.Description), strings.ToLower(te.Condition)) {
			return 0, difficulty, false
		}
		if !r.decider.AskYesNo(fmt.Sprintf("Use %s (difficulty -%d)?", tool.Name, te.Value)) {
			return 0, difficulty, false
		}
		consume()
		report.addLine("The %s makes the problem smaller.", tool.Name)
		return 0, difficulty - te.Value, false

	case gear.EffectBypass:
		if !strings.EqualFold(te.Check, ev.Check) {
			return 0, difficulty, false
		}
		if !r.decider.AskYesNo(fmt.Sprintf("Use %s to bypass this entirely?", tool.Name)) {
			return 0, difficulty, false
		}
		consume()
		if te.Notoriety > 0 {
			r.world.AddNotoriety(te.Notoriety)
			report.addLine("The %s does its loud, effective work. Notoriety rises by %d.", tool.Name, te.Notoriety)
		} else {
			report.addLine("The %s renders the obstacle moot.", tool.Name)
		}
		return 0, difficulty, true

	case gear.EffectSpecial:
		if te.ID != SpecialAlchemyCraft {
			if r.logger != nil {
				r.logger.Warn("Unknown tool special", "tool", toolID, "special", te.ID)
			}
			return 0, difficulty, false
		}
		if !r.decider.AskYesNo(fmt.Sprintf("Have %s brew a field concoction with the %s?", acting.Spec.Name, tool.Name)) {
			return 0, difficulty, false
		}
		consume()
		if r.roller.Roll(6) == 1 {
			r.world.AddNotoriety(1)
			report.addLine("The concoction backfires in a plume of green smoke. Notoriety rises.")
			return -1, difficulty, false
		}
		report.addLine("%s brews something potent on the spot.", acting.Spec.Name)
		return 2, difficulty, false
	}

	return 0, difficulty, false
}

// recoverFailure offers the post-failure chain: a gambler's reroll, then a
// chronoward rewind. The rewind's result overrides the reroll's.
func (r *Runner) recoverFailure(acting *crew.Operative, req crew.CheckRequest, rs *runState, report *Report) crew.CheckResult {
	result := crew.Failure

	if !rs.usedAbility["double_or_nothing"] {
		if op := roleHolder(r.roster, rs.participants, RoleGambler); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Let %s call double or nothing on this failure?", op.Spec.Name)) {
				rs.usedAbility["double_or_nothing"] = true
				req.Roll = r.popRoll()
				result = r.roster.SkillCheck(acting.Spec.ID, req, r.roller)
				if result == crew.Success {
					rs.doubleLoot = true
					report.addLine("%s's gamble pays off twice over. The take will be double.", op.Spec.Name)
				} else {
					r.world.AddNotoriety(2)
					report.addLine("%s's gamble goes loudly wrong. Notoriety rises by 2.", op.Spec.Name)
				}
			}
		}
	}

	if result == crew.Failure && !rs.usedAbility[UpgradeChronoward] {
		if op := upgradeHolder(r.roster, rs.participants, UpgradeChronoward); op != nil {
			if r.decider.AskYesNo(fmt.Sprintf("Burn %s's chronoward to rewind the failure?", op.Spec.Name)) {
				rs.usedAbility[UpgradeChronoward] = true
				report.addLine("Time hiccups. %s gets the moment back.", acting.Spec.Name)
				req.Roll = r.popRoll()
				result = r.roster.SkillCheck(acting.Spec.ID, req, r.roller)
				report.addLine("The rewound attempt resolves: %s.", result)
			}
		}
	}

	return result
}

// applyOutcome resolves the matching outcome block, records its text and
// runs the effect engine over its effect list.
func (r *Runner) applyOutcome(ev *Event, result crew.CheckResult, rs *runState, report *Report) {
	var block *Outcome
	switch result {
	case crew.Success:
		block = ev.Success
	case crew.Partial:
		rs.partials++
		block = ev.PartialSuccess
		if block == nil {
			block = &Outcome{Text: "It works, but not cleanly. Complications follow the crew out."}
		}
	default:
		rs.failures++
		block = ev.Failure
	}
	if block == nil {
		return
	}

	if block.Text != "" {
		report.addText(block.Text)
	}
	acting := ""
	if op := r.selectActing(ev.Check, rs); op != nil {
		acting = op.Spec.ID
	}
	lines := r.effects.Apply(block.Effects, effect.Context{
		Participants: rs.participants,
		Acting:       acting,
		Loot:         &rs.loot,
		Mods:         rs.mods,
	})
	report.Lines = append(report.Lines, lines...)
}

// resolveGetaway runs the escape check with the best unmodified skill in the
// crew. Its failure counts against the run like any event's.
func (r *Runner) resolveGetaway(g *Getaway, rs *runState, report *Report) {
	report.addLine("The getaway: %s", g.Name)

	var best *crew.Operative
	bestVal := 0
	for _, id := range rs.participants {
		op := r.roster.Get(id)
		if op == nil || !op.IsActive() {
			continue
		}
		if v := op.BaseSkill(g.Check); best == nil || v > bestVal {
			best = op
			bestVal = v
		}
	}
	if best == nil {
		report.addLine("No one is left standing to run. The getaway fails.")
		rs.failures++
		if g.Failure != nil {
			r.applyGetawayOutcome(g.Failure, rs, report)
		}
		return
	}

	req := crew.CheckRequest{
		Skill:      g.Check,
		Difficulty: g.Difficulty,
		Roll:       r.popRoll(),
	}
	result := r.roster.SkillCheck(best.Spec.ID, req, r.roller)
	report.addLine("%s leads the escape (%s, difficulty %d): %s.", best.Spec.Name, g.Check, g.Difficulty, result)

	var block *Outcome
	switch result {
	case crew.Success:
		block = g.Success
	case crew.Partial:
		rs.partials++
		block = g.PartialSuccess
		if block == nil {
			block = &Outcome{Text: "The crew gets clear, but it costs them."}
		}
	default:
		rs.failures++
		block = g.Failure
	}
	if block != nil {
		r.applyGetawayOutcome(block, rs, report)
	}
	rs.mods.Clear()
}

func (r *Runner) applyGetawayOutcome(block *Outcome, rs *runState, report *Report) {
	if block.Text != "" {
		report.addText(block.Text)
	}
	lines := r.effects.Apply(block.Effects, effect.Context{
		Participants: rs.participants,
		Loot:         &rs.loot,
		Mods:         rs.mods,
	})
	report.Lines = append(report.Lines, lines...)
}

// resolve banks loot, awards XP with the level-up scan, and finalizes the
// report. The run succeeds iff no event (getaway included) failed.
func (r *Runner) resolve(h *Heist, rs *runState, report *Report) {
	report.Failures = rs.failures
	report.Partials = rs.partials
	report.Success = rs.failures == 0

	xp := h.FailXP()
	if report.Success {
		xp = h.SuccessXP()
		// A doubled take banks every item twice, not twice the value.
		for _, item := range rs.loot.Items {
			r.world.AddLoot(item)
			report.Loot = append(report.Loot, item)
			if rs.doubleLoot {
				r.world.AddLoot(item)
				report.Loot = append(report.Loot, item)
			}
		}
		if rs.doubleLoot {
			report.addLine("The doubled take comes to %d items.", len(report.Loot))
		}
		r.world.HeistsCompleted++
		report.addLine("The job is done. Every operative earns %d XP.", xp)
	} else {
		report.addLine("The job falls apart. The crew limps home with %d XP for the trouble.", xp)
	}
	report.XPAwarded = xp

	for _, id := range rs.participants {
		if r.roster.AddXP(id, xp, r.prog, r.logger) {
			report.LeveledUp = append(report.LeveledUp, id)
			if op := r.roster.Get(id); op != nil {
				report.addLine("%s has grown sharper. Level %d.", op.Spec.Name, op.Spec.Level)
			}
		}
	}
}
