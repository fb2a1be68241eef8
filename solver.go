package alu

import (
	"container/heap"
	"errors"
	"log"
	"math/rand"
)

// Objective selects which accepted digit string a Solver reports.
type Objective int

const (
	Largest Objective = iota
	Smallest
)

func (o Objective) String() string {
	switch o {
	case Largest:
		return "largest"
	case Smallest:
		return "smallest"
	default:
		return "Objective<?>"
	}
}

// completion returns the digit used for inputs the residual no longer
// depends on.
func (o Objective) completion() int8 {
	if o == Smallest {
		return MinDigit
	}
	return MaxDigit
}

// better returns true if a is preferred over b.
func (o Objective) better(a, b Assignment) bool {
	if o == Smallest {
		return CompareAssignments(a, b) < 0
	}
	return CompareAssignments(a, b) > 0
}

// Step represents a partial digit assignment under exploration.
type Step struct {
	id int

	// Bound digits. Zero entries are unbound.
	Inputs Assignment

	// Comparison outcomes assumed on the way to this step.
	Assumed Equalities

	// Target expression with Inputs and Assumed substituted.
	Residual Expr

	// Expressions that must also evaluate to zero for Assumed to hold.
	Constraints []Expr

	// Number of inputs the residual and constraints still depend on.
	Dependencies int

	// Equality record of the residual.
	Equalities Equalities
}

// ID returns an autoincrementing ID assigned by the solver.
func (s *Step) ID() int { return s.id }

// Value returns the value of the residual if it is constant.
func (s *Step) Value() (int64, bool) {
	return constantValue(s.Residual)
}

// verdict reports whether the residual and every constraint are constant
// and, if so, whether they are all zero.
func (s *Step) verdict() (zero, settled bool) {
	settled = true
	for _, expr := range s.exprs() {
		if v, ok := constantValue(expr); !ok {
			settled = false
		} else if v != 0 {
			return false, true
		}
	}
	return settled, settled
}

// exprs returns the residual followed by the constraints.
func (s *Step) exprs() []Expr {
	return append([]Expr{s.Residual}, s.Constraints...)
}

// SolverStats counts the work performed by a Solver.
type SolverStats struct {
	Steps       int // steps selected
	Expanded    int // steps that bound another input
	Assumptions int // steps that split on a comparison outcome
	Pruned      int // steps discarded by deduction or by the best solution
	Failed      int // steps whose residual could not be evaluated
	Solutions   int // steps whose residual was zero
}

// Solver searches for the digit string that drives a target expression to
// zero.
type Solver struct {
	factory *Factory
	target  Expr

	stepIDSeq int
	started   bool

	best    Assignment
	hasBest bool
	stats   SolverStats

	// Which accepted digit string to report. Defaults to the largest.
	// Must set before the first step.
	Objective Objective

	// Search strategy for the solver. Defaults to a PrioritySearcher for
	// the objective. Must set before the first step.
	Searcher Searcher
}

// NewSolver returns a new instance of Solver for target.
func NewSolver(factory *Factory, target Expr) *Solver {
	return &Solver{factory: factory, target: target}
}

// nextStepID returns the next autoincrementing step ID.
func (s *Solver) nextStepID() int {
	s.stepIDSeq++
	return s.stepIDSeq
}

// Stats returns counters for the work performed so far.
func (s *Solver) Stats() SolverStats { return s.stats }

// Best returns the best digit string accepted so far.
func (s *Solver) Best() (string, bool) {
	if !s.hasBest {
		return "", false
	}
	return s.best.String(), true
}

// Solve processes steps until none remain. Returns ErrNoSolution if no
// digit string drives the target to zero.
func (s *Solver) Solve() (string, error) {
	for {
		if _, err := s.SolveNextStep(); err == ErrNoStepAvailable {
			break
		} else if err != nil {
			return "", err
		}
	}

	log.Printf("[search] done: steps=%d expanded=%d assumptions=%d pruned=%d failed=%d solutions=%d",
		s.stats.Steps, s.stats.Expanded, s.stats.Assumptions, s.stats.Pruned, s.stats.Failed, s.stats.Solutions)

	best, ok := s.Best()
	if !ok {
		return "", ErrNoSolution
	}
	return best, nil
}

// SolveNextStep selects and processes the next available step. This can be
// called continually until ErrNoStepAvailable is returned.
func (s *Solver) SolveNextStep() (*Step, error) {
	if !s.started {
		if err := s.start(); err != nil {
			return nil, err
		}
	}

	step := s.Searcher.SelectStep()
	if step == nil {
		return nil, ErrNoStepAvailable
	}
	s.stats.Steps++

	// Constant residuals and constraints end the path.
	if zero, ok := step.verdict(); ok {
		if zero {
			s.accept(step)
		}
		return step, nil
	}

	// A better solution may have been found since the step was added.
	if s.dominated(step.Inputs) {
		s.stats.Pruned++
		return step, nil
	}
	return step, s.expand(step)
}

// start seeds the searcher with the empty assignment.
func (s *Solver) start() error {
	s.started = true
	if s.Searcher == nil {
		s.Searcher = NewPrioritySearcher(s.Objective)
	}

	root, err := s.newStep(Assignment{}, Equalities{}, nil)
	if err != nil {
		return err
	}
	s.Searcher.AddStep(root)
	return nil
}

// expand splits step on the outcome of its lowest undecided comparison. Once
// every comparison is settled it binds the lowest remaining input instead.
func (s *Solver) expand(step *Step) error {
	if tag, ok := s.comparisons(step).First(); ok {
		return s.assume(step, tag)
	}

	index, ok := s.dependencies(step).First()
	if !ok {
		return nil
	}
	s.stats.Expanded++

	// Add the most promising digit last so depth-first strategies visit it first.
	digits := make([]int8, 0, MaxDigit-MinDigit+1)
	for d := int8(MinDigit); d <= MaxDigit; d++ {
		digits = append(digits, d)
	}
	if s.Objective == Smallest {
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
	}

	for _, d := range digits {
		s.addStep(step.Inputs.With(index, d), step.Assumed, step.Constraints)
	}
	return nil
}

// assume adds one child of step that assumes the comparison tagged tag fails
// and one that assumes it succeeds. Each child carries a constraint that
// holds only if its assumption does.
func (s *Solver) assume(step *Step, tag int) error {
	cmp := s.comparison(step, tag)
	assert(cmp != nil, "comparison not found: %d", tag)
	s.stats.Assumptions++

	// Equal when (eql a b) is 1, different when it is 0.
	eql, err := s.factory.Binary(EQL, cmp.LHS, cmp.RHS)
	if err != nil {
		return err
	}
	won, err := s.factory.Binary(ADD, eql, s.factory.Constant(-1))
	if err != nil {
		return err
	}

	for _, tt := range []struct {
		outcome    Equality
		constraint Expr
	}{
		{EqualityFailed, eql},
		{EqualityWon, won},
	} {
		assumed, err := step.Assumed.Set(tag, tt.outcome)
		if err != nil {
			return err
		}

		constraints := make([]Expr, 0, len(step.Constraints)+1)
		constraints = append(constraints, step.Constraints...)
		s.addStep(step.Inputs, assumed, append(constraints, tt.constraint))
	}
	return nil
}

// addStep builds a step for the given bindings and adds it to the searcher
// unless it is pruned.
func (s *Solver) addStep(inputs Assignment, assumed Equalities, constraints []Expr) {
	child, err := s.newStep(inputs, assumed, constraints)
	if errors.Is(err, ErrEqualityConflict) {
		s.stats.Pruned++
		return
	} else if err != nil {
		log.Printf("[search] drop %s %s: %s", inputs, assumed, err)
		s.stats.Failed++
		return
	}

	if s.prune(child) {
		s.stats.Pruned++
		return
	}
	s.Searcher.AddStep(child)
}

// newStep returns a step for the target under inputs and assumed outcomes.
// Constraints that are already satisfied are dropped.
func (s *Solver) newStep(inputs Assignment, assumed Equalities, constraints []Expr) (*Step, error) {
	residual, err := s.factory.ValueForBindings(s.target, inputs, assumed)
	if err != nil {
		return nil, err
	}

	step := &Step{
		Inputs:   inputs,
		Assumed:  assumed,
		Residual: residual,
	}
	for _, c := range constraints {
		v, err := s.factory.ValueForBindings(c, inputs, assumed)
		if err != nil {
			return nil, err
		} else if !isConstantValue(v, 0) {
			step.Constraints = append(step.Constraints, v)
		}
	}

	if step.Equalities, err = ExprEqualities(residual).Merge(assumed); err != nil {
		return nil, err
	}
	step.id = s.nextStepID()
	step.Dependencies = s.dependencies(step).Len()
	return step, nil
}

// dependencies returns the inputs the residual or any constraint uses.
func (s *Solver) dependencies(step *Step) InputSet {
	var set InputSet
	for _, expr := range step.exprs() {
		set = set.Union(s.factory.DependsOn(expr))
	}
	return set
}

// comparisons returns the undecided tracked comparisons of the residual and
// its constraints.
func (s *Solver) comparisons(step *Step) InputSet {
	var set InputSet
	for _, expr := range step.exprs() {
		set = set.Union(s.factory.Comparisons(expr))
	}
	return set
}

// comparison returns the undecided comparison tagged tag.
func (s *Solver) comparison(step *Step, tag int) *BinaryExpr {
	for _, expr := range step.exprs() {
		if cmp := findComparison(expr, tag); cmp != nil {
			return cmp
		}
	}
	return nil
}

// prune returns true if no completion of step can be a better solution.
func (s *Solver) prune(step *Step) bool {
	for _, expr := range step.exprs() {
		if s.factory.Deduce(expr).Excludes(0) {
			return true
		}
	}
	return s.dominated(step.Inputs)
}

// dominated returns true if the most optimistic completion of inputs cannot
// beat the best solution.
func (s *Solver) dominated(inputs Assignment) bool {
	if !s.hasBest {
		return false
	}
	return !s.Objective.better(inputs.Fill(s.Objective.completion()), s.best)
}

// accept records the solution of a step whose residual is zero.
func (s *Solver) accept(step *Step) {
	s.stats.Solutions++

	// Remaining inputs are irrelevant so use the preferred digit.
	candidate := step.Inputs.Fill(s.Objective.completion())
	if s.hasBest && !s.Objective.better(candidate, s.best) {
		return
	}
	s.best, s.hasBest = candidate, true
	log.Printf("[search] new best: %s (step %d)", candidate, step.id)
}

// findComparison returns the comparison node tagged tag within expr.
func findComparison(expr Expr, tag int) *BinaryExpr {
	var v comparisonFinder
	v.tag = tag
	WalkExpr(&v, expr)
	return v.found
}

// comparisonFinder implements ExprVisitor to locate a tagged comparison.
type comparisonFinder struct {
	tag   int
	found *BinaryExpr
}

func (v *comparisonFinder) Visit(expr Expr) ExprVisitor {
	if v.found != nil {
		return nil
	} else if e, ok := expr.(*BinaryExpr); ok && e.Op == EQL && e.Tag == v.tag {
		v.found = e
		return nil
	}
	return v
}

// Searcher represents a strategy for selecting the next step to explore.
type Searcher interface {
	SelectStep() *Step
	AddStep(*Step)
}

// PrioritySearcher selects the most promising step first.
type PrioritySearcher struct {
	queue stepQueue
}

// NewPrioritySearcher returns a new instance of PrioritySearcher.
func NewPrioritySearcher(objective Objective) *PrioritySearcher {
	return &PrioritySearcher{queue: stepQueue{objective: objective}}
}

// SelectStep returns the highest priority step.
func (s *PrioritySearcher) SelectStep() *Step {
	if s.queue.Len() == 0 {
		return nil
	}
	return heap.Pop(&s.queue).(*Step)
}

// AddStep adds a new step to the searcher.
func (s *PrioritySearcher) AddStep(step *Step) {
	heap.Push(&s.queue, step)
}

// stepQueue implements heap.Interface ordered by CompareSteps.
type stepQueue struct {
	steps     []*Step
	objective Objective
}

func (q *stepQueue) Len() int { return len(q.steps) }
func (q *stepQueue) Less(i, j int) bool {
	return CompareSteps(q.steps[i], q.steps[j], q.objective) > 0
}
func (q *stepQueue) Swap(i, j int)       { q.steps[i], q.steps[j] = q.steps[j], q.steps[i] }
func (q *stepQueue) Push(x interface{}) { q.steps = append(q.steps, x.(*Step)) }
func (q *stepQueue) Pop() interface{} {
	step := q.steps[len(q.steps)-1]
	q.steps[len(q.steps)-1] = nil
	q.steps = q.steps[:len(q.steps)-1]
	return step
}

// CompareSteps returns a positive number if a should be explored before b,
// a negative number if b should be explored first, and zero if a and b are
// the same step.
func CompareSteps(a, b *Step, objective Objective) int {
	// Steps that decided more comparisons are closer to a verdict.
	if cmp := CompareEqualities(a.Equalities, b.Equalities); cmp != 0 {
		return cmp
	}

	// Prefer the more promising digit string.
	if objective == Smallest {
		if cmp := CompareAssignments(a.Inputs, b.Inputs); cmp != 0 {
			return -cmp
		}
	} else if cmp := CompareAssignments(a.Inputs.Fill(MaxDigit+1), b.Inputs.Fill(MaxDigit+1)); cmp != 0 {
		return cmp
	}

	// Prefer fewer remaining inputs.
	if cmp := compareInt(a.Dependencies, b.Dependencies); cmp != 0 {
		return -cmp
	}

	// Prefer known zero, then unknown, then known non-zero values.
	if cmp := compareInt(valueRank(a), valueRank(b)); cmp != 0 {
		return cmp
	}

	// Prefer older steps.
	return -compareInt(a.id, b.id)
}

func valueRank(step *Step) int {
	v, ok := step.Value()
	switch {
	case !ok:
		return 1
	case v == 0:
		return 2
	default:
		return 0
	}
}

// DFSSearcher represents a searcher with a depth-first search strategy.
type DFSSearcher struct {
	steps []*Step
}

// NewDFSSearcher returns a new instance of DFSSearcher.
func NewDFSSearcher() *DFSSearcher {
	return &DFSSearcher{}
}

// SelectStep returns the next step to explore.
func (s *DFSSearcher) SelectStep() *Step {
	if len(s.steps) == 0 {
		return nil
	}
	step := s.steps[len(s.steps)-1]
	s.steps = s.steps[:len(s.steps)-1]
	return step
}

// AddStep adds a new step to the searcher.
func (s *DFSSearcher) AddStep(step *Step) {
	s.steps = append(s.steps, step)
}

// BFSSearcher represents a searcher with a breadth-first search strategy.
type BFSSearcher struct {
	steps []*Step
}

// NewBFSSearcher returns a new instance of BFSSearcher.
func NewBFSSearcher() *BFSSearcher {
	return &BFSSearcher{}
}

// SelectStep returns the next step to explore.
func (s *BFSSearcher) SelectStep() *Step {
	if len(s.steps) == 0 {
		return nil
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step
}

// AddStep adds a new step to the searcher.
func (s *BFSSearcher) AddStep(step *Step) {
	s.steps = append(s.steps, step)
}

// RandomSearcher selects a random pending step.
type RandomSearcher struct {
	steps []*Step
	rand  *rand.Rand
}

// NewRandomSearcher returns a new instance of RandomSearcher.
func NewRandomSearcher(rand *rand.Rand) *RandomSearcher {
	return &RandomSearcher{rand: rand}
}

// SelectStep returns a random step to explore.
func (s *RandomSearcher) SelectStep() *Step {
	if len(s.steps) == 0 {
		return nil
	}
	i := s.rand.Intn(len(s.steps))
	step := s.steps[i]
	s.steps[i] = s.steps[len(s.steps)-1]
	s.steps = s.steps[:len(s.steps)-1]
	return step
}

// AddStep adds a new step to the searcher.
func (s *RandomSearcher) AddStep(step *Step) {
	s.steps = append(s.steps, step)
}
