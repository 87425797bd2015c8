package qualify

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/unwind/cdm"
)

// economicTermsVar is the CEL variable taxonomy expressions are written
// against. Expressions see the raw facts map of the trade's economic terms,
// e.g. `economicTerms.payout.performancePayout.size() == 1`.
const economicTermsVar = "economicTerms"

// Engine compiles taxonomy expressions and evaluates them against economic
// terms. Compiled programs are cached and safe for concurrent evaluation.
type Engine struct {
	env      *cel.Env
	store    TaxonomyStore
	cache    TaxonomyCache
	programs map[string]cel.Program // taxonomy ID -> compiled program
	mu       sync.RWMutex
}

// NewEngine creates an engine over the given store and compiles all active
// taxonomies up front so the first qualification pays no compile cost.
func NewEngine(store TaxonomyStore) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable(economicTermsVar, cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	en := &Engine{
		env:      env,
		store:    store,
		cache:    NewInMemoryTaxonomyCache(DefaultCacheConfig()),
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAll(); err != nil {
		return nil, fmt.Errorf("failed to compile taxonomies: %w", err)
	}

	return en, nil
}

// Compile compiles a single taxonomy expression to a CEL program.
// A cost limit guards against runaway expressions.
func (en *Engine) Compile(taxonomyID, expression string) error {
	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := en.env.Program(ast, cel.CostLimit(1_000_000))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	en.mu.Lock()
	en.programs[taxonomyID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAll compiles every active taxonomy and primes the cache.
func (en *Engine) CompileAll() error {
	taxonomies, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, tax := range taxonomies {
		if err := en.Compile(tax.ID, tax.Expression); err != nil {
			return fmt.Errorf("failed to compile taxonomy %s: %w", tax.ID, err)
		}
	}

	en.cache.Set(taxonomies)

	return nil
}

// Evaluate runs one taxonomy against the given economic terms. A non-boolean
// expression result counts as not matched.
func (en *Engine) Evaluate(taxonomyID string, terms *cdm.EconomicTerms) (*EvaluationResult, error) {
	tax, err := en.store.Get(taxonomyID)
	if err != nil {
		return nil, err
	}

	facts, err := terms.Facts()
	if err != nil {
		return nil, err
	}

	return en.evaluateCompiled(tax, facts), nil
}

func (en *Engine) evaluateCompiled(tax *Taxonomy, facts map[string]any) *EvaluationResult {
	en.mu.RLock()
	prog, exists := en.programs[tax.ID]
	en.mu.RUnlock()

	if !exists {
		return &EvaluationResult{
			TaxonomyID:   tax.ID,
			TaxonomyName: tax.Name,
			Error:        fmt.Errorf("taxonomy %s is not compiled", tax.ID),
		}
	}

	out, _, err := prog.Eval(map[string]any{economicTermsVar: facts})
	if err != nil {
		return &EvaluationResult{
			TaxonomyID:   tax.ID,
			TaxonomyName: tax.Name,
			Error:        err,
		}
	}

	matched := false
	if boolVal, ok := out.Value().(bool); ok {
		matched = boolVal
	}

	return &EvaluationResult{
		TaxonomyID:   tax.ID,
		TaxonomyName: tax.Name,
		Matched:      matched,
	}
}

// EvaluateAll runs every active taxonomy against the given economic terms,
// continuing past individual evaluation failures.
func (en *Engine) EvaluateAll(terms *cdm.EconomicTerms) ([]*EvaluationResult, error) {
	facts, err := terms.Facts()
	if err != nil {
		return nil, err
	}

	taxonomies := en.cache.Get()
	if taxonomies == nil {
		taxonomies, err = en.store.ListActive()
		if err != nil {
			return nil, err
		}
		en.cache.Set(taxonomies)
	}

	results := make([]*EvaluationResult, 0, len(taxonomies))
	for _, tax := range taxonomies {
		results = append(results, en.evaluateCompiled(tax, facts))
	}

	return results, nil
}

// Qualify reports whether the economic terms match any active taxonomy.
// This is the verdict the unwind pipeline acts on.
func (en *Engine) Qualify(terms *cdm.EconomicTerms) (bool, error) {
	results, err := en.EvaluateAll(terms)
	if err != nil {
		return false, err
	}

	for _, res := range results {
		if res.Matched {
			return true, nil
		}
	}
	return false, nil
}

// GetTaxonomy retrieves a taxonomy from the store.
func (en *Engine) GetTaxonomy(taxonomyID string) (*Taxonomy, error) {
	return en.store.Get(taxonomyID)
}

// ListActiveTaxonomies returns the active taxonomies, preferring the cache.
func (en *Engine) ListActiveTaxonomies() ([]*Taxonomy, error) {
	if taxonomies := en.cache.Get(); taxonomies != nil {
		return taxonomies, nil
	}

	taxonomies, err := en.store.ListActive()
	if err != nil {
		return nil, err
	}
	en.cache.Set(taxonomies)
	return taxonomies, nil
}

// AddTaxonomy validates that the taxonomy compiles, then persists it. If the
// store rejects it the compiled program is removed again.
func (en *Engine) AddTaxonomy(tax *Taxonomy) error {
	if _, err := en.store.Get(tax.ID); err == nil {
		return fmt.Errorf("taxonomy with ID %s already exists", tax.ID)
	}

	if err := en.Compile(tax.ID, tax.Expression); err != nil {
		return fmt.Errorf("taxonomy validation failed: %w", err)
	}

	if err := en.store.Add(tax); err != nil {
		en.mu.Lock()
		delete(en.programs, tax.ID)
		en.mu.Unlock()
		return err
	}

	en.cache.Invalidate()

	return nil
}

// UpdateTaxonomy recompiles and persists an existing taxonomy.
func (en *Engine) UpdateTaxonomy(tax *Taxonomy) error {
	if err := en.Compile(tax.ID, tax.Expression); err != nil {
		return fmt.Errorf("taxonomy validation failed: %w", err)
	}

	if err := en.store.Update(tax); err != nil {
		return err
	}

	en.cache.Invalidate()

	return nil
}

// DeleteTaxonomy removes a taxonomy from the store and the program cache.
func (en *Engine) DeleteTaxonomy(taxonomyID string) error {
	if err := en.store.Delete(taxonomyID); err != nil {
		return err
	}

	en.mu.Lock()
	delete(en.programs, taxonomyID)
	en.mu.Unlock()

	en.cache.Invalidate()

	return nil
}
