package brackets

import "github.com/Dosada05/goldsprint/models"

type ReconcileMode string

const (
	// ModeUpdate keeps the bracket and rewrites entrant names in place.
	ModeUpdate ReconcileMode = "UPDATE"
	// ModeRegenerate discards the bracket and draws a new one.
	ModeRegenerate ReconcileMode = "REGENERATE"
)

type ReconcileResult struct {
	Mode    ReconcileMode
	Matches []models.Match
}

// Reconciler decides how an edited entrant list is applied to a live bracket.
//
// Regeneration is destructive. Warning the user before losing recorded results
// is up to the caller; see HasRecordedResults.
type Reconciler struct {
	generator BracketGenerator
}

func NewReconciler(generator BracketGenerator) *Reconciler {
	return &Reconciler{generator: generator}
}

// Plan returns the mode Reconcile would use, without building anything.
func (r *Reconciler) Plan(prevEntrants []models.Entrant, prevMatches []models.Match, newEntrants []models.Entrant) ReconcileMode {
	if len(prevMatches) == 0 {
		return ModeRegenerate
	}
	if sameMembership(prevEntrants, newEntrants) {
		return ModeUpdate
	}
	return ModeRegenerate
}

// Reconcile applies newEntrants to a single category bracket.
func (r *Reconciler) Reconcile(prevEntrants []models.Entrant, prevMatches []models.Match, newEntrants []models.Entrant) ReconcileResult {
	mode := r.Plan(prevEntrants, prevMatches, newEntrants)
	if mode == ModeUpdate {
		return ReconcileResult{
			Mode:    ModeUpdate,
			Matches: RenameEntrants(prevMatches, renameMap(prevEntrants, newEntrants)),
		}
	}
	return ReconcileResult{
		Mode:    ModeRegenerate,
		Matches: r.generator.Generate(newEntrants),
	}
}

// PlanBrackets is Plan over a whole tournament: the brackets are active if any
// category has matches, and membership is compared across all categories.
func (r *Reconciler) PlanBrackets(prevEntrants []models.Entrant, prev map[models.Category][]models.Match, newEntrants []models.Entrant) ReconcileMode {
	active := false
	for _, matches := range prev {
		if len(matches) > 0 {
			active = true
			break
		}
	}
	if active && sameMembership(prevEntrants, newEntrants) {
		return ModeUpdate
	}
	return ModeRegenerate
}

// ReconcileBrackets applies newEntrants to every category at once. A rename keeps
// every bracket; any structural change regenerates all of them. Names are only
// unique within a category, so each bracket is renamed from its own entrants.
func (r *Reconciler) ReconcileBrackets(prevEntrants []models.Entrant, prev map[models.Category][]models.Match, newEntrants []models.Entrant) (ReconcileMode, map[models.Category][]models.Match) {
	if r.PlanBrackets(prevEntrants, prev, newEntrants) == ModeRegenerate {
		return ModeRegenerate, GenerateBrackets(r.generator, newEntrants)
	}

	updated := make(map[models.Category][]models.Match, len(prev))
	for c, matches := range prev {
		names := renameMap(models.EntrantsByCategory(prevEntrants, c), models.EntrantsByCategory(newEntrants, c))
		updated[c] = RenameEntrants(matches, names)
	}
	return ModeUpdate, updated
}

// RenameEntrants returns a copy of matches with every slot and winner name passed
// through names, keyed by the previous literal name.
func RenameEntrants(matches []models.Match, names map[string]string) []models.Match {
	renamed := make([]models.Match, len(matches))
	for i, m := range matches {
		m.SlotAName = rename(m.SlotAName, names)
		m.SlotBName = rename(m.SlotBName, names)
		m.WinnerName = rename(m.WinnerName, names)
		renamed[i] = m
	}
	return renamed
}

func rename(name *string, names map[string]string) *string {
	if name == nil {
		return nil
	}
	if to, ok := names[*name]; ok {
		return models.StringPtr(to)
	}
	return name
}

func renameMap(prevEntrants, newEntrants []models.Entrant) map[string]string {
	byID := make(map[string]models.Entrant, len(newEntrants))
	for _, e := range newEntrants {
		byID[e.ID] = e
	}

	names := make(map[string]string)
	for _, old := range prevEntrants {
		if e, ok := byID[old.ID]; ok && e.Name != old.Name {
			names[old.Name] = e.Name
		}
	}
	return names
}

type membershipKey struct {
	id       string
	category models.Category
}

// sameMembership compares entrants by id and category; order and names do not matter.
// Moving an entrant to another category changes the bracket structure.
func sameMembership(prevEntrants, newEntrants []models.Entrant) bool {
	if len(prevEntrants) != len(newEntrants) {
		return false
	}

	prev := make(map[membershipKey]struct{}, len(prevEntrants))
	for _, e := range prevEntrants {
		prev[membershipKey{e.ID, e.Category}] = struct{}{}
	}

	current := make(map[membershipKey]struct{}, len(newEntrants))
	for _, e := range newEntrants {
		if _, ok := prev[membershipKey{e.ID, e.Category}]; !ok {
			return false
		}
		current[membershipKey{e.ID, e.Category}] = struct{}{}
	}
	return len(current) == len(prev)
}
