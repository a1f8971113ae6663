package brackets

import (
	"math/rand/v2"

	"github.com/Dosada05/goldsprint/models"
	"github.com/google/uuid"
)

// Shuffler permutes n elements through swap, with the signature of rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// IDFunc returns a new match identifier, unique within a bracket generation.
type IDFunc func() string

type BracketGenerator interface {
	// Generate builds the bracket of a single category. Fewer than two entrants
	// yield an empty bracket: a lone entrant has no opponent and must be handled
	// by the caller.
	Generate(entrants []models.Entrant) []models.Match

	GetName() string
}

type Option func(*SingleEliminationGenerator)

// WithShuffler replaces the seeding permutation. Tests pass a fixed permutation.
func WithShuffler(s Shuffler) Option {
	return func(g *SingleEliminationGenerator) {
		if s != nil {
			g.shuffle = s
		}
	}
}

// WithIDFunc replaces the match id source.
func WithIDFunc(f IDFunc) Option {
	return func(g *SingleEliminationGenerator) {
		if f != nil {
			g.newID = f
		}
	}
}

func defaultOptions() (Shuffler, IDFunc) {
	return rand.Shuffle, uuid.NewString
}

// GenerateBrackets builds one independent bracket per category.
func GenerateBrackets(g BracketGenerator, entrants []models.Entrant) map[models.Category][]models.Match {
	result := make(map[models.Category][]models.Match, len(models.Categories()))
	for _, c := range models.Categories() {
		result[c] = g.Generate(models.EntrantsByCategory(entrants, c))
	}
	return result
}

// Unbracketed returns entrants that are alone in their category and therefore
// get no bracket.
func Unbracketed(entrants []models.Entrant) []models.Entrant {
	var lone []models.Entrant
	for _, c := range models.Categories() {
		inCategory := models.EntrantsByCategory(entrants, c)
		if len(inCategory) == 1 {
			lone = append(lone, inCategory[0])
		}
	}
	return lone
}
