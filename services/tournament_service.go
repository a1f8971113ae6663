package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/goldsprint/brackets"
	"github.com/Dosada05/goldsprint/cache"
	"github.com/Dosada05/goldsprint/commentary"
	"github.com/Dosada05/goldsprint/models"
	"github.com/Dosada05/goldsprint/race"
	"github.com/Dosada05/goldsprint/repositories"
	"github.com/Dosada05/goldsprint/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const commentaryTimeout = 45 * time.Second

// Broadcaster pushes messages to the viewers of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// TournamentCache is an optional read-through layer in front of the repository.
type TournamentCache interface {
	Get(ctx context.Context, id string) (*models.Tournament, error)
	Set(ctx context.Context, t *models.Tournament) error
	Delete(ctx context.Context, id string) error
}

// Archiver stores the final snapshot of a completed tournament.
type Archiver interface {
	Archive(ctx context.Context, t *models.Tournament) (*storage.UploadResult, error)
	Remove(ctx context.Context, tournamentID string) error
}

type CreateTournamentInput struct {
	Name     string               `json:"name"`
	Entrants []models.Entrant     `json:"entrants"`
	Settings *models.RaceSettings `json:"settings"`
}

type UpdateEntrantsInput struct {
	Entrants []models.Entrant     `json:"entrants"`
	Settings *models.RaceSettings `json:"settings"`
	// Confirm allows a redraw that throws away recorded results.
	Confirm bool `json:"confirm"`
}

type RecordResultInput struct {
	P1 models.PlayerStats `json:"p1"`
	P2 models.PlayerStats `json:"p2"`
}

type RecordResultOutput struct {
	Tournament *models.Tournament `json:"tournament"`
	Category   models.Category    `json:"category"`
	Result     models.RaceResult  `json:"result"`
}

// Payloads of the websocket messages sent to bracket viewers.
type (
	BracketUpdatedPayload struct {
		Mode       brackets.ReconcileMode `json:"mode"`
		Tournament *models.Tournament     `json:"tournament"`
	}
	MatchPayload struct {
		TournamentID string             `json:"tournament_id"`
		Category     models.Category    `json:"category"`
		Match        models.Match       `json:"match"`
		Result       *models.RaceResult `json:"result,omitempty"`
	}
	CommentaryPayload struct {
		TournamentID string          `json:"tournament_id"`
		Category     models.Category `json:"category"`
		MatchID      string          `json:"match_id"`
		Context      string          `json:"context"`
		Text         string          `json:"text"`
	}
	CompletedPayload struct {
		TournamentID string                     `json:"tournament_id"`
		Champions    map[models.Category]string `json:"champions"`
		ArchiveURL   string                     `json:"archive_url,omitempty"`
	}
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, statuses []models.TournamentStatus) ([]*models.Tournament, error)
	UpdateEntrants(ctx context.Context, id string, input UpdateEntrantsInput) (*models.Tournament, brackets.ReconcileMode, error)
	DeleteTournament(ctx context.Context, id string) error
	StartMatch(ctx context.Context, id, matchID string) (*models.Tournament, error)
	RecordResult(ctx context.Context, id, matchID string, input RecordResultInput) (*RecordResultOutput, error)
	// Wait blocks until background commentary requests have finished.
	Wait()
}

type TournamentServiceOption func(*tournamentService)

func WithBracketGenerator(g brackets.BracketGenerator) TournamentServiceOption {
	return func(s *tournamentService) {
		s.generator = g
	}
}

func WithClock(now func() time.Time) TournamentServiceOption {
	return func(s *tournamentService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) TournamentServiceOption {
	return func(s *tournamentService) {
		s.newID = newID
	}
}

type tournamentService struct {
	repo        repositories.TournamentRepository
	cache       TournamentCache
	archiver    Archiver
	hub         Broadcaster
	commentator commentary.Generator
	logger      *slog.Logger

	generator  brackets.BracketGenerator
	reconciler *brackets.Reconciler
	now        func() time.Time
	newID      func() string

	locksMu sync.Mutex
	locks   map[string]*tournamentLock

	background sync.WaitGroup
}

// NewTournamentService wires the bracket engine to storage and viewers.
// cache, archiver and commentator may be nil.
func NewTournamentService(
	repo repositories.TournamentRepository,
	cache TournamentCache,
	archiver Archiver,
	hub Broadcaster,
	commentator commentary.Generator,
	logger *slog.Logger,
	opts ...TournamentServiceOption,
) TournamentService {
	s := &tournamentService{
		repo:        repo,
		cache:       cache,
		archiver:    archiver,
		hub:         hub,
		commentator: commentator,
		logger:      logger,
		generator:   brackets.NewSingleEliminationGenerator(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		locks:       make(map[string]*tournamentLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = brackets.NewReconciler(s.generator)
	return s
}

type tournamentLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes every write to one tournament. Tournaments never share a lock.
// An entry lives only while someone holds or waits for it.
func (s *tournamentService) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &tournamentLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}

	settings := models.DefaultRaceSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}
	if err := race.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	entrants, err := s.normalizeEntrants(input.Entrants)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Tournament{
		ID:          s.newID(),
		Name:        name,
		Status:      models.StatusBracket,
		Settings:    settings,
		Entrants:    entrants,
		Brackets:    brackets.GenerateBrackets(s.generator, entrants),
		Unbracketed: brackets.Unbracketed(entrants),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !hasBracket(t) {
		return nil, fmt.Errorf("%w: at least one category needs two entrants", ErrValidationFailed)
	}
	s.logUnbracketed(ctx, t)

	if err := s.persist(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID),
		slog.Int("entrants", len(t.Entrants)),
		slog.String("format", s.generator.GetName()),
	)
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	return s.load(ctx, id)
}

func (s *tournamentService) ListTournaments(ctx context.Context, statuses []models.TournamentStatus) ([]*models.Tournament, error) {
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, st)
		}
	}
	tournaments, err := s.repo.ListByStatus(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateEntrants(ctx context.Context, id string, input UpdateEntrantsInput) (*models.Tournament, brackets.ReconcileMode, error) {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	entrants, err := s.normalizeEntrants(input.Entrants)
	if err != nil {
		return nil, "", err
	}

	next := current.Clone()
	if input.Settings != nil {
		if err := race.ValidateSettings(*input.Settings); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		next.Settings = *input.Settings
	}

	mode := s.reconciler.PlanBrackets(current.Entrants, current.Brackets, entrants)
	if mode == brackets.ModeRegenerate && hasRecordedResults(current) && !input.Confirm {
		return nil, mode, ErrDestructiveRegenerate
	}

	mode, next.Brackets = s.reconciler.ReconcileBrackets(current.Entrants, current.Brackets, entrants)
	next.Entrants = entrants
	next.Unbracketed = brackets.Unbracketed(entrants)
	if mode == brackets.ModeRegenerate {
		if !hasBracket(next) {
			return nil, mode, fmt.Errorf("%w: at least one category needs two entrants", ErrValidationFailed)
		}
		next.ActiveMatchID = nil
		next.Status = models.StatusBracket
	}
	next.UpdatedAt = s.now()
	s.logUnbracketed(ctx, next)

	if err := s.persist(ctx, next); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "entrants reconciled",
		slog.String("tournament_id", id),
		slog.String("mode", string(mode)),
		slog.Int("entrants", len(entrants)),
	)
	s.hub.BroadcastToRoom(brackets.RoomForTournament(id), brackets.WebSocketMessage{
		Type:    brackets.MessageBracketUpdated,
		Payload: BracketUpdatedPayload{Mode: mode, Tournament: next},
		RoomID:  brackets.RoomForTournament(id),
	})
	return next, mode, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to evict tournament from cache", slog.String("tournament_id", id), slog.Any("error", err))
		}
	}
	if s.archiver != nil {
		if err := s.archiver.Remove(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to remove archived tournament", slog.String("tournament_id", id), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "tournament deleted", slog.String("tournament_id", id))
	s.hub.BroadcastToRoom(brackets.RoomForTournament(id), brackets.WebSocketMessage{
		Type:    brackets.MessageTournamentDeleted,
		Payload: map[string]string{"tournament_id": id},
		RoomID:  brackets.RoomForTournament(id),
	})
	return nil
}

func (s *tournamentService) StartMatch(ctx context.Context, id, matchID string) (*models.Tournament, error) {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	category, match, ok := current.FindMatch(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if !match.IsPlayable() {
		return nil, ErrMatchNotPlayable
	}

	next := current.Clone()
	next.ActiveMatchID = models.StringPtr(matchID)
	next.Status = models.StatusRace
	next.UpdatedAt = s.now()

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(brackets.RoomForTournament(id), brackets.WebSocketMessage{
		Type:    brackets.MessageMatchStarted,
		Payload: MatchPayload{TournamentID: id, Category: category, Match: match},
		RoomID:  brackets.RoomForTournament(id),
	})
	return next, nil
}

func (s *tournamentService) RecordResult(ctx context.Context, id, matchID string, input RecordResultInput) (*RecordResultOutput, error) {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// Champions are final once announced and archived.
	if current.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	category, match, ok := current.FindMatch(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if match.SlotAName == nil || match.SlotBName == nil {
		return nil, ErrMatchNotPlayable
	}
	if !sameRiders(match, input.P1.Name, input.P2.Name) {
		return nil, fmt.Errorf("%w: expected %s and %s", ErrRiderNotInMatch, *match.SlotAName, *match.SlotBName)
	}

	result, err := race.Decide(input.P1, input.P2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	updated, err := brackets.RecordWinnerChecked(current.Brackets[category], matchID, result.WinnerName)
	if err != nil {
		if errors.Is(err, brackets.ErrDownstreamDecided) {
			return nil, ErrResultLocked
		}
		return nil, fmt.Errorf("failed to record winner of match %s: %w", matchID, err)
	}

	next := current.Clone()
	next.Brackets[category] = updated
	if next.ActiveMatchID != nil && *next.ActiveMatchID == matchID {
		next.ActiveMatchID = nil
	}
	switch {
	case next.IsComplete():
		next.Status = models.StatusCompleted
		next.ActiveMatchID = nil
	case next.ActiveMatchID != nil:
		next.Status = models.StatusRace
	default:
		next.Status = models.StatusBracket
	}
	next.UpdatedAt = s.now()

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "race result recorded",
		slog.String("tournament_id", id),
		slog.String("match_id", matchID),
		slog.String("winner", result.WinnerName),
		slog.Bool("disqualified", result.Disqualified),
	)

	room := brackets.RoomForTournament(id)
	_, recorded, _ := next.FindMatch(matchID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    brackets.MessageMatchUpdated,
		Payload: MatchPayload{TournamentID: id, Category: category, Match: recorded, Result: &result},
		RoomID:  room,
	})

	if next.Status == models.StatusCompleted {
		s.complete(ctx, next)
	}

	s.requestCommentary(id, category, match, input, next.Settings, result)

	return &RecordResultOutput{Tournament: next, Category: category, Result: result}, nil
}

// complete archives a finished tournament and announces its champions. Archive
// failures are logged; the tournament stays completed in the database.
func (s *tournamentService) complete(ctx context.Context, t *models.Tournament) {
	payload := CompletedPayload{TournamentID: t.ID, Champions: t.Champions()}

	if s.archiver != nil {
		res, err := s.archiver.Archive(ctx, t)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to archive completed tournament", slog.String("tournament_id", t.ID), slog.Any("error", err))
		} else {
			payload.ArchiveURL = res.Location
			s.logger.InfoContext(ctx, "tournament archived", slog.String("tournament_id", t.ID), slog.String("key", res.Key))
		}
	}

	s.hub.BroadcastToRoom(brackets.RoomForTournament(t.ID), brackets.WebSocketMessage{
		Type:    brackets.MessageTournamentCompleted,
		Payload: payload,
		RoomID:  brackets.RoomForTournament(t.ID),
	})
}

func (s *tournamentService) requestCommentary(id string, category models.Category, match models.Match, input RecordResultInput, settings models.RaceSettings, result models.RaceResult) {
	if s.commentator == nil {
		return
	}

	winner, loser := input.P1, input.P2
	if result.WinnerName == input.P2.Name {
		winner, loser = input.P2, input.P1
	}
	raceContext := commentary.ContextLabel(match.RoundLabel, result.Disqualified)
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), commentaryTimeout)
		defer cancel()

		text, err := s.commentator.Generate(ctx, winner, loser, settings, raceContext)
		if err != nil {
			s.logger.Warn("commentary generation failed", slog.String("tournament_id", id), slog.String("match_id", match.ID), slog.Any("error", err))
			text = commentary.ErrorText
		}

		room := brackets.RoomForTournament(id)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type: brackets.MessageCommentary,
			Payload: CommentaryPayload{
				TournamentID: id,
				Category:     category,
				MatchID:      match.ID,
				Context:      raceContext,
				Text:         text,
			},
			RoomID: room,
		})
	}()
}

func (s *tournamentService) Wait() {
	s.background.Wait()
}

// load reads a tournament from the cache, falling back to the repository.
func (s *tournamentService) load(ctx context.Context, id string) (*models.Tournament, error) {
	if s.cache != nil {
		t, err := s.cache.Get(ctx, id)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "tournament cache lookup failed", slog.String("tournament_id", id), slog.Any("error", err))
		}
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, t); err != nil {
			s.logger.WarnContext(ctx, "failed to cache tournament", slog.String("tournament_id", id), slog.Any("error", err))
		}
	}
	return t, nil
}

// persist writes t to the repository and the cache concurrently. A failed
// repository write evicts the cache entry so readers fall back to the database.
func (s *tournamentService) persist(ctx context.Context, t *models.Tournament) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.repo.Save(gCtx, nil, t); err != nil {
			return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
		}
		return nil
	})

	if s.cache != nil {
		g.Go(func() error {
			if err := s.cache.Set(gCtx, t); err != nil {
				s.logger.WarnContext(gCtx, "failed to cache tournament", slog.String("tournament_id", t.ID), slog.Any("error", err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if s.cache != nil {
			if evictErr := s.cache.Delete(ctx, t.ID); evictErr != nil {
				s.logger.WarnContext(ctx, "failed to evict tournament after save error", slog.String("tournament_id", t.ID), slog.Any("error", evictErr))
			}
		}
		return err
	}
	return nil
}

// normalizeEntrants trims names, assigns ids to new entrants and rejects lists
// the bracket engine cannot work with. Names identify riders inside matches, so
// they must be unique within a category.
func (s *tournamentService) normalizeEntrants(input []models.Entrant) ([]models.Entrant, error) {
	entrants := make([]models.Entrant, len(input))
	ids := make(map[string]bool, len(input))
	names := make(map[models.Category]map[string]bool)

	for i, e := range input {
		e.Name = strings.TrimSpace(e.Name)
		e.ID = strings.TrimSpace(e.ID)
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entrant %d has no name", ErrValidationFailed, i+1)
		}
		if !e.Category.IsValid() {
			return nil, fmt.Errorf("%w: entrant %q has unknown category %q", ErrValidationFailed, e.Name, e.Category)
		}
		if e.ID == "" {
			e.ID = s.newID()
		}
		if ids[e.ID] {
			return nil, fmt.Errorf("%w: duplicate entrant id %q", ErrValidationFailed, e.ID)
		}
		ids[e.ID] = true

		if names[e.Category] == nil {
			names[e.Category] = make(map[string]bool)
		}
		if names[e.Category][e.Name] {
			return nil, fmt.Errorf("%w: duplicate entrant name %q in category %s", ErrValidationFailed, e.Name, e.Category)
		}
		names[e.Category][e.Name] = true

		entrants[i] = e
	}
	return entrants, nil
}

func (s *tournamentService) logUnbracketed(ctx context.Context, t *models.Tournament) {
	for _, e := range t.Unbracketed {
		s.logger.WarnContext(ctx, "entrant has no opponent in category",
			slog.String("tournament_id", t.ID),
			slog.String("entrant", e.Name),
			slog.String("category", string(e.Category)),
		)
	}
}

func hasBracket(t *models.Tournament) bool {
	for _, matches := range t.Brackets {
		if len(matches) > 0 {
			return true
		}
	}
	return false
}

func hasRecordedResults(t *models.Tournament) bool {
	for _, matches := range t.Brackets {
		if brackets.HasRecordedResults(matches) {
			return true
		}
	}
	return false
}

func sameRiders(m models.Match, p1, p2 string) bool {
	a, b := *m.SlotAName, *m.SlotBName
	return (p1 == a && p2 == b) || (p1 == b && p2 == a)
}
