package core

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/DeepikaKgithub/PharmaGEN/internal/observability"
	"github.com/DeepikaKgithub/PharmaGEN/internal/session"
	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

// Archive receives completed work for out-of-band persistence. Callers
// treat every write as best-effort: an archive error is logged and
// dropped, never surfaced into turn processing.
type Archive interface {
	StartConsultation(ctx context.Context, c *pkg.Consultation) error
	RecordTurn(ctx context.Context, consultationID string, role pkg.Role, text string) error
	SaveReport(ctx context.Context, c *pkg.Consultation) error
}

// NopArchive is installed when no database is configured.
type NopArchive struct{}

func (NopArchive) StartConsultation(context.Context, *pkg.Consultation) error { return nil }
func (NopArchive) RecordTurn(context.Context, string, pkg.Role, string) error { return nil }
func (NopArchive) SaveReport(context.Context, *pkg.Consultation) error        { return nil }

// lockStripes is the number of mutexes consultation IDs are hashed onto.
const lockStripes = 64

// Service owns the consultation lifecycle: store access, single-writer
// locking per session, the failure-reset policy, and archive writes.
type Service struct {
	store     session.Store
	sequencer *Sequencer
	archive   Archive

	stripes [lockStripes]sync.Mutex
}

func NewService(store session.Store, sequencer *Sequencer, archive Archive) *Service {
	if archive == nil {
		archive = NopArchive{}
	}
	return &Service{
		store:     store,
		sequencer: sequencer,
		archive:   archive,
	}
}

// Start creates a new consultation at the language-selection stage.
func (s *Service) Start(ctx context.Context) (*pkg.Consultation, error) {
	c := pkg.NewConsultation(uuid.NewString())
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}
	logger := observability.LoggerFromContext(ctx)
	logger.Info("consultation started", "consultation", c.ID)
	if err := s.archive.StartConsultation(ctx, c); err != nil {
		logger.Warn("archive write failed", "consultation", c.ID, "err", err)
	}
	return c, nil
}

// Get returns the consultation with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*pkg.Consultation, error) {
	return s.store.Get(ctx, id)
}

// Message runs one turn: load, advance, persist. Turns on the same
// consultation are serialized; different consultations proceed
// independently.
func (s *Service) Message(ctx context.Context, id, text string) (TurnResult, *pkg.Consultation, error) {
	unlock := s.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return TurnResult{}, nil, err
	}

	prevStage := c.Stage
	prevTurns := len(c.History)
	res := s.advanceSafely(ctx, c, text)

	if err := s.store.Update(ctx, c); err != nil {
		return TurnResult{}, nil, fmt.Errorf("persist consultation: %w", err)
	}

	logger := observability.LoggerFromContext(ctx)
	if prevTurns > len(c.History) {
		// A failure reset dropped the history; nothing new to archive.
		prevTurns = len(c.History)
	}
	for _, t := range c.History[prevTurns:] {
		if err := s.archive.RecordTurn(ctx, c.ID, t.Role, t.Text); err != nil {
			logger.Warn("archive write failed", "consultation", c.ID, "err", err)
			break
		}
	}
	if prevStage == pkg.StageAskAllergies && c.Stage == pkg.StageGeneralQnA {
		if err := s.archive.SaveReport(ctx, c); err != nil {
			logger.Warn("archive write failed", "consultation", c.ID, "err", err)
		}
	}
	return res, c, nil
}

// Reset returns the consultation to a fresh language-selection state.
func (s *Service) Reset(ctx context.Context, id string) (*pkg.Consultation, error) {
	unlock := s.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Reset()
	if err := s.store.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("persist consultation: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("consultation reset", "consultation", c.ID)
	return c, nil
}

// advanceSafely recovers a panicking turn into the generic failure reply
// and a language-preserving reset, so one bad turn never strands the
// session in a half-written state.
func (s *Service) advanceSafely(ctx context.Context, c *pkg.Consultation, text string) (res TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Error("turn processing panicked",
				"consultation", c.ID, "panic", r)
			c.ResetPreservingLanguage()
			reply := fmt.Sprintf(msgTurnFailed, r)
			c.Transcript = append(c.Transcript, pkg.Exchange{User: text, Bot: reply})
			res = TurnResult{Reply: reply}
		}
	}()
	return s.sequencer.Advance(ctx, c, text)
}

// lock serializes turns per consultation.
func (s *Service) lock(id string) func() {
	l := s.stripe(id)
	l.Lock()
	return l.Unlock
}

// stripe maps a consultation ID onto one of a fixed set of mutexes, so
// lock state stays bounded no matter how many consultations the process
// has served. IDs sharing a stripe contend but never deadlock.
func (s *Service) stripe(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.stripes[h.Sum32()%lockStripes]
}
