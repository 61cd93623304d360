package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"rhel-assessment-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// BankLoader fetches the full question bank from a backing store (YAML file, Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

// BankSource is a question source that draws attempts from a curated bank.
// The bank is cached with TTL so repeated attempts do not hit the loader.
type BankSource struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.Mutex
	rnd       *rand.Rand
	bank      []domain.Question
	expiresAt time.Time
}

const bankKey = "bank"

func NewBankSource(loader BankLoader, ttl time.Duration) *BankSource {
	return &BankSource{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns up to req.Count questions whose module is in req.Topics,
// in random order. A bank smaller than the request yields all matches.
func (s *BankSource) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error) {
	bank, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load bank: %v", domain.ErrSourceUnavailable, err)
	}

	allowed := make(map[string]struct{}, len(req.Topics))
	for _, t := range req.Topics {
		allowed[t] = struct{}{}
	}
	pool := make([]domain.Question, 0, len(bank))
	for _, q := range bank {
		if _, ok := allowed[q.Module]; ok || len(allowed) == 0 {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: bank has no questions for the requested topics", domain.ErrMalformedResponse)
	}

	s.mu.Lock()
	s.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.mu.Unlock()

	if req.Count > 0 && req.Count < len(pool) {
		pool = pool[:req.Count]
	}
	return pool, nil
}

func (s *BankSource) load(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := s.cached(); ok {
		return bank, nil
	}

	result, err, _ := s.sf.Do(bankKey, func() (interface{}, error) {
		if bank, ok := s.cached(); ok {
			return bank, nil
		}
		bank, err := s.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.bank = bank
		s.expiresAt = s.clock().Add(s.ttlWithJitter())
		s.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (s *BankSource) cached() ([]domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bank != nil && s.expiresAt.After(s.clock()) {
		return s.bank, true
	}
	return nil, false
}

// ttlWithJitter must be called with mu held.
func (s *BankSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

// StaticBank is a loader backed by a fixed slice (useful for tests/demos).
type StaticBank struct {
	questions []domain.Question
}

func NewStaticBank(questions []domain.Question) *StaticBank {
	return &StaticBank{questions: questions}
}

func (b *StaticBank) LoadBank(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out, nil
}
