package service

import (
	"context"
	"sync"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/steam"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

const DefaultPresenceTTL = 60 * time.Second

// PresenceSource is the Steam summaries call presence depends on.
type PresenceSource interface {
	GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]steam.PlayerSummary, error)
}

// Presence is the advisory online state of one player. It is never
// authoritative; membership decisions do not depend on it.
type Presence struct {
	SteamID string `json:"steamId"`
	Online  bool   `json:"online"`
	InGame  bool   `json:"inGame"`
}

type presenceEntry struct {
	presence  Presence
	fetchedAt time.Time
}

// PresenceService batches presence lookups against Steam and caches the
// results for a short TTL. Upstream failures degrade to offline rather than
// erroring the caller.
type PresenceService struct {
	Source PresenceSource
	TTL    time.Duration

	mu    sync.Mutex
	cache map[string]presenceEntry
}

func NewPresenceService(source PresenceSource, ttl time.Duration) *PresenceService {
	if ttl <= 0 {
		ttl = DefaultPresenceTTL
	}
	return &PresenceService{
		Source: source,
		TTL:    ttl,
		cache:  make(map[string]presenceEntry),
	}
}

// Lookup returns presence for the given Steam ids, serving cached entries
// where fresh and fetching the rest in batches.
func (s *PresenceService) Lookup(ctx context.Context, steamIDs []string) []Presence {
	now := time.Now()
	result := make([]Presence, 0, len(steamIDs))
	var missing []string

	s.mu.Lock()
	for _, id := range steamIDs {
		if entry, ok := s.cache[id]; ok && now.Sub(entry.fetchedAt) < s.TTL {
			result = append(result, entry.presence)
			continue
		}
		missing = append(missing, id)
	}
	s.mu.Unlock()

	for start := 0; start < len(missing); start += steam.MaxSummariesBatch {
		end := min(start+steam.MaxSummariesBatch, len(missing))
		batch := missing[start:end]

		summaries, err := s.Source.GetPlayerSummaries(ctx, batch)
		if err != nil {
			slogx.FromContext(ctx).Warn("presence lookup failed, reporting offline", "error", err)
			for _, id := range batch {
				result = append(result, Presence{SteamID: id})
			}
			continue
		}

		byID := make(map[string]steam.PlayerSummary, len(summaries))
		for _, summary := range summaries {
			byID[summary.SteamID] = summary
		}

		s.mu.Lock()
		for _, id := range batch {
			summary := byID[id]
			presence := Presence{
				SteamID: id,
				Online:  summary.PersonaState > 0,
				InGame:  summary.GameID != "",
			}
			s.cache[id] = presenceEntry{presence: presence, fetchedAt: now}
			result = append(result, presence)
		}
		s.mu.Unlock()
	}

	return result
}
