package usecase

import (
	"context"
	"fmt"
	"sync"

	"trainingportal/domain"

	"github.com/sirupsen/logrus"
)

type prefKey struct {
	t domain.NotificationType
	a domain.Audience
}

// PreferenceGate answers whether a notification type may reach an audience.
// Reads go through a process-local cache that every write invalidates.
type PreferenceGate struct {
	repo domain.PreferenceRepo
	log  *logrus.Logger

	mu         sync.RWMutex
	cache      map[prefKey]bool
	loaded     bool
	generation uint64
}

func NewPreferenceGate(repo domain.PreferenceRepo, log *logrus.Logger) *PreferenceGate {
	return &PreferenceGate{
		repo: repo,
		log:  log,
	}
}

// IsEnabled fails open: a missing row or a failed lookup both allow the notification.
func (g *PreferenceGate) IsEnabled(ctx context.Context, t domain.NotificationType, a domain.Audience) bool {
	g.mu.RLock()
	if g.loaded {
		enabled, ok := g.cache[prefKey{t, a}]
		g.mu.RUnlock()
		return !ok || enabled
	}
	g.mu.RUnlock()

	cache, err := g.load(ctx)
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"type":     t,
			"audience": a,
		}).WithError(err).Error("preference lookup failed, allowing notification")
		return true
	}

	enabled, ok := cache[prefKey{t, a}]
	return !ok || enabled
}

func (g *PreferenceGate) load(ctx context.Context) (map[prefKey]bool, error) {
	g.mu.RLock()
	gen := g.generation
	g.mu.RUnlock()

	prefs, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	cache := make(map[prefKey]bool, len(prefs))
	for _, p := range prefs {
		cache[prefKey{p.Type, p.Audience}] = p.Enabled
	}

	g.mu.Lock()
	// a write that raced with this read already bumped the generation; keep the cache cold
	if gen == g.generation {
		g.cache = cache
		g.loaded = true
	}
	g.mu.Unlock()
	return cache, nil
}

func (g *PreferenceGate) Invalidate() {
	g.mu.Lock()
	g.cache = nil
	g.loaded = false
	g.generation++
	g.mu.Unlock()
}

// List returns the full type x audience matrix, filling missing rows with the enabled default.
func (g *PreferenceGate) List(ctx context.Context) ([]domain.NotificationPreference, error) {
	prefs, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[prefKey]domain.NotificationPreference, len(prefs))
	for _, p := range prefs {
		stored[prefKey{p.Type, p.Audience}] = p
	}

	out := make([]domain.NotificationPreference, 0, len(domain.NotificationTypes)*len(domain.Audiences))
	for _, t := range domain.NotificationTypes {
		for _, a := range domain.Audiences {
			if p, ok := stored[prefKey{t, a}]; ok {
				out = append(out, p)
				continue
			}
			out = append(out, domain.NotificationPreference{Type: t, Audience: a, Enabled: true})
		}
	}
	return out, nil
}

func (g *PreferenceGate) Set(ctx context.Context, pref *domain.NotificationPreference) error {
	if !pref.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown notification type %q", pref.Type))
	}
	if pref.Audience != domain.AudienceClient && pref.Audience != domain.AudienceAdmin {
		return domain.NewValidationError("audience", fmt.Sprintf("unknown audience %q", pref.Audience))
	}

	defer g.Invalidate()
	if err := g.repo.Upsert(ctx, pref); err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{
		"type":     pref.Type,
		"audience": pref.Audience,
		"enabled":  pref.Enabled,
	}).Info("notification preference changed")
	return nil
}
