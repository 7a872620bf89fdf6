package catalog

import (
	"sync"

	"github.com/motohub/motohub-cart-service/internal/models"
)

// Snapshot holds the active catalog and provider roster. The feed refresher
// is the only writer; everything else reads through it. Readers always get
// copies, never the underlying slices.
type Snapshot struct {
	mu       sync.RWMutex
	packages []models.ServicePackage
	byID     map[string]models.ServicePackage
	roster   []models.ServiceProvider
}

// NewSnapshot starts from the static default catalog and an empty roster.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.replacePackages(DefaultPackages())
	return s
}

// Rebuild derives a fresh catalog from the offering feed and swaps in the new
// roster. An empty derived package list falls back to the static defaults.
// Returns the packages now active.
func (s *Snapshot) Rebuild(offerings []models.ProviderOffering, roster []models.ServiceProvider) []models.ServicePackage {
	packages := BuildPackages(offerings)
	if len(packages) == 0 {
		packages = DefaultPackages()
	}

	s.mu.Lock()
	s.replacePackages(packages)
	s.roster = append([]models.ServiceProvider(nil), roster...)
	s.mu.Unlock()

	return packages
}

func (s *Snapshot) replacePackages(packages []models.ServicePackage) {
	s.packages = packages
	s.byID = make(map[string]models.ServicePackage, len(packages))
	for _, pkg := range packages {
		s.byID[pkg.ID] = pkg
	}
}

// Packages returns the active catalog.
func (s *Snapshot) Packages() []models.ServicePackage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ServicePackage(nil), s.packages...)
}

// Package looks up one package by id.
func (s *Snapshot) Package(id string) (models.ServicePackage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkg, ok := s.byID[id]
	return pkg, ok
}

// Roster returns the current provider roster.
func (s *Snapshot) Roster() []models.ServiceProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ServiceProvider(nil), s.roster...)
}
