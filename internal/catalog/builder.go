// Package catalog derives the sellable service-package list from the raw
// per-provider offering feed and holds the active catalog plus the provider
// roster for the rest of the engine to read.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/motohub/motohub-cart-service/internal/models"
)

// BuildPackages derives one ServicePackage per service type from the raw
// offering feed. Inactive offerings are discarded first. The derived price is
// the minimum quoted price across offerings that specify one; a package with
// no quoted (or a zero) price is marked custom. Output is sorted by name so
// rebuilds are deterministic.
func BuildPackages(offerings []models.ProviderOffering) []models.ServicePackage {
	type group struct {
		price       *float64
		description string
		providers   map[string]struct{}
	}

	groups := make(map[string]*group)
	for _, off := range offerings {
		if !off.IsActive() {
			continue
		}
		if off.ServiceType == "" {
			continue
		}
		g, ok := groups[off.ServiceType]
		if !ok {
			g = &group{providers: make(map[string]struct{})}
			groups[off.ServiceType] = g
		}
		g.providers[off.ProviderID] = struct{}{}
		if off.Price != nil && (g.price == nil || *off.Price < *g.price) {
			p := *off.Price
			g.price = &p
		}
		if g.description == "" && off.Description != "" {
			g.description = off.Description
		}
	}

	packages := make([]models.ServicePackage, 0, len(groups))
	for serviceType, g := range groups {
		pkg := models.ServicePackage{
			ID:   ServiceID(serviceType),
			Name: serviceType,
		}
		if g.price != nil {
			pkg.Price = *g.price
		}
		pkg.IsCustom = g.price == nil || *g.price == 0
		if g.description != "" {
			pkg.Description = g.description
		} else {
			pkg.Description = fmt.Sprintf("%d providers available", len(g.providers))
		}
		packages = append(packages, pkg)
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Name < packages[j].Name })
	return packages
}

// ServiceID turns a service type name into a stable catalog identifier.
func ServiceID(serviceType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(serviceType)), " ", "-")
}

// Reconcile drops cart items whose service id no longer exists in the given
// package list and returns the ids that were dropped. Seeding an empty cart is
// the cart engine's call, not the builder's.
func Reconcile(state *models.CartState, packages []models.ServicePackage) []string {
	known := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		known[pkg.ID] = struct{}{}
	}

	var dropped []string
	kept := state.Items[:0]
	for _, item := range state.Items {
		if _, ok := known[item.ServiceID]; ok {
			kept = append(kept, item)
		} else {
			dropped = append(dropped, item.ServiceID)
		}
	}
	state.Items = kept
	return dropped
}
