// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/catalog"
)

// ErrNotOffered means a parameter exists but has no data in combination
// with the parameters chosen before it.
var ErrNotOffered = errors.New("no data for this combination")

// IDs is the flat, command-line form of Parameters.
type IDs struct {
	TaxaID         int
	ModificationID int
	OrganismID     int
	TechnologyIDs  []int
	RnaType        string
	SearchBy       By
	Gene           string
	Biotypes       []string
	Features       []string
	Chrom          string
	ChromStart     *int64
	ChromEnd       *int64
}

// Resolve looks the IDs up in the catalog. Zero IDs stay unset. The result
// is complete when the taxon exists and an RNA type is given.
//
// Choices narrow each other the way the selection table does: the organism
// must belong to the taxon and have data for the modification, and every
// technology must have data for both.
func Resolve(ctx context.Context, cat *catalog.Catalog, ids IDs) (Parameters, error) {
	p := Parameters{
		Primary: Primary{RnaType: ids.RnaType},
		Secondary: Secondary{
			SearchBy:   ids.SearchBy,
			Gene:       ids.Gene,
			Biotypes:   ids.Biotypes,
			Features:   ids.Features,
			ChromStart: ids.ChromStart,
			ChromEnd:   ids.ChromEnd,
		},
	}
	if p.SearchBy == "" {
		p.SearchBy = ByModification
	}
	if ids.Chrom != "" {
		p.Chrom = &api.Chrom{Chrom: ids.Chrom}
	}

	if ids.TaxaID != 0 {
		taxa, err := cat.SelectionTaxa.Get(ctx)
		if err != nil {
			return p, err
		}
		p.Taxa = find(taxa, func(x api.Taxa) bool { return x.TaxaID == ids.TaxaID })
		if p.Taxa == nil {
			return p, fmt.Errorf("%w: unknown taxa ID %d", ErrIncompleteSearch, ids.TaxaID)
		}
		if p.Selections, err = cat.SelectionsByTaxaID(ctx, ids.TaxaID); err != nil {
			return p, err
		}
	}

	if ids.ModificationID != 0 {
		mods, err := cat.ModificationTypes.Get(ctx)
		if err != nil {
			return p, err
		}
		p.ModificationType = find(mods, func(x api.ModificationType) bool { return x.ModificationID == ids.ModificationID })
		if p.ModificationType == nil {
			return p, fmt.Errorf("unknown modification ID %d", ids.ModificationID)
		}
	}

	if ids.OrganismID != 0 {
		ctos, err := cat.Ctos.Get(ctx)
		if err != nil {
			return p, err
		}
		p.Cto = find(ctos, func(x api.Cto) bool { return x.OrganismID == ids.OrganismID })
		if p.Cto == nil {
			return p, fmt.Errorf("unknown organism ID %d", ids.OrganismID)
		}
		if p.Taxa != nil && p.Cto.TaxaID != p.Taxa.TaxaID {
			return p, fmt.Errorf("%w: organism %d (%s) is not of taxa %d",
				ErrNotOffered, ids.OrganismID, p.Cto.Cto, p.Taxa.TaxaID)
		}
		if p.ModificationType != nil {
			offered, err := cat.CtosByModificationIDs(ctx, []int{p.ModificationType.ModificationID})
			if err != nil {
				return p, err
			}
			if find(offered, func(x api.Cto) bool { return x.OrganismID == ids.OrganismID }) == nil {
				return p, fmt.Errorf("%w: organism %d (%s) has no %s data",
					ErrNotOffered, ids.OrganismID, p.Cto.Cto, p.ModificationType.ModomicsSname)
			}
		}
	}

	if len(ids.TechnologyIDs) > 0 {
		techs, err := cat.TechnologiesByIDs(ctx, ids.TechnologyIDs)
		if err != nil {
			return p, err
		}
		p.Technologies = techs

		if p.ModificationType != nil && p.Cto != nil {
			offered, err := cat.TechnologiesByModificationIDsAndOrganismID(ctx,
				[]int{p.ModificationType.ModificationID}, p.Cto.OrganismID)
			if err != nil {
				return p, err
			}
			for _, t := range techs {
				if find(offered, func(x api.Technology) bool { return x.TechnologyID == t.TechnologyID }) == nil {
					return p, fmt.Errorf("%w: technology %d (%s) has no %s data for organism %d",
						ErrNotOffered, t.TechnologyID, t.Tech, p.ModificationType.ModomicsSname, p.Cto.OrganismID)
				}
			}
		}
	}

	if p.ModificationType != nil && p.Cto != nil && len(p.Technologies) > 0 {
		techIDs := make([]int, 0, len(p.Technologies))
		for _, t := range p.Technologies {
			techIDs = append(techIDs, t.TechnologyID)
		}
		sel, err := cat.SelectionsByIDs(ctx, p.ModificationType.ModificationID, p.Cto.OrganismID, techIDs)
		if err != nil {
			return p, err
		}
		p.Selections = sel
	}

	return p, nil
}

func find[T any](in []T, match func(T) bool) *T {
	for i := range in {
		if match(in[i]) {
			return &in[i]
		}
	}
	return nil
}
