// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the revisioned caches over the backend's reference
// data and the queries built on them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/cache"
)

var ErrNoTechnologies = errors.New("no technologies found")

// Source is the part of the API client the catalog needs.
type Source interface {
	Selections(ctx context.Context) ([]api.Selection, error)
	AllDatasets(ctx context.Context) ([]api.Dataset, error)
	MyDatasets(ctx context.Context) ([]api.Dataset, error)
	AllProjects(ctx context.Context) ([]api.Project, error)
	MyProjects(ctx context.Context) ([]api.Project, error)
	Taxa(ctx context.Context) ([]api.Taxa, error)
	Modomics(ctx context.Context) ([]api.Modomics, error)
	RnaTypes(ctx context.Context) ([]api.RnaType, error)
	DetectionMethods(ctx context.Context) ([]api.DetectionMethod, error)
}

// Catalog owns one instance of every cache. Build it once per session and
// pass it to whoever needs reference data.
type Catalog struct {
	Selections        *cache.Cache[[]api.Selection]
	ModificationTypes *cache.Cache[[]api.ModificationType]
	SelectionTaxa     *cache.Cache[[]api.Taxa]
	Ctos              *cache.Cache[[]api.Cto]
	Technologies      *cache.Cache[[]api.Technology]

	AllDatasets     *cache.Cache[[]api.Dataset]
	AllDatasetsByID *cache.Cache[map[string]api.Dataset]
	MyDatasets      *cache.Cache[[]api.Dataset]
	MyDatasetsByID  *cache.Cache[map[string]api.Dataset]

	AllProjects     *cache.Cache[[]api.Project]
	AllProjectsByID *cache.Cache[map[string]api.Project]
	MyProjects      *cache.Cache[[]api.Project]
	MyProjectsByID  *cache.Cache[map[string]api.Project]

	Taxa             *cache.Cache[[]api.Taxa]
	Modomics         *cache.Cache[[]api.Modomics]
	RnaTypes         *cache.Cache[[]api.RnaType]
	DetectionMethods *cache.Cache[[]api.DetectionMethod]
}

// New wires all caches to src. Nothing is fetched until asked for.
func New(src Source) *Catalog {
	c := &Catalog{
		Selections:       cache.New("selections", src.Selections),
		AllDatasets:      cache.New("all datasets", src.AllDatasets),
		MyDatasets:       cache.New("my datasets", src.MyDatasets),
		AllProjects:      cache.New("all projects", src.AllProjects),
		MyProjects:       cache.New("my projects", src.MyProjects),
		Taxa:             cache.New("taxa", src.Taxa),
		Modomics:         cache.New("modomics", src.Modomics),
		RnaTypes:         cache.New("rna types", src.RnaTypes),
		DetectionMethods: cache.New("detection methods", src.DetectionMethods),
	}

	c.ModificationTypes = cache.NewGrouped("modification types", c.Selections,
		func(s api.Selection) int { return s.ModificationID },
		func(s api.Selection) api.ModificationType {
			return api.ModificationType{
				ModificationID: s.ModificationID,
				ModomicsSname:  s.ModomicsSname,
				RnaName:        s.RnaName,
			}
		})
	c.SelectionTaxa = cache.NewGrouped("selection taxa", c.Selections,
		func(s api.Selection) int { return s.TaxaID },
		func(s api.Selection) api.Taxa {
			return api.Taxa{
				TaxaID:    s.TaxaID,
				Domain:    s.Domain,
				Kingdom:   s.Kingdom,
				TaxaName:  s.TaxaName,
				TaxaSname: s.TaxaSname,
			}
		})
	c.Ctos = cache.NewGrouped("ctos", c.Selections,
		func(s api.Selection) int { return s.OrganismID },
		func(s api.Selection) api.Cto {
			return api.Cto{
				OrganismID: s.OrganismID,
				Domain:     s.Domain,
				Kingdom:    s.Kingdom,
				TaxaID:     s.TaxaID,
				TaxaName:   s.TaxaName,
				TaxaSname:  s.TaxaSname,
				Cto:        s.Cto,
			}
		})
	c.Technologies = cache.NewGrouped("technologies", c.Selections,
		func(s api.Selection) int { return s.TechnologyID },
		func(s api.Selection) api.Technology {
			return api.Technology{
				TechnologyID: s.TechnologyID,
				Cls:          s.Cls,
				Meth:         s.Meth,
				Tech:         s.Tech,
			}
		})

	datasetID := func(d api.Dataset) string { return d.DatasetID }
	c.AllDatasetsByID = cache.NewByKey("all datasets by id", c.AllDatasets, datasetID)
	c.MyDatasetsByID = cache.NewByKey("my datasets by id", c.MyDatasets, datasetID)

	projectID := func(p api.Project) string { return p.ProjectID }
	c.AllProjectsByID = cache.NewByKey("all projects by id", c.AllProjects, projectID)
	c.MyProjectsByID = cache.NewByKey("my projects by id", c.MyProjects, projectID)

	return c
}

// CtosByModificationIDs returns the organisms with data for any of the
// modifications.
func (c *Catalog) CtosByModificationIDs(ctx context.Context, modificationIDs []int) ([]api.Cto, error) {
	sel, err := c.Selections.Get(ctx)
	if err != nil {
		return nil, err
	}
	organisms := map[int]bool{}
	for _, s := range sel {
		if slices.Contains(modificationIDs, s.ModificationID) {
			organisms[s.OrganismID] = true
		}
	}

	ctos, err := c.Ctos.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(ctos, func(x api.Cto) bool { return organisms[x.OrganismID] }), nil
}

// TechnologiesByModificationIDsAndOrganismID returns the technologies with
// data for any of the modifications in the organism.
func (c *Catalog) TechnologiesByModificationIDsAndOrganismID(ctx context.Context, modificationIDs []int, organismID int) ([]api.Technology, error) {
	sel, err := c.Selections.Get(ctx)
	if err != nil {
		return nil, err
	}
	techs := map[int]bool{}
	for _, s := range sel {
		if slices.Contains(modificationIDs, s.ModificationID) && s.OrganismID == organismID {
			techs[s.TechnologyID] = true
		}
	}

	all, err := c.Technologies.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(x api.Technology) bool { return techs[x.TechnologyID] }), nil
}

// SelectionsByIDs returns the selections matching the modification, the
// organism and any of the technologies.
func (c *Catalog) SelectionsByIDs(ctx context.Context, modificationID, organismID int, technologyIDs []int) ([]api.Selection, error) {
	sel, err := c.Selections.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(sel, func(x api.Selection) bool {
		return x.ModificationID == modificationID &&
			x.OrganismID == organismID &&
			slices.Contains(technologyIDs, x.TechnologyID)
	}), nil
}

// SelectionsByTaxaID returns the selections of a taxon.
func (c *Catalog) SelectionsByTaxaID(ctx context.Context, taxaID int) ([]api.Selection, error) {
	sel, err := c.Selections.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(sel, func(x api.Selection) bool { return x.TaxaID == taxaID }), nil
}

// TechnologiesByIDs returns the technologies with the given IDs. Asking for
// IDs none of which exist is an error.
func (c *Catalog) TechnologiesByIDs(ctx context.Context, technologyIDs []int) ([]api.Technology, error) {
	all, err := c.Technologies.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(all, func(x api.Technology) bool { return slices.Contains(technologyIDs, x.TechnologyID) })
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: wanted IDs %v", ErrNoTechnologies, technologyIDs)
	}
	return out, nil
}

// ModificationTypesByRnaName returns the modification types of an RNA.
func (c *Catalog) ModificationTypesByRnaName(ctx context.Context, rnaName string) ([]api.ModificationType, error) {
	all, err := c.ModificationTypes.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(x api.ModificationType) bool { return x.RnaName == rnaName }), nil
}

// DatasetsByTaxaID returns the public datasets of a taxon.
func (c *Catalog) DatasetsByTaxaID(ctx context.Context, taxaID int) ([]api.Dataset, error) {
	all, err := c.AllDatasets.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(x api.Dataset) bool { return x.TaxaID == taxaID }), nil
}

// Dataset looks up a public dataset by ID.
func (c *Catalog) Dataset(ctx context.Context, id string) (api.Dataset, bool, error) {
	all, err := c.AllDatasetsByID.Get(ctx)
	if err != nil {
		return api.Dataset{}, false, err
	}
	if d, ok := all[id]; ok {
		return d, true, nil
	}
	return api.Dataset{}, false, nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, x := range in {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}
