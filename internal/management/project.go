// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package management builds project and dataset requests from user-written
// YAML forms.
package management

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/staranto/smctl/internal/api"
)

// SourceForm is one publication reference as entered.
type SourceForm struct {
	DOI  string `yaml:"doi"`
	PMID int    `yaml:"pmid"`
}

// MetaDataForm describes one planned dataset, organism fields flattened.
type MetaDataForm struct {
	Rna          string `yaml:"rna"`
	ModomicsID   string `yaml:"modomics_id"`
	Tech         string `yaml:"tech"`
	MethodID     string `yaml:"method_id"`
	Note         string `yaml:"note"`
	TaxaID       int    `yaml:"taxa_id"`
	Cto          string `yaml:"cto"`
	AssemblyName string `yaml:"assembly_name"`
	AssemblyID   string `yaml:"assembly_id"`
}

// ProjectForm is the YAML document accepted by project-post.
type ProjectForm struct {
	Forename           string         `yaml:"forename"`
	Surname            string         `yaml:"surname"`
	ContactInstitution string         `yaml:"contact_institution"`
	ContactEmail       string         `yaml:"contact_email"`
	Title              string         `yaml:"title"`
	Summary            string         `yaml:"summary"`
	DatePublished      *string        `yaml:"date_published"`
	ExternalSources    []SourceForm   `yaml:"external_sources"`
	Metadata           []MetaDataForm `yaml:"metadata"`
}

// ReadProjectForm decodes a project form. Unknown keys are rejected.
func ReadProjectForm(r io.Reader) (ProjectForm, error) {
	var form ProjectForm
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&form); err != nil {
		return ProjectForm{}, fmt.Errorf("failed to read project form: %w", err)
	}
	return form, nil
}

// ProjectTemplate converts a form into the request the backend expects.
func ProjectTemplate(form ProjectForm) api.ProjectPostRequest {
	return api.ProjectPostRequest{
		Title:              form.Title,
		Summary:            form.Summary,
		ContactName:        fmt.Sprintf("%s, %s", form.Surname, form.Forename),
		ContactInstitution: form.ContactInstitution,
		ContactEmail:       form.ContactEmail,
		DatePublished:      form.DatePublished,
		ExternalSources:    externalSources(form.ExternalSources),
		Metadata:           metadata(form.Metadata),
	}
}

// externalSources drops entries with neither doi nor pmid.
func externalSources(in []SourceForm) []api.ExternalSource {
	out := []api.ExternalSource{}
	for _, s := range in {
		if s.DOI == "" && s.PMID == 0 {
			continue
		}
		var es api.ExternalSource
		if s.DOI != "" {
			es.DOI = &s.DOI
		}
		if s.PMID != 0 {
			es.PMID = &s.PMID
		}
		out = append(out, es)
	}
	return out
}

func metadata(in []MetaDataForm) []api.ProjectMetaData {
	out := make([]api.ProjectMetaData, 0, len(in))
	for _, m := range in {
		out = append(out, api.ProjectMetaData{
			Rna:        m.Rna,
			ModomicsID: m.ModomicsID,
			Tech:       m.Tech,
			MethodID:   m.MethodID,
			Note:       m.Note,
			Organism: api.ProjectOrganism{
				TaxaID:       m.TaxaID,
				Cto:          m.Cto,
				AssemblyName: m.AssemblyName,
				AssemblyID:   m.AssemblyID,
			},
		})
	}
	return out
}
