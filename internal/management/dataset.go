// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package management

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/staranto/smctl/internal/api"
)

// DatasetForm is the YAML document accepted by dataset-post.
type DatasetForm struct {
	SMID           string `yaml:"smid"`
	FileID         string `yaml:"file_id"`
	RnaType        string `yaml:"rna_type"`
	ModificationID []int  `yaml:"modification_id"`
	OrganismID     int    `yaml:"organism_id"`
	AssemblyID     int    `yaml:"assembly_id"`
	TechnologyID   int    `yaml:"technology_id"`
	Title          string `yaml:"title"`
}

// ReadDatasetForm decodes a dataset form and checks required fields.
func ReadDatasetForm(r io.Reader) (api.DatasetPostRequest, error) {
	var form DatasetForm
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&form); err != nil {
		return api.DatasetPostRequest{}, fmt.Errorf("failed to read dataset form: %w", err)
	}

	var errs []error
	if form.SMID == "" {
		errs = append(errs, errors.New("smid is required"))
	}
	if form.FileID == "" {
		errs = append(errs, errors.New("file_id is required"))
	}
	if len(form.ModificationID) == 0 {
		errs = append(errs, errors.New("modification_id needs at least one entry"))
	}
	if err := errors.Join(errs...); err != nil {
		return api.DatasetPostRequest{}, err
	}

	return api.DatasetPostRequest(form), nil
}
