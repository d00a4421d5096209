// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

// ModificationType is one modification as offered by the selection table.
type ModificationType struct {
	ModificationID int    `json:"modification_id"`
	ModomicsSname  string `json:"modomics_sname"`
	RnaName        string `json:"rna_name"`
}

// Taxa describes an organism at species level.
type Taxa struct {
	Domain    string  `json:"domain"`
	Kingdom   *string `json:"kingdom"`
	Phylum    *string `json:"phylum,omitempty"`
	TaxaID    int     `json:"taxa_id"`
	TaxaName  string  `json:"taxa_name"`
	TaxaSname string  `json:"taxa_sname"`
}

// Cto is a cell, tissue or organism. OrganismID refers to the backend's
// Organism table.
type Cto struct {
	Domain     string  `json:"domain"`
	Kingdom    *string `json:"kingdom"`
	TaxaID     int     `json:"taxa_id"`
	TaxaName   string  `json:"taxa_name"`
	TaxaSname  string  `json:"taxa_sname"`
	OrganismID int     `json:"organism_id"`
	Cto        string  `json:"cto"`
}

// Technology is a detection technology and its method.
type Technology struct {
	TechnologyID int    `json:"technology_id"`
	Cls          string `json:"cls"`
	Meth         string `json:"meth"`
	Tech         string `json:"tech"`
}

// Selection is one row of the selection table: a combination of
// modification, organism and technology for which data exists.
type Selection struct {
	ModificationID int     `json:"modification_id"`
	ModomicsSname  string  `json:"modomics_sname"`
	RnaName        string  `json:"rna_name"`
	Domain         string  `json:"domain"`
	Kingdom        *string `json:"kingdom"`
	TaxaID         int     `json:"taxa_id"`
	TaxaName       string  `json:"taxa_name"`
	TaxaSname      string  `json:"taxa_sname"`
	OrganismID     int     `json:"organism_id"`
	Cto            string  `json:"cto"`
	TechnologyID   int     `json:"technology_id"`
	Cls            string  `json:"cls"`
	Meth           string  `json:"meth"`
	Tech           string  `json:"tech"`
	SelectionID    int     `json:"selection_id"`
}

// Dataset is a published or private dataset.
type Dataset struct {
	ProjectID              string  `json:"project_id"`
	DatasetID              string  `json:"dataset_id"`
	DatasetTitle           string  `json:"dataset_title"`
	SequencingPlatform     *string `json:"sequencing_platform"`
	Basecalling            *string `json:"basecalling"`
	BioinformaticsWorkflow *string `json:"bioinformatics_workflow"`
	Experiment             *string `json:"experiment"`
	ProjectTitle           string  `json:"project_title"`
	ProjectSummary         string  `json:"project_summary"`
	DOI                    string  `json:"doi,omitempty"`
	PMID                   int     `json:"pmid,omitempty"`
	Rna                    string  `json:"rna"`
	ModomicsSname          string  `json:"modomics_sname"`
	Tech                   string  `json:"tech"`
	TaxaSname              string  `json:"taxa_sname"`
	TaxaID                 int     `json:"taxa_id"`
	Cto                    string  `json:"cto"`
}

// Project groups datasets.
type Project struct {
	PMID               string `json:"pmid"`
	ProjectTitle       string `json:"project_title"`
	ProjectID          string `json:"project_id"`
	ProjectSummary     string `json:"project_summary"`
	DOI                string `json:"doi"`
	DateAdded          int64  `json:"date_added"`
	DatePublished      *int64 `json:"date_published"`
	ContactName        string `json:"contact_name"`
	ContactInstitution string `json:"contact_institution"`
}

// Modomics is an entry of the MODOMICS reference.
type Modomics struct {
	ID          string `json:"id"`
	ReferenceID int    `json:"reference_id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Moiety      string `json:"moiety"`
}

// RnaType is a kind of RNA, e.g. WTS.
type RnaType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DetectionMethod is a method class.
type DetectionMethod struct {
	ID   string `json:"id"`
	Cls  string `json:"cls"`
	Meth string `json:"meth"`
}

// Assembly is a genome assembly of a taxon.
type Assembly struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Chrom is a chromosome and its size.
type Chrom struct {
	Chrom string `json:"chrom"`
	Size  int64  `json:"size"`
}

// Strand is one of "+", "-" or ".".
type Strand string

const (
	StrandPlus    Strand = "+"
	StrandMinus   Strand = "-"
	StrandUnknown Strand = "."
)

// Bed6Record is a BED6 line.
type Bed6Record struct {
	Chrom  string `json:"chrom"`
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Strand Strand `json:"strand"`
}

// EufRecord is a bedRMod line.
type EufRecord struct {
	Bed6Record
	Coverage  int    `json:"coverage"`
	Frequency int    `json:"frequency"`
	EufID     string `json:"eufid"`
}

// Modification is one site returned by a modification query.
type Modification struct {
	ID        int    `json:"id"`
	Chrom     string `json:"chrom"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Strand    Strand `json:"strand"`
	Coverage  int    `json:"coverage"`
	Frequency int    `json:"frequency"`
	DatasetID string `json:"dataset_id"`
	Feature   string `json:"feature"`
	GeneID    string `json:"gene_id"`
	GeneName  string `json:"gene_name"`
	Tech      string `json:"tech"`
	TaxaID    int    `json:"taxa_id"`
	Cto       string `json:"cto"`
}

// ModificationResponse is one page of a modification query.
type ModificationResponse struct {
	Records      []Modification `json:"records"`
	TotalRecords int            `json:"totalRecords"`
}

// SiteParams identify a single modification site.
type SiteParams struct {
	TaxaID int    `url:"taxaId"`
	Chrom  string `url:"chrom"`
	Start  int64  `url:"start"`
	End    int64  `url:"end"`
	Strand Strand `url:"strand"`
}

// SiteParamsOf returns the site parameters of m.
func SiteParamsOf(m Modification) SiteParams {
	return SiteParams{
		TaxaID: m.TaxaID,
		Chrom:  m.Chrom,
		Start:  m.Start,
		End:    m.End,
		Strand: m.Strand,
	}
}

// SiteWiseInfo is what other datasets know about a site.
type SiteWiseInfo struct {
	Bed6Record
	DatasetID      string `json:"dataset_id"`
	ModificationID int    `json:"modification_id"`
	Rna            string `json:"rna"`
	ShortName      string `json:"short_name"`
	Cto            string `json:"cto"`
	Tech           string `json:"tech"`
	Coverage       int    `json:"coverage"`
	Frequency      int    `json:"frequency"`
}

// ComparisonParams select the datasets of a comparison. Slices are sent as
// repeated keys.
type ComparisonParams struct {
	Reference  []string `url:"reference" json:"reference"`
	Comparison []string `url:"comparison,omitempty" json:"comparison,omitempty"`
	Upload     string   `url:"upload,omitempty" json:"upload,omitempty"`
	UploadName string   `url:"upload_name,omitempty" json:"upload_name,omitempty"`
	Strand     bool     `url:"strand" json:"strand"`
	EUF        *bool    `url:"euf,omitempty" json:"euf,omitempty"`
	TaxaID     int      `url:"taxaId,omitempty" json:"taxaId,omitempty"`
}

// IntersectRecord pairs overlapping records.
type IntersectRecord struct {
	A EufRecord `json:"a"`
	B EufRecord `json:"b"`
}

// ClosestRecord pairs a record with its nearest neighbour.
type ClosestRecord struct {
	A        EufRecord `json:"a"`
	B        EufRecord `json:"b"`
	Distance int64     `json:"distance"`
}

// BamFile is a BAM file attached to a dataset.
type BamFile struct {
	ID               int    `json:"id"`
	OriginalFileName string `json:"original_file_name"`
	StorageFileName  string `json:"storage_file_name"`
	DatasetID        string `json:"dataset_id"`
}

// DatasetPostRequest adds a dataset from a previously uploaded file.
type DatasetPostRequest struct {
	SMID           string `json:"smid"`
	FileID         string `json:"file_id"`
	RnaType        string `json:"rna_type"`
	ModificationID []int  `json:"modification_id"`
	OrganismID     int    `json:"organism_id"`
	AssemblyID     int    `json:"assembly_id"`
	TechnologyID   int    `json:"technology_id"`
	Title          string `json:"title"`
}

// ProjectOrganism is the organism part of project metadata.
type ProjectOrganism struct {
	TaxaID       int    `json:"taxa_id" yaml:"taxa_id"`
	Cto          string `json:"cto" yaml:"cto"`
	AssemblyName string `json:"assembly_name" yaml:"assembly_name"`
	AssemblyID   string `json:"assembly_id" yaml:"assembly_id"`
}

// ProjectMetaData describes one planned dataset of a project.
type ProjectMetaData struct {
	Rna        string          `json:"rna"`
	ModomicsID string          `json:"modomics_id"`
	Tech       string          `json:"tech"`
	MethodID   string          `json:"method_id"`
	Note       string          `json:"note"`
	Organism   ProjectOrganism `json:"organism"`
}

// ExternalSource is a publication reference. Unset values are sent as null.
type ExternalSource struct {
	DOI  *string `json:"doi"`
	PMID *int    `json:"pmid"`
}

// ProjectPostRequest asks the maintainers to create a project.
type ProjectPostRequest struct {
	Title              string            `json:"title"`
	Summary            string            `json:"summary"`
	ContactName        string            `json:"contact_name"`
	ContactInstitution string            `json:"contact_institution"`
	ContactEmail       string            `json:"contact_email"`
	DatePublished      *string           `json:"date_published"`
	ExternalSources    []ExternalSource  `json:"external_sources"`
	Metadata           []ProjectMetaData `json:"metadata"`
}

type recordsResponse[T any] struct {
	Records []T `json:"records"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type fileResponse struct {
	FileID string `json:"file_id"`
}
