// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/management"
	"github.com/staranto/smctl/internal/meta"
)

// WriteAccess tells whether the user may change a dataset. The title is
// filled in for datasets listed as the user's own.
type WriteAccess struct {
	DatasetID    string `json:"dataset_id"`
	WriteAccess  bool   `json:"write_access"`
	DatasetTitle string `json:"dataset_title,omitempty"`
}

// MayChangeCommandBuilder asks whether the logged-in user may change a
// dataset.
func MayChangeCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[WriteAccess]{
		CommandName:  "may-change",
		SchemaType:   reflect.TypeOf(WriteAccess{}),
		DefaultAttrs: []string{"dataset_id", "write_access", "dataset_title"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]WriteAccess, error) {
			var out []WriteAccess
			for _, id := range cmd.Args().Slice() {
				ok, err := m.Client.MayChangeDataset(ctx, id)
				if err != nil {
					return nil, err
				}
				out = append(out, WriteAccess{DatasetID: id, WriteAccess: ok})
			}
			if len(out) == 0 {
				return out, nil
			}
			mine, err := m.Catalog.MyDatasetsByID.Get(ctx)
			if err != nil {
				return nil, err
			}
			for i := range out {
				out[i].DatasetTitle = mine[out[i].DatasetID].DatasetTitle
			}
			return out, nil
		},
	}
	return (&QueryCommandBuilder{
		Name:      "may-change",
		Usage:     "tell whether the logged-in user may change datasets",
		UsageText: "smctl may-change DATASET_ID... [options]",
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

func newFormFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:      "file",
		Aliases:   []string{"F"},
		Usage:     `YAML form, "-" for stdin`,
		Value:     "-",
		TakesFile: true,
	}
}

func newDryRunFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print the request instead of sending it",
	}
}

// openForm opens the --file argument.
func openForm(cmd *cli.Command) (io.ReadCloser, error) {
	name := cmd.String("file")
	if name == "-" {
		return io.NopCloser(reader(cmd)), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}
	return f, nil
}

func printRequest(cmd *cli.Command, req any) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = fmt.Fprintln(writer(cmd), string(data))
	return err
}

// ProjectPostCommandAction sends a project request built from a YAML form.
func ProjectPostCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	r, err := openForm(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	form, err := management.ReadProjectForm(r)
	if err != nil {
		return err
	}
	req := management.ProjectTemplate(form)
	if cmd.Bool("dry-run") {
		return printRequest(cmd, req)
	}
	if err := m.Client.PostProject(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(errWriter(cmd), "Project request '%s' submitted.\n", req.Title)
	return nil
}

// ProjectPostCommandBuilder constructs the project-post command.
func ProjectPostCommandBuilder(m *meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "project-post",
		Usage:     "request a new project",
		UsageText: "smctl project-post [--file FORM.yaml] [--dry-run]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags:  []cli.Flag{newFormFlag(), newDryRunFlag()},
		Action: ProjectPostCommandAction,
	}
}

// DatasetPostCommandAction adds a dataset from an uploaded file.
func DatasetPostCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	r, err := openForm(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	req, err := management.ReadDatasetForm(r)
	if err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		return printRequest(cmd, req)
	}
	if err := m.Client.PostDataset(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(errWriter(cmd), "Dataset '%s' submitted.\n", req.Title)
	return nil
}

// DatasetPostCommandBuilder constructs the dataset-post command.
func DatasetPostCommandBuilder(m *meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "dataset-post",
		Usage:     "add a dataset from an uploaded file",
		UsageText: "smctl dataset-post [--file FORM.yaml] [--dry-run]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags:  []cli.Flag{newFormFlag(), newDryRunFlag()},
		Action: DatasetPostCommandAction,
	}
}
