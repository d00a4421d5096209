// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"path"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/meta"
	"github.com/staranto/smctl/internal/upload"
)

// UploadRow is one upload as reported to the user.
type UploadRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   string `json:"size"`
	State  string `json:"state"`
	Info   string `json:"info"`
	Error  string `json:"error,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

func uploadRow(j upload.Job) UploadRow {
	return UploadRow{
		ID:    j.ID,
		Name:  j.Name,
		Size:  j.HumanSize(),
		State: string(j.State),
		Info:  j.Info,
		Error: j.ErrorMessage,
	}
}

// uploadTemporary posts each source to the temporary area. The file IDs are
// what dataset-post and compare refer to.
func uploadTemporary(ctx context.Context, m *meta.Meta, sources []string) ([]UploadRow, error) {
	var rows []UploadRow
	for _, src := range sources {
		p, err := m.Opener.Open(ctx, src)
		if err != nil {
			return rows, err
		}
		f, err := m.Client.UploadTemporaryDataset(ctx, p)
		if err != nil {
			return rows, err
		}
		rows = append(rows, UploadRow{
			Name:   f.Name,
			Size:   humanize.IBytes(uint64(max(p.Size, 0))),
			State:  string(upload.Done),
			Info:   "temporary",
			FileID: f.ID,
		})
	}
	return rows, nil
}

// uploadQueued runs every source through the upload manager, one at a time,
// and reports the final job states. endpoint maps a payload name to its
// target.
func uploadQueued(ctx context.Context, m *meta.Meta, sources []string, info string, endpoint func(name string) string) ([]UploadRow, error) {
	mgr := upload.NewManager(ctx, m.Client)
	for _, src := range sources {
		p, err := m.Opener.Open(ctx, src)
		if err != nil {
			return nil, err
		}
		j := mgr.Schedule(p, endpoint(p.Name), info)
		log.Debugf("queued %s as %s", src, j.ID)
	}
	if err := mgr.Wait(ctx); err != nil {
		return nil, err
	}

	var (
		rows   []UploadRow
		failed int
	)
	for _, j := range mgr.Jobs() {
		if j.State == upload.Failed {
			failed++
		}
		rows = append(rows, uploadRow(j))
	}
	if failed > 0 {
		return rows, fmt.Errorf("%d of %d uploads failed", failed, len(rows))
	}
	return rows, nil
}

// UploadCommandAction uploads files as temporary datasets, as BAM files of a
// dataset or to an arbitrary endpoint.
func UploadCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	sources := cmd.Args().Slice()

	if DumpSchemaIfRequested(cmd, reflect.TypeOf(UploadRow{})) {
		return nil
	}
	attrs, err := BuildRecordAttrs(cmd, reflect.TypeOf(UploadRow{}), "name", "size", "state", "file_id", "error")
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return errors.New("no files given")
	}
	if cmd.String("bam") != "" && cmd.String("endpoint") != "" {
		return errors.New("--bam and --endpoint are mutually exclusive")
	}

	var rows []UploadRow
	switch {
	case cmd.String("bam") != "":
		dataset := cmd.String("bam")
		rows, err = uploadQueued(ctx, m, sources, "BAM file of "+dataset, func(name string) string {
			return api.BamFileUploadEndpoint(dataset, name)
		})
	case cmd.String("endpoint") != "":
		endpoint := cmd.String("endpoint")
		rows, err = uploadQueued(ctx, m, sources, endpoint, func(name string) string {
			return path.Join(endpoint, name)
		})
	default:
		rows, err = uploadTemporary(ctx, m, sources)
	}

	if len(rows) > 0 {
		if emitErr := EmitJSON(rows, attrs, cmd); emitErr != nil {
			return emitErr
		}
	}
	return err
}

// UploadCommandBuilder constructs the upload command.
func UploadCommandBuilder(m *meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "upload",
		Usage:     "upload files (local paths or s3://bucket/key)",
		UsageText: "smctl upload [--bam DATASET | --endpoint PATH] FILE... [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bam",
				Usage: "attach the files as BAM files of this dataset",
			},
			&cli.StringFlag{
				Name:   "endpoint",
				Usage:  "post the files below this API endpoint",
				Hidden: true,
			},
		},
		Action: UploadCommandAction,
		Meta:   m,
	}).Build()
}

// BamCommandBuilder groups the BAM file commands.
func BamCommandBuilder(m *meta.Meta) *cli.Command {
	datasetFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "dataset",
			Aliases:  []string{"d"},
			Usage:    "dataset ID",
			Required: true,
		}
	}
	nameFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "name",
			Usage:    "original file name of the BAM file",
			Required: true,
		}
	}

	list := &QueryActionRunner[api.BamFile]{
		CommandName:  "bam list",
		SchemaType:   reflect.TypeOf(api.BamFile{}),
		DefaultAttrs: []string{"id", "original_file_name", "storage_file_name"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.BamFile, error) {
			return m.Client.BamFiles(ctx, cmd.String("dataset"))
		},
	}

	return &cli.Command{
		Name:  "bam",
		Usage: "manage BAM files of a dataset",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			(&QueryCommandBuilder{
				Name:      "list",
				Usage:     "list BAM files of a dataset",
				UsageText: "smctl bam list --dataset ID [options]",
				Flags:     []cli.Flag{datasetFlag()},
				Action:    list.Run,
				Meta:      m,
			}).Build(),
			{
				Name:      "delete",
				Usage:     "delete a BAM file",
				UsageText: "smctl bam delete --dataset ID --name FILE [--yes]",
				Flags:     []cli.Flag{datasetFlag(), nameFlag(), newYesFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m := GetMeta(cmd)
					dataset, name := cmd.String("dataset"), cmd.String("name")
					return confirm(cmd, m, fmt.Sprintf("Delete BAM file '%s' of dataset %s?", name, dataset), func() error {
						return m.Client.DeleteBamFile(ctx, dataset, name)
					})
				},
			},
			{
				Name:      "url",
				Usage:     "print the download URL of a BAM file",
				UsageText: "smctl bam url --dataset ID --name FILE",
				Flags:     []cli.Flag{datasetFlag(), nameFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					m := GetMeta(cmd)
					_, err := fmt.Fprintln(writer(cmd), m.Client.BamFileURL(cmd.String("dataset"), cmd.String("name")))
					return err
				},
			},
		},
	}
}
