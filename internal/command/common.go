// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/attrs"
	"github.com/staranto/smctl/internal/filters"
	"github.com/staranto/smctl/internal/meta"
	"github.com/staranto/smctl/internal/output"
)

// DumpSchemaIfRequested prints the attribute paths of the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// BuildRecordAttrs is BuildAttrs for records of type t. Keys given with
// --attrs or --filter that t does not have are errors, so a typo such as
// "coverge>10" fails instead of matching nothing.
func BuildRecordAttrs(cmd *cli.Command, t reflect.Type, defaults ...string) (attrs.AttrList, error) {
	known := output.SchemaPaths("", t)

	extras, err := attrs.Parse(cmd.String("attrs"))
	if err != nil {
		return nil, err
	}
	if err := extras.Validate(known); err != nil {
		return nil, err
	}

	al := BuildAttrs(cmd, defaults...)
	fs, err := filters.Parse(cmd.String("filter"))
	if err != nil {
		return nil, err
	}
	if err := filters.Validate(fs, al, known); err != nil {
		return nil, err
	}
	return al, nil
}

// EmitJSON marshals results and passes them to the common output routine.
func EmitJSON(results any, al attrs.AttrList, cmd *cli.Command) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(*bytes.NewBuffer(data), al, cmd, "", writer(cmd))
}

// GetMeta returns the meta.Meta stored in the Metadata of cmd or one of its
// ancestors. If missing, it returns an empty Meta.
func GetMeta(cmd *cli.Command) *meta.Meta {
	if cmd == nil {
		return &meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if m, ok := c.Metadata["meta"].(*meta.Meta); ok {
			return m
		}
	}
	return &meta.Meta{}
}

// writer is where a command prints its results.
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// errWriter is where a command prints progress and notices.
func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands using a consistent pattern. The builder wires metadata, adds
// the schema flag, applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      *meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			newSchemaFlag(),
		}, NewGlobalFlags(qcb.Name, qcb.Meta.Config.Source)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles GetMeta, schema dumping, BuildAttrs and
// output emission, with the data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command, *meta.Meta) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s %v", qar.CommandName, cmd.Args().Slice())

	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs, err := BuildRecordAttrs(cmd, qar.SchemaType, qar.DefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", attrs)

	results, err := qar.FetchFn(ctx, cmd, m)
	if err != nil {
		return err
	}

	return EmitJSON(results, attrs, cmd)
}
