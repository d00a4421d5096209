// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/aws"
	"github.com/staranto/smctl/internal/cacheutil"
	"github.com/staranto/smctl/internal/catalog"
	"github.com/staranto/smctl/internal/config"
	"github.com/staranto/smctl/internal/dialog"
	"github.com/staranto/smctl/internal/meta"
	"github.com/staranto/smctl/internal/token"
	"github.com/staranto/smctl/internal/upload"
)

const (
	retryWaitMin = 1 * time.Second
	retryWaitMax = 30 * time.Second
)

// NewMeta builds the session shared by every command: settings, tokens,
// dialog state and the API client.
func NewMeta(ctx context.Context, args []string) (*meta.Meta, error) {
	// The arg[1] immediately following the binary (arg[0]) is the smctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.Debugf("no config: %v", err)
	}
	settings, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}

	m := &meta.Meta{
		Args:     args,
		Config:   cfg,
		Context:  ctx,
		Settings: settings,
		Dialog:   dialog.New(),
		Tokens:   token.New(),
	}

	if p, err := token.CredentialsPath(); err == nil {
		m.CredentialsPath = p
	} else {
		log.WithError(err).Debug("no credentials file")
	}

	switch {
	case settings.Token != "":
		if err := m.Tokens.Set("", settings.Token); err != nil {
			return nil, fmt.Errorf("SMCTL_TOKEN: %w", err)
		}
	case m.CredentialsPath != "":
		if err := m.Tokens.Load(m.CredentialsPath); err != nil {
			log.WithError(err).Warn("ignoring stored credentials")
		}
	}

	if settings.WorkflowStatus != "" && !m.Dialog.LoadWorkflowStatus(settings.WorkflowStatus) {
		log.Warn("SMCTL_WORKFLOW_STATUS not understood")
	}

	baseURL := settings.APIURL
	if baseURL == "" {
		baseURL, _ = config.GetString("api_url", api.DefaultBaseURL)
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = settings.Timeout
	opts := []api.Option{
		api.WithHTTPClient(hc),
		api.WithRetries(settings.Retries, retryWaitMin, retryWaitMax),
	}
	if store := cacheutil.Default(settings.CacheMaxAge); store != nil {
		opts = append(opts, api.WithResponseCache(store))
	}

	m.Client = api.New(baseURL, m.Tokens, m.Dialog, opts...)
	m.Catalog = catalog.New(m.Client)
	m.Opener = upload.Opener{S3: newS3(settings.AWS)}

	log.Debugf("api=%s namespace=%q config=%q", m.Client.BaseURL(), ns, cfg.Source)
	return m, nil
}

// newS3 returns the lazy S3 client constructor of the upload opener.
func newS3(s config.AWSSettings) func(context.Context) (aws.ObjectAPI, error) {
	return func(ctx context.Context) (aws.ObjectAPI, error) {
		client, err := aws.NewS3(ctx,
			aws.WithProfile(s.Profile),
			aws.WithRegion(s.Region),
			aws.WithEndpoint(s.Endpoint, s.PathStyle),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// InitApp builds the root command around m.
func InitApp(_ context.Context, m *meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:  "smctl",
		Usage: "Sci-ModoM Control",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "smctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		SelectionsCommandBuilder(m),
		TaxaCommandBuilder(m),
		ModomicsCommandBuilder(m),
		RnaTypesCommandBuilder(m),
		MethodsCommandBuilder(m),
		DatasetsCommandBuilder(m),
		ProjectsCommandBuilder(m),
		AssembliesCommandBuilder(m),
		ChromsCommandBuilder(m),
		BiotypesCommandBuilder(m),
		FeaturesCommandBuilder(m),
		GenesCommandBuilder(m),
		SearchCommandBuilder(m),
		ExportLinkCommandBuilder(m),
		SitesCommandBuilder(m),
		CompareCommandBuilder(m),
		UploadCommandBuilder(m),
		BamCommandBuilder(m),
		MayChangeCommandBuilder(m),
		ProjectPostCommandBuilder(m),
		DatasetPostCommandBuilder(m),
		AuthCommandBuilder(m),
		CacheCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app.Commands)

	return app
}

func sortFlags(cmds []*cli.Command) {
	for _, cmd := range cmds {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
		sortFlags(cmd.Commands)
	}
}
