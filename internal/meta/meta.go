// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/catalog"
	"github.com/staranto/smctl/internal/config"
	"github.com/staranto/smctl/internal/dialog"
	"github.com/staranto/smctl/internal/token"
	"github.com/staranto/smctl/internal/upload"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args     []string
	Config   config.Type
	Context  context.Context
	Settings config.Settings

	Client  *api.Client
	Catalog *catalog.Catalog
	Dialog  *dialog.State
	Tokens  *token.Store
	Opener  upload.Opener

	// CredentialsPath is where `auth set-token` keeps the token. Empty when
	// it cannot be resolved.
	CredentialsPath string
}
