// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/attrs"
	"github.com/staranto/smctl/internal/comparison"
	"github.com/staranto/smctl/internal/filters"
	"github.com/staranto/smctl/internal/output"
	"github.com/staranto/smctl/internal/search"
)

// GlobalFlagsValidator rejects a malformed --filter or --attrs before any
// request is made. Keys are checked later against the record schema.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if _, err := filters.Parse(c.String("filter")); err != nil {
		return err
	}
	if _, err := attrs.Parse(c.String("attrs")); err != nil {
		return err
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func StrandValidator(value any) error {
	switch api.Strand(value.(string)) {
	case api.StrandPlus, api.StrandMinus, api.StrandUnknown:
		return nil
	}
	return fmt.Errorf("must be one of %q, %q or %q", api.StrandPlus, api.StrandMinus, api.StrandUnknown)
}

func SearchByValidator(value any) error {
	switch search.By(value.(string)) {
	case search.ByModification, search.ByGeneChrom:
		return nil
	}
	return fmt.Errorf("must be %q or %q", search.ByModification, search.ByGeneChrom)
}

func OperationValidator(value any) error {
	_, err := comparison.ParseOperation(value.(string))
	return err
}

// SortMetaValidator accepts "field", "field:asc" and "field:desc".
func SortMetaValidator(value any) error {
	for _, s := range value.([]string) {
		field, dir, found := strings.Cut(s, ":")
		if field == "" {
			return fmt.Errorf("missing field in %q", s)
		}
		if found && dir != "asc" && dir != "desc" {
			return fmt.Errorf("direction of %q must be asc or desc", s)
		}
	}
	return nil
}

func PositiveValidator(value any) error {
	if value.(int) <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
