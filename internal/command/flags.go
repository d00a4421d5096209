// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/output"
)

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output flags shared by every query command.
// params[0] is the command name and namespace, params[1] the config file.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns, source := params[0], ""
	if len(params) > 1 {
		source = params[1]
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"attrs", altsrc.StringSourcer(source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(source)),
				yaml.YAML("color", altsrc.StringSourcer(source)),
			),
			Value: output.IsTerminal(),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(source)),
				yaml.YAML("output", altsrc.StringSourcer(source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(source)),
				yaml.YAML("titles", altsrc.StringSourcer(source)),
			),
			Value: false,
		},
	}

	return
}

// NewTaxaFlag constructs the --taxa flag. It may come from SMCTL_TAXA or the
// namespaced and global taxa_id config keys.
func NewTaxaFlag(ns string, source string, required bool) *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "taxa",
		Usage:    "NCBI taxonomy ID of the organism",
		Required: required,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SMCTL_TAXA"),
			yaml.YAML(ns+"."+"taxa_id", altsrc.StringSourcer(source)),
			yaml.YAML("taxa_id", altsrc.StringSourcer(source)),
		),
	}
}

// NewMineFlag constructs the --mine flag of the dataset and project lists.
func NewMineFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "mine",
		Usage: "only list entries owned by the logged-in user",
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile[T any, C any, VC cli.ValueCreator[T, C]](
	ns string,
	path string,
	flag *cli.FlagBase[T, C, VC],
) *cli.FlagBase[T, C, VC] {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
