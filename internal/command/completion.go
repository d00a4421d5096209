package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/meta"
)

const bashCompletionScript = `# bash completion for smctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_smctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "selections taxa modomics rna-types methods datasets projects assemblies chroms biotypes features genes search export-link sites compare upload bam may-change project-post dataset-post auth cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --schema"
    local search="--taxa --rna-type --modification --organism --technology --by --gene --biotype --feature --chrom --start --end --order"
    local site="--taxa --id --chrom --start --end --strand"

    case "$cmd" in
        selections)
            local opts="$common --taxa"
            ;;
        taxa)
            local opts="$common --with-data"
            ;;
        datasets)
            local opts="$common --mine --taxa --match -m"
            ;;
        projects)
            local opts="$common --mine"
            ;;
        assemblies|chroms)
            local opts="$common --taxa"
            ;;
        biotypes|features)
            local opts="$common --rna-type"
            ;;
        genes)
            local opts="$common --selection --taxa"
            ;;
        search)
            local opts="$common $search --first-record --max-records"
            ;;
        export-link)
            local opts="$search"
            ;;
        sites)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "target context sitewise" -- "$cur") )
                return 0
            fi
            local opts="$common $site --type --bases"
            ;;
        compare)
            local opts="$common --taxa --reference -r --comparison --upload --euf --operation --strand-aware"
            ;;
        upload)
            local opts="$common --bam"
            ;;
        bam)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "list delete url" -- "$cur") )
                return 0
            fi
            local opts="$common --dataset -d --name --yes -y"
            ;;
        project-post|dataset-post)
            local opts="--file -F --dry-run"
            ;;
        auth)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "set-token status logout workflow" -- "$cur") )
                return 0
            fi
            local opts="$common --email"
            ;;
        cache)
            local opts="purge dir --all"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --operation)
            COMPREPLY=( $(compgen -W "intersect closest subtract" -- "$cur") )
            return 0
            ;;
        --strand)
            COMPREPLY=( $(compgen -W "+ - ." -- "$cur") )
            return 0
            ;;
        --upload|--file|-F)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cmd" == "upload" && "$cur" != -* ]]; then
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _smctl smctl
`

const zshCompletionScript = `#compdef smctl

_smctl() {
  local -a cmds
  cmds=(
    'selections:list modification/organism/technology selections'
    'taxa:list organisms'
    'modomics:list MODOMICS modifications'
    'rna-types:list RNA types'
    'methods:list detection methods'
    'datasets:list datasets'
    'projects:list projects'
    'assemblies:list assemblies of an organism'
    'chroms:list chromosomes of an organism'
    'biotypes:list gene biotypes'
    'features:list genomic features'
    'genes:list genes of selections'
    'search:search modification sites'
    'export-link:print the CSV download link of a search'
    'sites:query a single modification site'
    'compare:compare datasets'
    'upload:upload files'
    'bam:manage BAM files of a dataset'
    'may-change:tell whether datasets may be changed'
    'project-post:request a new project'
    'dataset-post:add a dataset'
    'auth:manage the stored login'
    'cache:manage the response cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  )

  local -a search
  search=(
  '--taxa[NCBI taxonomy ID]:taxa'
  '--rna-type[RNA type]:type'
  '--modification[modification ID]:id'
  '--organism[organism ID]:id'
  '*--technology[technology ID]:id'
  '--by[search mode]:mode:(Modification Gene/Chrom)'
  '--gene[gene name prefix]:gene'
  '*--biotype[gene biotype]:biotype'
  '*--feature[genomic feature]:feature'
  '--chrom[chromosome]:chrom'
  '--start[first position]:start'
  '--end[last position]:end'
  '*--order[backend sort]:order'
  )

  local -a site
  site=(
  '--taxa[NCBI taxonomy ID]:taxa'
  '--id[record ID]:id'
  '--chrom[chromosome]:chrom'
  '--start[start position]:start'
  '--end[end position]:end'
  '--strand[strand]:strand:(+ - .)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'smctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    selections|assemblies|chroms)
      _arguments -C $common '--taxa[NCBI taxonomy ID]:taxa'
      ;;
    taxa)
      _arguments -C $common '--with-data[only organisms with data]'
      ;;
    datasets)
      _arguments -C $common \
        '--mine[only my datasets]' \
        '--taxa[NCBI taxonomy ID]:taxa' \
        '(-m --match)'{-m,--match}'[fuzzy match titles]:text'
      ;;
    projects)
      _arguments -C $common '--mine[only my projects]'
      ;;
    biotypes|features)
      _arguments -C $common '--rna-type[RNA type]:type'
      ;;
    genes)
      _arguments -C $common '*--selection[selection ID]:id' '--taxa[NCBI taxonomy ID]:taxa'
      ;;
    search)
      _arguments -C $common $search \
        '--first-record[first record]:index' \
        '--max-records[page size]:count'
      ;;
    export-link)
      _arguments -C $search
      ;;
    sites)
      _arguments -C '1: :((target context sitewise))' $common $site \
        '--type[target type]:type:(MIRNA RBP)' \
        '--bases[bases on each side]:count'
      ;;
    compare)
      _arguments -C $common \
        '--taxa[NCBI taxonomy ID]:taxa' \
        '*'{-r,--reference}'[reference dataset]:id' \
        '*--comparison[comparison dataset]:id' \
        '--upload[file to compare against]:file:_files' \
        '--euf[uploaded file is bedRMod]' \
        '--operation[operation]:op:(intersect closest subtract)' \
        '--strand-aware[match strands]'
      ;;
    upload)
      _arguments -C $common '--bam[dataset ID]:id' '*:file:_files'
      ;;
    bam)
      _arguments -C '1: :((list delete url))' $common \
        '(-d --dataset)'{-d,--dataset}'[dataset ID]:id' \
        '--name[file name]:name' \
        '(-y --yes)'{-y,--yes}'[do not ask]'
      ;;
    may-change)
      _arguments -C $common '*:dataset ID'
      ;;
    project-post|dataset-post)
      _arguments -C \
        '(-F --file)'{-F,--file}'[YAML form]:file:_files' \
        '--dry-run[print the request]'
      ;;
    auth)
      _arguments -C '1: :((set-token status logout workflow))' $common '--email[e-mail]:email'
      ;;
    cache)
      _arguments -C '1: :((purge dir))' '--all[remove every entry]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _smctl smctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}
	switch shell {
	case "bash":
		fmt.Fprint(writer(cmd), bashCompletionScript)
	case "zsh":
		fmt.Fprint(writer(cmd), zshCompletionScript)
	default:
		fmt.Fprintln(errWriter(cmd), "usage: smctl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(m *meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "smctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: CompletionCommandAction,
	}
}
