package commands

import (
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/spf13/cobra"
)

// adapterView describes one registered adapter.
type adapterView struct {
	Name           string `json:"name" yaml:"name"`
	DefaultSchema  string `json:"default_schema" yaml:"default_schema"`
	IdentifierCase string `json:"identifier_case" yaml:"identifier_case"`
	Quote          string `json:"quote" yaml:"quote"`
	Placeholder    string `json:"placeholder" yaml:"placeholder"`
}

type adapterList []adapterView

func (l adapterList) Columns() []string {
	return []string{"name", "default_schema", "identifier_case", "quote", "placeholder"}
}

func (l adapterList) Rows() [][]any {
	rows := make([][]any, len(l))
	for i, a := range l {
		rows[i] = []any{a.Name, a.DefaultSchema, a.IdentifierCase, a.Quote, a.Placeholder}
	}
	return rows
}

// NewAdaptersCommand creates the adapters command.
func NewAdaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the registered database adapters",
		Long: `List every database adapter compiled into leapmeta with its dialect defaults:
the default schema, how unquoted identifiers are stored, and the placeholder style.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutAdapter(cmd)
			return cmdCtx.Renderer.Render(describeAdapters())
		},
	}
}

func describeAdapters() adapterList {
	names := adapter.ListAdapters()
	list := make(adapterList, 0, len(names))
	for _, name := range names {
		factory, ok := adapter.Get(name)
		if !ok {
			continue
		}
		d := factory(nil).DialectConfig()
		list = append(list, adapterView{
			Name:           name,
			DefaultSchema:  d.DefaultSchema,
			IdentifierCase: d.Identifiers.Normalization.String(),
			Quote:          d.Identifiers.Quote,
			Placeholder:    placeholderName(d.Placeholder),
		})
	}
	return list
}

func placeholderName(p core.PlaceholderStyle) string {
	if p == core.PlaceholderDollar {
		return "$1"
	}
	return "?"
}
