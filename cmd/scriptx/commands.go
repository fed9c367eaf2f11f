package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/lexer"
	"github.com/ManitVig/scriptx/pkg/parser"
	"github.com/ManitVig/scriptx/pkg/runtime"
)

func addSourceFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("eval", "e", "", "Source text (instead of the positional argument)")
	cmd.Args = cobra.MaximumNArgs(1)
}

// sourceArg returns the program source from -e or the positional argument.
func sourceArg(cmd *cobra.Command, args []string) (string, error) {
	src, _ := cmd.Flags().GetString("eval")
	switch {
	case src != "" && len(args) > 0:
		return "", fmt.Errorf("give the source either with -e or as an argument, not both")
	case src != "":
		return src, nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", fmt.Errorf("no source given")
}

type tokenView struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
	Pos   int    `json:"pos" yaml:"pos"`
}

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [SOURCE]",
		Short: "Print the token stream of a source",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := sourceArg(cmd, args)
			if err != nil {
				return err
			}

			tokens := lexer.New(src).Tokenize()
			views := make([]tokenView, len(tokens))
			for i, tok := range tokens {
				views[i] = tokenView{Type: tok.Type.String(), Value: tok.Value, Pos: tok.Pos}
			}

			return render(cmd, views, func(w io.Writer) {
				for _, tok := range tokens {
					fmt.Fprintln(w, tok)
				}
			})
		},
	}
	addSourceFlag(cmd)
	return cmd
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [SOURCE]",
		Short: "Parse a source and print the program",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := parseArg(cmd, args)
			if err != nil {
				return err
			}

			if useRepr, _ := cmd.Flags().GetBool("repr"); useRepr {
				fmt.Fprintln(cmd.OutOrStdout(), repr.String(prog, repr.Indent("  ")))
				return nil
			}

			statements := make([]string, len(prog.Statements))
			for i, s := range prog.Statements {
				statements[i] = s.String()
			}
			return render(cmd, map[string][]string{"statements": statements}, func(w io.Writer) {
				fmt.Fprintln(w, prog)
			})
		},
	}
	addSourceFlag(cmd)
	cmd.Flags().Bool("repr", false, "Dump the syntax tree as Go values")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [SOURCE]",
		Short: "Run a source and print the bound values",
		Example: `  scriptx run 'let y = x * 2;' --var x=21
  scriptx run -e 'let z = a / b;' --bindings '{a: 1, b: 4.0}' -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := parseArg(cmd, args)
			if err != nil {
				return err
			}

			scope, err := bindingsArg(cmd)
			if err != nil {
				return err
			}

			result, err := runtime.NewEngine(prog).Run(scope)
			if err != nil {
				return err
			}

			return render(cmd, result, func(w io.Writer) {
				for _, r := range result.Statements {
					fmt.Fprintf(w, "%s = %s (%s)\n", r.Name, r.Value, r.Value.Type())
				}
			})
		},
	}
	addSourceFlag(cmd)
	cmd.Flags().StringArray("var", nil, "Initial binding as name=literal (repeatable)")
	cmd.Flags().String("bindings", "", "Initial bindings as a YAML or JSON mapping")
	return cmd
}

func parseArg(cmd *cobra.Command, args []string) (*ast.Program, error) {
	src, err := sourceArg(cmd, args)
	if err != nil {
		return nil, err
	}
	opts, err := parserOptions(cmd)
	if err != nil {
		return nil, err
	}
	return parser.ParseSource(src, opts...)
}

// bindingsArg builds the initial scope. --var assignments are applied
// after --bindings, so they win on conflicts.
func bindingsArg(cmd *cobra.Command) (*runtime.Scope, error) {
	doc, _ := cmd.Flags().GetString("bindings")
	scope, err := runtime.DecodeBindings([]byte(doc))
	if err != nil {
		return nil, err
	}

	vars, _ := cmd.Flags().GetStringArray("var")
	for _, v := range vars {
		name, val, err := runtime.ParseAssignment(v)
		if err != nil {
			return nil, err
		}
		scope.Set(name, val)
	}
	return scope, nil
}

// render writes v in the format chosen by --output. text is used for the
// default format.
func render(cmd *cobra.Command, v interface{}, text func(io.Writer)) error {
	w := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("output")

	switch format {
	case "", "text":
		text(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
