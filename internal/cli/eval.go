package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/expr"
	"github.com/ppiankov/tagc/internal/extract"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/ppiankov/tagc/internal/resolve"
	"github.com/spf13/cobra"
)

var evalSets []string

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate one tag expression",
	Long: `Eval evaluates an expression with the same rules used for tag values.
Facts given with --set are resolved first, in any order, as the tags of one variant.

Example:
  tagc eval '"Afghanistan" + " (AFG)"'
  tagc eval 'full_height * 2' --set height=100 --set 'full_height=height + padding' --set padding=10`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVar(&evalSets, "set", nil, "declare a fact as name=expression (repeatable)")
}

func runEval(cmd *cobra.Command, args []string) error {
	annotations := make([]model.Annotation, 0, len(evalSets))
	for i, set := range evalSets {
		name, expression, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: expected name=expression", set)
		}
		annotations = append(annotations, model.Annotation{
			Text: strings.TrimSpace(name) + ", " + expression,
			Pos:  model.Pos{File: "--set", Line: i + 1},
		})
	}

	scope, _, err := resolveFacts("eval", annotations)
	if err != nil {
		return printDiagnostics(cmd.ErrOrStderr(), err)
	}

	v, err := expr.Evaluate(args[0], scope)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", v, v.Kind)
	return nil
}

// resolveFacts extracts and resolves annotations as the facts of a single variant
func resolveFacts(variant string, annotations []model.Annotation) (expr.Scope, []*model.Fact, error) {
	v := &model.VariantDecl{Name: variant, Annotations: annotations}
	col := diag.NewCollector(false)

	v.Facts = extract.NewExtractor().Extract("", v, col)
	if err := col.Err(); err != nil {
		return nil, nil, err
	}
	resolve.NewResolver(nil).Resolve("", v, col)
	if err := col.Err(); err != nil {
		return nil, nil, err
	}

	scope := make(expr.Scope, len(v.Facts))
	for _, f := range v.Facts {
		scope.Set(f.Name, *f.Value)
	}
	return scope, v.Facts, nil
}
