package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lmorg/readline"
	"github.com/ppiankov/tagc/internal/expr"
	"github.com/ppiankov/tagc/internal/extract"
	"github.com/ppiankov/tagc/internal/manifest"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/spf13/cobra"
)

const replHelp = `  tag(name, expr)   declare or redefine a fact
  <expr>            evaluate against the declared facts
  :facts            list declared facts
  :reset            forget every fact
  :quit             leave the session`

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive expression evaluator",
	Long: `Repl evaluates expressions interactively. Facts declared with tag(name, expr)
behave like the tags of one variant: they may reference each other in any order
and are re-resolved after every declaration.

` + replHelp,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "tagc repl (:help for commands)")

	rl := readline.NewInstance()
	s := newSession()
	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			// Ctrl+C, Ctrl+D and closed input all end the session
			return nil
		}
		if s.handle(line, out) {
			return nil
		}
	}
}

// session holds the facts declared so far in one repl run
type session struct {
	annotations []model.Annotation
	facts       []*model.Fact
	scope       expr.Scope
	lines       int
}

func newSession() *session {
	return &session{scope: expr.Scope{}}
}

func (s *session) prompt() string {
	if len(s.facts) == 0 {
		return "tagc> "
	}
	return fmt.Sprintf("tagc[%d]> ", len(s.facts))
}

// handle processes one input line and reports whether the session should end
func (s *session) handle(line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.lines++

	switch line {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(w, replHelp)
		return false
	case ":facts":
		s.listFacts(w)
		return false
	case ":reset":
		s.annotations, s.facts, s.scope = nil, nil, expr.Scope{}
		fmt.Fprintln(w, "✓ Cleared all facts")
		return false
	}
	if strings.HasPrefix(line, ":") {
		fmt.Fprintf(w, "✗ unknown command %s (:help for commands)\n", line)
		return false
	}

	if strings.HasPrefix(line, "tag(") {
		s.declare(manifest.Unwrap(line), w)
		return false
	}

	v, err := expr.Evaluate(line, s.scope)
	if err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		return false
	}
	fmt.Fprintf(w, "%s (%s)\n", v, v.Kind)
	return false
}

// declare adds or replaces a fact; the session is unchanged when anything fails to resolve
func (s *session) declare(text string, w io.Writer) {
	a := model.Annotation{
		Text: text,
		Pos:  model.Pos{File: "repl", Line: s.lines},
	}

	name := ""
	if tokens := extract.Tokenize(text); len(tokens) > 0 {
		name = tokens[0]
	}

	candidate := make([]model.Annotation, 0, len(s.annotations)+1)
	for _, prev := range s.annotations {
		if tokens := extract.Tokenize(prev.Text); len(tokens) > 0 && tokens[0] == name {
			continue
		}
		candidate = append(candidate, prev)
	}
	candidate = append(candidate, a)

	scope, facts, err := resolveFacts("repl", candidate)
	if err != nil {
		for _, line := range diagnosticLines(err) {
			fmt.Fprintf(w, "✗ %s\n", line)
		}
		return
	}

	s.annotations, s.facts, s.scope = candidate, facts, scope
	v := scope[name]
	fmt.Fprintf(w, "✓ %s = %s (%s)\n", name, v, v.Kind)
}

func (s *session) listFacts(w io.Writer) {
	if len(s.facts) == 0 {
		fmt.Fprintln(w, "No facts declared")
		return
	}
	for _, f := range s.facts {
		fmt.Fprintf(w, "  %s = %s → %s (%s)\n", f.Name, f.Expr, f.Value, f.Value.Kind)
	}
}
