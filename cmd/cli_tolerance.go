package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagAliases maps words people reach for to the flag that means it.
var flagAliases = map[string]string{
	"state":             "region",
	"latitude":          "lat",
	"longitude":         "lon",
	"lng":               "lon",
	"min":               "min-count",
	"rows":              "max-categories",
	"property-type":     "type",
	"purchase-category": "purchase",
	"keyword":           "query",
	"search-link":       "link",
	"debug":             "verbose",
}

// nestingCommands take another command name as their argument.
var nestingCommands = map[string]bool{"help": true, "completion": true}

// bareFlagCommands accept no free text, so a bare word such as `json`
// can only be a flag with its dashes missing. "" is the root feed.
var bareFlagCommands = map[string]bool{"": true, "zones": true, "regions": true, "locate": true}

// cliVocabulary is every flag and command name the tree accepts.
type cliVocabulary struct {
	flags      map[string]bool // long name -> takes a value
	shorthands map[byte]bool
	flagNames  []string
	commands   []string
}

var cliVocab = sync.OnceValue(func() cliVocabulary { return collectVocabulary(rootCmd) })

func collectVocabulary(root *cobra.Command) cliVocabulary {
	v := cliVocabulary{
		flags:      map[string]bool{"help": false},
		shorthands: map[byte]bool{'h': false},
	}
	seen := map[string]bool{}
	addCommand := func(name string) {
		if !seen[name] {
			seen[name] = true
			v.commands = append(v.commands, name)
		}
	}
	addFlag := func(f *pflag.Flag) {
		takesValue := f.NoOptDefVal == ""
		v.flags[f.Name] = takesValue
		if len(f.Shorthand) == 1 {
			v.shorthands[f.Shorthand[0]] = takesValue
		}
	}

	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		c.PersistentFlags().VisitAll(addFlag)
		c.Flags().VisitAll(addFlag)
		for _, child := range c.Commands() {
			// cobra's own commands appear after the first Execute.
			if child.Hidden || child.Name() == "completion" || child.Name() == "help" {
				continue
			}
			if c == root {
				addCommand(child.Name())
			}
			walk(child)
		}
	}
	walk(root)
	addCommand("help")
	addCommand("completion")

	for name := range v.flags {
		v.flagNames = append(v.flagNames, name)
	}
	sort.Strings(v.flagNames)
	return v
}

// argRewriter repairs one command line. It remembers which command is
// active because that decides whether bare words may become flags.
type argRewriter struct {
	vocab      cliVocabulary
	command    string
	nestedDone bool
	notes      []string
}

// normalizeCLIArgs repairs near-miss syntax: long flags typed with one
// dash, key=value words, misspelled flags and commands. Every rewrite
// comes with a note showing the canonical form. Nothing after `--` is
// touched.
func normalizeCLIArgs(args []string) ([]string, []string) {
	r := argRewriter{vocab: cliVocab()}
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			out = append(out, args[i:]...)
			break
		}
		fixed, takesValue := r.rewrite(tok)
		out = append(out, fixed)
		if takesValue && !strings.Contains(fixed, "=") && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out, r.notes
}

func (r *argRewriter) rewrite(tok string) (string, bool) {
	switch {
	case len(tok) == 2 && tok[0] == '-':
		return tok, r.vocab.shorthands[tok[1]]

	case len(tok) > 2 && tok[0] == '-':
		body := strings.TrimPrefix(strings.TrimPrefix(tok, "-"), "-")
		if !strings.HasPrefix(tok, "--") && !r.isFlag(body) {
			// -n5 and -vr are shorthand clusters, not long flags.
			if _, ok := r.vocab.shorthands[tok[1]]; ok {
				return tok, false
			}
		}
		if fixed, takesValue, ok := r.toFlag(tok, body); ok {
			return fixed, takesValue
		}
		// Unknown names pass through for cobra to reject.
		return tok, false

	case strings.Contains(tok, "="):
		if fixed, takesValue, ok := r.toFlag(tok, tok); ok {
			return fixed, takesValue
		}
		return tok, false
	}

	if r.commandExpected() {
		if name, ok := resolveCommand(tok); ok {
			r.enter(tok, name)
			return name, false
		}
	}
	if bareFlagCommands[r.command] {
		if fixed, takesValue, ok := r.toFlag(tok, tok); ok {
			return fixed, takesValue
		}
	}
	return tok, false
}

func (r *argRewriter) toFlag(tok, body string) (string, bool, bool) {
	name, rest := splitFlag(body)
	canonical, ok := resolveFlagName(name)
	if !ok {
		return "", false, false
	}
	fixed := "--" + canonical + rest
	if fixed != tok {
		r.notes = append(r.notes, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, fixed, fixed))
	}
	return fixed, r.vocab.flags[canonical], true
}

func (r *argRewriter) isFlag(body string) bool {
	name, _ := splitFlag(body)
	name = strings.ReplaceAll(strings.ToLower(name), "_", "-")
	if _, ok := flagAliases[name]; ok {
		return true
	}
	_, ok := r.vocab.flags[name]
	return ok
}

func (r *argRewriter) commandExpected() bool {
	return r.command == "" || (nestingCommands[r.command] && !r.nestedDone)
}

func (r *argRewriter) enter(tok, name string) {
	if name != tok {
		r.notes = append(r.notes, fmt.Sprintf("interpreted command `%s` as `%s`; use `%s` next time.", tok, name, name))
	}
	if r.command == "" {
		r.command = name
		return
	}
	r.nestedDone = true
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if name == "" {
		return "", false
	}
	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	vocab := cliVocab()
	if _, ok := vocab.flags[name]; ok {
		return name, true
	}
	return closestMatch(name, vocab.flagNames, 2)
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	commands := cliVocab().commands
	for _, c := range commands {
		if name == c {
			return c, true
		}
	}
	return closestMatch(name, commands, 2)
}

func splitFlag(value string) (string, string) {
	if i := strings.IndexByte(value, '='); i >= 0 {
		return value[:i], value[i:]
	}
	return value, ""
}

// closestMatch returns the candidate within maxDistance edits of target.
// Ties go to the earlier candidate.
func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, c := range candidates {
		if d := levenshtein(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	best := vals[0]
	for _, v := range vals[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
