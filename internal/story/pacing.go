// Package story holds the act-pacing rules handed to the narration oracle.
package story

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

// FinalAct is the last act of every story.
const FinalAct = 3

// Rule holds the conditions for entering acts 2 and 3. Conditions are expr
// expressions over turn and act that must evaluate to a bool.
type Rule struct {
	ActTwo   string `yaml:"act_two" json:"actTwo"`
	ActThree string `yaml:"act_three" json:"actThree"`
}

// Standard pacing changes act at turn 6 and turn 13. Quick compresses this to
// turns 3 and 5.
var (
	Standard = Rule{ActTwo: "turn >= 6", ActThree: "turn >= 13"}
	Quick    = Rule{ActTwo: "turn >= 3", ActThree: "turn >= 5"}
)

// DefaultRules returns the built-in rule set keyed by length.
func DefaultRules() map[rpg.Length]Rule {
	return map[rpg.Length]Rule{
		rpg.LengthQuick:   Quick,
		rpg.LengthMedium:  Standard,
		rpg.LengthLong:    Standard,
		rpg.LengthEndless: Standard,
	}
}

type compiled struct {
	rule     Rule
	actTwo   *vm.Program
	actThree *vm.Program
}

// Pacing evaluates per-length act transition rules.
type Pacing struct {
	rules map[rpg.Length]*compiled
	mu    sync.RWMutex
}

func env(turn, act int) map[string]interface{} {
	return map[string]interface{}{"turn": turn, "act": act}
}

func compile(condition string) (*vm.Program, error) {
	return expr.Compile(condition, expr.Env(env(0, 0)), expr.AsBool())
}

// NewPacing compiles rules on top of the defaults. Lengths missing from
// rules keep their default; an empty condition keeps the default condition.
func NewPacing(rules map[rpg.Length]Rule) (*Pacing, error) {
	p := &Pacing{rules: make(map[rpg.Length]*compiled)}
	for length, def := range DefaultRules() {
		r := def
		if custom, ok := rules[length]; ok {
			if custom.ActTwo != "" {
				r.ActTwo = custom.ActTwo
			}
			if custom.ActThree != "" {
				r.ActThree = custom.ActThree
			}
		}
		if err := p.Set(length, r); err != nil {
			return nil, err
		}
	}
	for length := range rules {
		if _, ok := p.rules[length]; !ok {
			return nil, fmt.Errorf("pacing rule for unknown length %q", length)
		}
	}
	return p, nil
}

// Set compiles and installs the rule for length.
func (p *Pacing) Set(length rpg.Length, r Rule) error {
	two, err := compile(r.ActTwo)
	if err != nil {
		return fmt.Errorf("invalid act two condition for %s: %w", length, err)
	}
	three, err := compile(r.ActThree)
	if err != nil {
		return fmt.Errorf("invalid act three condition for %s: %w", length, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules[length] = &compiled{rule: r, actTwo: two, actThree: three}
	return nil
}

func (p *Pacing) lookup(length rpg.Length) *compiled {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.rules[length]; ok {
		return c
	}
	return p.rules[rpg.LengthMedium]
}

// Rule returns the rule in effect for length.
func (p *Pacing) Rule(length rpg.Length) Rule {
	return p.lookup(length).rule
}

// ExpectedAct is the act the story should be in at turn given the current
// act. It never returns less than act.
func (p *Pacing) ExpectedAct(length rpg.Length, turn, act int) (int, error) {
	c := p.lookup(length)
	want := 1

	for i, prog := range []*vm.Program{c.actTwo, c.actThree} {
		out, err := vm.Run(prog, env(turn, act))
		if err != nil {
			return act, fmt.Errorf("pacing evaluation error: %w", err)
		}
		if ok, _ := out.(bool); ok {
			want = i + 2
		}
	}

	if want < act {
		want = act
	}
	if want > FinalAct {
		want = FinalAct
	}
	return want, nil
}

// Describe renders the rule as guidance for the narrator.
func (p *Pacing) Describe(length rpg.Length) string {
	r := p.Rule(length)
	var b strings.Builder
	b.WriteString("Act 1 (The Call) opens the story. ")
	fmt.Fprintf(&b, "Act 2 (The Trials) begins when %s. ", r.ActTwo)
	fmt.Fprintf(&b, "Act 3 (The Climax) begins when %s. ", r.ActThree)
	b.WriteString("Never change act before its condition holds and never go back to an earlier act.")
	return b.String()
}
