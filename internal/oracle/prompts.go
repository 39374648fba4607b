package oracle

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

//go:embed prompts/narrator_system.txt
var narratorSystem string

//go:embed prompts/validator_tactical.txt
var validatorTactical string

//go:embed prompts/validator_narrative.txt
var validatorNarrative string

//go:embed prompts/opening.tmpl
var openingPrompt string

//go:embed prompts/turn.tmpl
var turnPrompt string

//go:embed prompts/validate.tmpl
var validatePrompt string

var funcs = template.FuncMap{"join": strings.Join}

var (
	openingTmpl  = template.Must(template.New("opening").Funcs(funcs).Parse(openingPrompt))
	turnTmpl     = template.Must(template.New("turn").Funcs(funcs).Parse(turnPrompt))
	validateTmpl = template.Must(template.New("validate").Funcs(funcs).Parse(validatePrompt))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func validatorSystem(mode rpg.Mode) string {
	if mode == rpg.ModeTactical {
		return validatorTactical
	}
	return validatorNarrative
}
