package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"adscript/internal/brief"
	"adscript/internal/length"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Script ScriptPrompts `yaml:"script"`

	brief  *template.Template
	refine *template.Template
}

type SystemPrompts struct {
	Copywriter string `yaml:"copywriter"`
}

type ScriptPrompts struct {
	Brief  string `yaml:"brief"`
	Refine string `yaml:"refine"`
}

// Format is the line-layout rule and a one-line example for a FormatMode.
type Format struct {
	Rule    string
	Example string
}

var formats = map[brief.FormatMode]Format{
	brief.SerifOnly: {
		Rule:    "- 1 行に 1 セリフのみを書く。行頭にタイムコードも演出注釈も書かない。",
		Example: "こんにちは！寝返りうててますか？",
	},
	brief.WithTime: {
		Rule:    "- 行頭に (0-5s) のような秒数レンジを付け、その後にセリフを書く。",
		Example: "(0-5s) こんにちは！寝返りうててますか？",
	},
	brief.WithTimeAndDir: {
		Rule:    "- 行頭に (0-5s) を付け、セリフの後に *(演出)* を括弧付きで書く。",
		Example: "(0-5s) こんにちは！ *(アップで手を振る)*",
	},
}

type BriefParams struct {
	NVariations  int
	FormatRule   string
	Example      string
	TargetLength int
	ProductName  string
	Problem      string
	Promise      string
	OfferPrice   string
	AudienceAge  string
	DurationSec  int
	Tones        string
}

type RefineParams struct {
	Script         string
	TargetLength   int
	LineBreakEvery int
}

// TemplateError reports a prompt that could not be rendered. A missing Field
// means the caller handed over an incomplete brief.
type TemplateError struct {
	Field string
	Err   error
}

func (e *TemplateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("template: missing brief field %s", e.Field)
	}
	return fmt.Sprintf("template: %v", e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// FormatFor returns the fixed rule/example pair for mode.
func FormatFor(mode brief.FormatMode) Format {
	if f, ok := formats[mode]; ok {
		return f
	}
	return formats[brief.SerifOnly]
}

// Load returns the prompts compiled into the binary.
func Load() (*Prompts, error) {
	return Parse(defaultPrompts)
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if strings.TrimSpace(p.Script.Brief) == "" || strings.TrimSpace(p.Script.Refine) == "" {
		return nil, fmt.Errorf("prompts file must define script.brief and script.refine")
	}

	var err error
	if p.brief, err = template.New("brief").Option("missingkey=error").Parse(p.Script.Brief); err != nil {
		return nil, fmt.Errorf("failed to parse brief template: %w", err)
	}
	if p.refine, err = template.New("refine").Option("missingkey=error").Parse(p.Script.Refine); err != nil {
		return nil, fmt.Errorf("failed to parse refine template: %w", err)
	}

	return &p, nil
}

// Build renders the generation prompt for b. Field values are substituted in
// a single pass and are never re-parsed as template syntax.
func (p *Prompts) Build(b brief.Brief) (string, error) {
	if err := requireFields(b); err != nil {
		return "", err
	}

	format := FormatFor(b.FormatMode())
	return execute(p.brief, BriefParams{
		NVariations:  b.NVariations,
		FormatRule:   format.Rule,
		Example:      format.Example,
		TargetLength: length.TargetLength(b.DurationSec),
		ProductName:  b.ProductName,
		Problem:      b.Problem,
		Promise:      b.Promise,
		OfferPrice:   b.OfferPrice,
		AudienceAge:  b.AudienceAge,
		DurationSec:  b.DurationSec,
		Tones:        b.ToneList(),
	})
}

func (p *Prompts) RenderRefine(params RefineParams) (string, error) {
	return execute(p.refine, params)
}

func requireFields(b brief.Brief) error {
	switch {
	case b.ProductName == "":
		return &TemplateError{Field: "product_name"}
	case b.Problem == "":
		return &TemplateError{Field: "problem"}
	case b.Promise == "":
		return &TemplateError{Field: "promise"}
	case b.AudienceAge == "":
		return &TemplateError{Field: "audience_age"}
	case len(b.Tones) == 0:
		return &TemplateError{Field: "tones"}
	case b.DurationSec <= 0:
		return &TemplateError{Field: "duration_sec"}
	case b.NVariations <= 0:
		return &TemplateError{Field: "n_variations"}
	}
	return nil
}

func execute(t *template.Template, data any) (string, error) {
	if t == nil {
		return "", &TemplateError{Err: fmt.Errorf("prompts not loaded")}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", &TemplateError{Err: err}
	}
	return buf.String(), nil
}
