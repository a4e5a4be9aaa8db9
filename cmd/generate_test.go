package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"adscript/internal/app/model"
	"adscript/internal/brief"
)

func sampleRun() *model.Run {
	return &model.Run{
		ID:           "run-1",
		TargetLength: 480,
		FormatMode:   brief.SerifOnly,
		Results: []model.GenerationResult{
			{Provider: "openai", Label: "OpenAI", Variations: []string{"台本A", "台本B"}},
			{Provider: "anthropic", Label: "Claude", Error: "anthropic: 401 unauthorized"},
			{Provider: "gemini", Label: "Gemini", Variations: []string{"台本C", "台本D"}},
		},
	}
}

func TestRenderRun(t *testing.T) {
	var buf bytes.Buffer
	renderRun(&buf, sampleRun())
	out := buf.String()

	for _, want := range []string{
		"OpenAI バリエーション 1", "OpenAI バリエーション 2", "台本A", "台本B",
		"Gemini バリエーション 2", "台本D",
		"401 unauthorized", "生成完了", "1 件のプロバイダーが失敗",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Claude バリエーション") {
		t.Error("failed provider must not render variations")
	}
	if strings.Index(out, "OpenAI") > strings.Index(out, "Claude") || strings.Index(out, "Claude") > strings.Index(out, "Gemini") {
		t.Error("providers should render in result order")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleRun()); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}

	var got model.Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.ID != "run-1" || len(got.Results) != 3 || got.Results[1].Error == "" {
		t.Errorf("decoded run = %+v", got)
	}
}

func TestGenerateFlagDefaults(t *testing.T) {
	sample := brief.Sample()
	if genBrief.ProductName != sample.ProductName || genBrief.DurationSec != sample.DurationSec {
		t.Errorf("flag defaults = %+v, want sample brief", genBrief)
	}
	if err := genBrief.Validate(); err != nil {
		t.Errorf("default brief should be valid: %v", err)
	}
	if f := generateCmd.Flags().Lookup("variations"); f == nil || f.Shorthand != "n" {
		t.Error("--variations flag missing")
	}
}

func TestRequired(t *testing.T) {
	validate := required("Key")
	if validate("  ") == nil {
		t.Error("blank value should fail")
	}
	if validate("sk-1") != nil {
		t.Error("non-blank value should pass")
	}
}

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "0.9", want: 0.9},
		{in: " 1.5 ", want: 1.5},
		{in: "0", want: 0},
		{in: "1.6", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "nan", wantErr: true},
		{in: "+Inf", wantErr: true},
		{in: "warm", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseTemperature(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTemperature(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseTemperature(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateRejectsNaNTemperatureFlag(t *testing.T) {
	b := brief.Sample()
	if err := generateCmd.Flags().Set("temperature", "NaN"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	t.Cleanup(func() { genBrief.Temperature = b.Temperature })

	var verr *brief.ValidationError
	if err := genBrief.Validate(); !errors.As(err, &verr) || verr.Field != "temperature" {
		t.Errorf("Validate() error = %v, want temperature ValidationError", err)
	}
}
