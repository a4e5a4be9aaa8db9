package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"adscript/internal/app/model"
	"adscript/internal/brief"
)

var (
	genBrief       = brief.Sample()
	genInteractive bool
	genJSON        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate ad scripts from a brief",
	Long: `Send one brief to every provider and print the scripts each one returns.
The brief comes from flags, or from a form with --interactive.`,
	Example: `  adscript generate --product "雲ごこちプレミアムピロー" --duration 90 --variations 2
  adscript generate --interactive
  adscript generate --timing --direction --json`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genBrief.ProductName, "product", genBrief.ProductName, "Product name")
	f.StringVar(&genBrief.Problem, "problem", genBrief.Problem, "Problem the product solves")
	f.StringVar(&genBrief.Promise, "promise", genBrief.Promise, "Promised outcome")
	f.StringSliceVar(&genBrief.Tones, "tone", genBrief.Tones, "Tone, repeatable")
	f.StringVar(&genBrief.AudienceAge, "age", genBrief.AudienceAge, "Audience age range")
	f.IntVar(&genBrief.DurationSec, "duration", genBrief.DurationSec, "Duration in seconds (30-300, step 30)")
	f.StringVar(&genBrief.OfferPrice, "price", genBrief.OfferPrice, "Offer price")
	f.IntVarP(&genBrief.NVariations, "variations", "n", genBrief.NVariations, "Scripts per provider (1-5)")
	f.Float64VarP(&genBrief.Temperature, "temperature", "t", genBrief.Temperature, "Sampling temperature (0-1.5)")
	f.BoolVar(&genBrief.WithTiming, "timing", false, "Prefix lines with timestamps")
	f.BoolVar(&genBrief.WithDirection, "direction", false, "Add stage directions (requires --timing)")
	f.BoolVarP(&genInteractive, "interactive", "i", false, "Fill in the brief with a form")
	f.BoolVar(&genJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	b := genBrief
	if genInteractive {
		if err := briefForm(&b).Run(); err != nil {
			return err
		}
	}
	if err := b.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	orchestrator, _, err := loadOrchestrator(ctx)
	if err != nil {
		return err
	}

	var run *model.Run
	if genJSON {
		run = orchestrator.Execute(ctx, b)
		return writeJSON(os.Stdout, run)
	}

	err = spinner.New().
		Title("台本を生成中...").
		Action(func() { run = orchestrator.Execute(ctx, b) }).
		Run()
	if run == nil {
		// no terminal for the spinner
		slog.Debug("Spinner unavailable", "error", err)
		run = orchestrator.Execute(ctx, b)
	}

	renderRun(os.Stdout, run)
	return nil
}

func briefForm(b *brief.Brief) *huh.Form {
	durations := make([]huh.Option[int], 0, len(brief.Durations()))
	for _, d := range brief.Durations() {
		durations = append(durations, huh.NewOption(fmt.Sprintf("%d 秒", d), d))
	}
	variations := make([]huh.Option[int], 0, brief.MaxVariations)
	for n := brief.MinVariations; n <= brief.MaxVariations; n++ {
		variations = append(variations, huh.NewOption(strconv.Itoa(n), n))
	}

	temperature := strconv.FormatFloat(b.Temperature, 'f', -1, 64)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("商品名").Value(&b.ProductName).Validate(required("商品名")),
			huh.NewInput().Title("悩み").Value(&b.Problem).Validate(required("悩み")),
			huh.NewInput().Title("ベネフィット").Value(&b.Promise).Validate(required("ベネフィット")),
			huh.NewInput().Title("年齢層").Value(&b.AudienceAge).Validate(required("年齢層")),
			huh.NewInput().Title("価格").Value(&b.OfferPrice).Validate(required("価格")),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("トーン").
				Options(huh.NewOptions(brief.DefaultTones...)...).
				Value(&b.Tones).
				Validate(func(tones []string) error {
					if len(tones) == 0 {
						return fmt.Errorf("トーンを 1 つ以上選択してください")
					}
					return nil
				}),
			huh.NewSelect[int]().Title("尺").Options(durations...).Value(&b.DurationSec),
			huh.NewSelect[int]().Title("バリエーション数").Options(variations...).Value(&b.NVariations),
			huh.NewInput().
				Title("温度").
				Description("0.0 - 1.5").
				Value(&temperature).
				Validate(func(s string) error {
					t, err := parseTemperature(s)
					if err != nil {
						return err
					}
					b.Temperature = t
					return nil
				}),
			huh.NewConfirm().Title("タイムコードを付ける").Value(&b.WithTiming),
			huh.NewConfirm().Title("演出指示を付ける").Value(&b.WithDirection),
		),
	)
}

func parseTemperature(s string) (float64, error) {
	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !brief.ValidTemperature(t) {
		return 0, fmt.Errorf("0.0 から 1.5 の数値を入力してください")
	}
	return t, nil
}

func writeJSON(w io.Writer, run *model.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func renderRun(w io.Writer, run *model.Run) {
	for _, res := range run.Results {
		fmt.Fprintln(w, titleStyle.Render(res.Label))
		if res.Failed() {
			fmt.Fprintln(w, warnStyle.Render("エラー: "+res.Error))
			fmt.Fprintln(w)
			continue
		}
		for i, text := range res.Variations {
			fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("%s バリエーション %d", res.Label, i+1)))
			fmt.Fprintln(w, text)
			fmt.Fprintln(w)
		}
	}

	line := fmt.Sprintf("✓ 生成完了 (目標 %d 文字, run %s)", run.TargetLength, run.ID)
	if n := run.Failures(); n > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%s, %d 件のプロバイダーが失敗", line, n)))
		return
	}
	fmt.Fprintln(w, successStyle.Render(line))
}
