package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"adscript/pkg/config"
)

const envFile = ".env"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Adscript",
	Long:  `Configure provider API keys and, optionally, a Google Cloud project for Secret Manager.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 Adscript Setup"))

	if _, err := os.Stat(envFile); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureGCP(env); err != nil {
		return err
	}

	if err := configureProviderKeys(env, env[config.EnvProject] != ""); err != nil {
		return err
	}

	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("write %s: %w", envFile, err)
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func configureGCP(env map[string]string) error {
	var useSecrets bool
	if err := huh.NewConfirm().
		Title("Use Google Secret Manager?").
		Description("API keys left empty here are read from secrets named after their env var").
		Value(&useSecrets).
		Run(); err != nil {
		return err
	}
	if !useSecrets {
		return nil
	}

	project := getActiveProject()
	if err := huh.NewInput().
		Title("Google Cloud Project ID").
		Value(&project).
		Validate(required("Project ID")).
		Run(); err != nil {
		return err
	}
	project = strings.TrimSpace(project)
	env[config.EnvProject] = project

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found, enable secretmanager.googleapis.com manually"))
		return nil
	}

	err := runWithSpinner("Enabling Secret Manager API", func() error {
		return runSetupCmd("gcloud", "services", "enable", "secretmanager.googleapis.com", "--project", project)
	})
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}
	return nil
}

func configureProviderKeys(env map[string]string, optional bool) error {
	var openaiKey, anthropicKey, geminiKey string

	validate := func(field string) func(string) error {
		if optional {
			return func(string) error { return nil }
		}
		return required(field)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API Key").
				Description("https://platform.openai.com/api-keys").
				EchoMode(huh.EchoModePassword).
				Value(&openaiKey).
				Validate(validate("OpenAI API Key")),
			huh.NewInput().
				Title("Anthropic API Key").
				Description("https://console.anthropic.com/settings/keys").
				EchoMode(huh.EchoModePassword).
				Value(&anthropicKey).
				Validate(validate("Anthropic API Key")),
			huh.NewInput().
				Title("Gemini API Key").
				Description("https://aistudio.google.com/apikey").
				EchoMode(huh.EchoModePassword).
				Value(&geminiKey).
				Validate(validate("Gemini API Key")),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	for key, value := range map[string]string{
		config.EnvOpenAIKey:    openaiKey,
		config.EnvAnthropicKey: anthropicKey,
		config.EnvGeminiKey:    geminiKey,
	} {
		if value = strings.TrimSpace(value); value != "" {
			env[key] = value
		}
	}
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Try a brief: adscript generate --interactive")
	fmt.Println("  2. Or serve HTTP: adscript serve")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func getActiveProject() string {
	if !commandExists("gcloud") {
		return ""
	}
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
