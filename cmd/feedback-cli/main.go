package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-feedbackform/pkg/config"
	"github.com/goliatone/go-feedbackform/pkg/controller"
	"github.com/goliatone/go-feedbackform/pkg/page"
	"github.com/goliatone/go-feedbackform/pkg/renderers/tui"
	"github.com/goliatone/go-feedbackform/pkg/schema"
	"github.com/goliatone/go-feedbackform/pkg/theme"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	renderOnly := flag.Bool("render", false, "write the page HTML instead of running the interactive session")
	output := flag.String("output", "", "output file (stdout if empty)")
	themeName := flag.String("theme", "", "theme name (overrides config)")
	variant := flag.String("variant", "", "theme variant (overrides config)")
	format := flag.String("format", "", "submission output format: json, form or pretty (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg, *themeName, *variant, *format)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	form, err := loadForm(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	catalog, err := theme.NewCatalog()
	if err != nil {
		log.Fatalf("Failed to load themes: %v", err)
	}
	themeCfg, err := catalog.Select(cfg.Theme, cfg.Variant)
	if err != nil {
		log.Fatalf("Failed to select theme: %v", err)
	}

	renderer, err := newRenderer(cfg.Templates)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	if *renderOnly {
		markup, err := renderer.Render(ctx, form, themeCfg)
		if err != nil {
			log.Fatalf("Failed to render page: %v", err)
		}
		writeOutput(*output, markup)
		return
	}

	doc, err := renderer.Load(ctx, form, themeCfg)
	if err != nil {
		log.Fatalf("Failed to load page: %v", err)
	}

	out := os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to open output: %v", err)
		}
		defer file.Close()
		out = file
	}

	session, err := tui.NewSession(form, doc,
		tui.WithOutput(out),
		tui.WithOutputFormat(tui.OutputFormat(cfg.Format)),
		tui.WithLogger(logger),
		tui.WithControllerOptions(controllerOptions(cfg, form, themeCfg)...),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	submissions, err := session.Run(ctx)
	switch {
	case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Feedback cancelled.")
	case err != nil:
		log.Fatalf("Session failed: %v", err)
	}
	logger.Info("feedback session finished", "submissions", len(submissions))
}

func applyFlags(cfg *config.Config, themeName, variant, format string) {
	if v := strings.TrimSpace(themeName); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(variant); v != "" {
		cfg.Variant = v
	}
	if v := strings.TrimSpace(format); v != "" {
		cfg.Format = v
	}
}

// loadForm reads the configured document. Limits set in the config win over
// the lengths the document declares.
func loadForm(ctx context.Context, cfg config.Config) (schema.Form, error) {
	src := schema.EmbeddedSource()
	if path := strings.TrimSpace(cfg.Schema); path != "" {
		src = schema.SourceFromFile(path)
	}
	var decorators []schema.Decorator
	if cfg.Limits != validation.DefaultLimits() {
		decorators = append(decorators, schema.WithLimits(cfg.Limits))
	}
	return schema.LoadSource(ctx, src, schema.DefaultOperationID, decorators...)
}

func newRenderer(templates string) (*page.Renderer, error) {
	if strings.TrimSpace(templates) == "" {
		return page.New()
	}
	return page.New(page.WithBaseDir(templates))
}

func controllerOptions(cfg config.Config, form schema.Form, themeCfg *gotheme.RendererConfig) []controller.Option {
	return []controller.Option{
		controller.WithSubmitDelay(cfg.SubmitDelay),
		controller.WithThresholds(cfg.Counter),
		controller.WithPalette(theme.PaletteFrom(themeCfg)),
		controller.WithRules(validation.New(form.Limits())),
	}
}

func writeOutput(path string, markup []byte) {
	if path == "" {
		fmt.Println(string(markup))
		return
	}
	if err := os.WriteFile(path, markup, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Page written to %s\n", path)
}
