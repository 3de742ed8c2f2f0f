// Command settings-cli renders the settings page, prints the OpenAPI
// description of its payload, or edits the stored options interactively.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/goliatone/go-settings/pkg/openapi"
	"github.com/goliatone/go-settings/pkg/orchestrator"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/renderers/prompt"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/validation"
)

// Output modes.
const (
	ModeHTML    = "html"
	ModePrompt  = "prompt"
	ModeOpenAPI = "openapi"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	schemaDir string
	store     string
	namespace string
	output    string
	mode      string
	locale    string
	locales   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	set := flag.NewFlagSet("settings-cli", flag.ContinueOnError)
	set.SetOutput(stderr)
	set.StringVar(&opts.schemaDir, "schema", "", "directory of JSON, YAML or HCL schema extensions")
	set.StringVar(&opts.store, "store", store.MemoryDSN, `option store: "memory" or a SQLite file`)
	set.StringVar(&opts.namespace, "namespace", schema.DefaultNamespace, "option name prefix")
	set.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	set.StringVar(&opts.mode, "mode", ModeHTML, "html, prompt or openapi")
	set.StringVar(&opts.locale, "locale", "", "locale passed to the translator")
	set.StringVar(&opts.locales, "locales", "", "directory of <locale>.yaml message catalogues")
	if err := set.Parse(args); err != nil {
		return options{}, err
	}

	opts.mode = strings.ToLower(strings.TrimSpace(opts.mode))
	switch opts.mode {
	case ModeHTML, ModePrompt, ModeOpenAPI:
	default:
		return options{}, fmt.Errorf("unknown mode %q", opts.mode)
	}
	return opts, nil
}

// run executes one invocation. driver answers the prompts in prompt mode;
// nil uses the terminal.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.PromptDriver) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, closer, err := store.Open(ctx, opts.store)
	if err != nil {
		return err
	}
	defer closer.Close()

	orch, err := newOrchestrator(opts, st, logger)
	if err != nil {
		return err
	}

	var output []byte
	switch opts.mode {
	case ModeOpenAPI:
		doc, err := orch.OpenAPI(openapi.Options{})
		if err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if output, err = doc.MarshalJSON(); err != nil {
			return err
		}
	case ModePrompt:
		if output, err = edit(ctx, orch, driver, stdout, stderr); err != nil {
			return err
		}
	default:
		if output, err = orch.RenderPage(ctx, orchestrator.Request{}); err != nil {
			return err
		}
	}

	if opts.output == "" {
		if opts.mode == ModePrompt {
			return nil
		}
		_, err := fmt.Fprintln(stdout, string(output))
		return err
	}
	if err := os.WriteFile(opts.output, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("output written", slog.String("path", opts.output), slog.String("mode", opts.mode))
	return nil
}

func newOrchestrator(opts options, st store.Store, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	extensions := []schema.Extension{schema.Extra()}
	if strings.TrimSpace(opts.schemaDir) != "" {
		extensions = append(extensions, schema.FromFS(os.DirFS(opts.schemaDir)))
	}
	orchOpts := []orchestrator.Option{
		orchestrator.WithNamespace(opts.namespace),
		orchestrator.WithExtensions(extensions...),
		orchestrator.WithStore(st),
		orchestrator.WithLogger(logger),
	}
	if strings.TrimSpace(opts.locales) != "" {
		catalog, err := render.LoadCatalog(os.DirFS(opts.locales))
		if err != nil {
			return nil, err
		}
		orchOpts = append(orchOpts, orchestrator.WithTranslator(catalog, opts.locale))
	}
	return orchestrator.New(orchOpts...), nil
}

// edit prompts for every field, submits the answers and reports the
// resulting notices on stdout. It returns the submitted form.
func edit(ctx context.Context, orch *orchestrator.Orchestrator, driver prompt.PromptDriver, stdout, stderr io.Writer) ([]byte, error) {
	if driver == nil {
		driver = prompt.NewSurveyDriver(stderr)
	}
	renderer, err := prompt.New(prompt.WithPromptDriver(driver), prompt.WithCatalogue(validation.DefaultCatalogue()))
	if err != nil {
		return nil, err
	}
	if err := orch.Renderers().Register(renderer); err != nil {
		return nil, err
	}

	encoded, err := orch.RenderPage(ctx, orchestrator.Request{Renderer: prompt.Name})
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	result, err := orch.Submit(ctx, form)
	if err != nil {
		return nil, err
	}
	for _, notice := range orch.Notices(result) {
		fmt.Fprintf(stdout, "%s: %s\n", notice.Type, notice.Message)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("settings rejected: %w", result.Errors)
	}
	return encoded, nil
}
