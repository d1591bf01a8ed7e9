// Command askmany sends one prompt to every AI provider with credentials in
// the environment, prints each provider's answer, and optionally a summary or
// a consolidated answer derived from them.
//
// Credentials come from the environment or a .env file in the working
// directory: OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, META_API_KEY,
// GROK_API_KEY.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/askmany/askmany/budget"
	"github.com/askmany/askmany/compare"
	"github.com/askmany/askmany/limits"
	"github.com/askmany/askmany/model"
	"github.com/askmany/askmany/provider"
	_ "github.com/askmany/askmany/providers"
)

// envKeys maps provider name to the environment variable holding its API key.
var envKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
	"meta":      "META_API_KEY",
	"grok":      "GROK_API_KEY",
}

func main() {
	var (
		timeout     = flag.Duration("timeout", 0, "overall deadline for the fan-out (0 = none)")
		limitsPath  = flag.String("limits", "", "path to a YAML or TOML token limit override file")
		summarize   = flag.Bool("summary", false, "also print a synthesized summary")
		consolidate = flag.Bool("consolidate", false, "also print a consolidated answer")
		only        = flag.String("only", "", "comma-separated providers or aliases to query (default: all with credentials)")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*timeout, *limitsPath, *summarize, *consolidate, *only, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "askmany:", err)
		os.Exit(1)
	}
}

func run(timeout time.Duration, limitsPath string, summarize, consolidate bool, only string, args []string) error {
	// A missing .env file is fine; the environment may carry the keys.
	_ = godotenv.Load()

	prompt, err := readPrompt(args)
	if err != nil {
		return err
	}

	regs, err := buildRegistrations(only)
	if err != nil {
		return err
	}
	defer func() {
		for _, reg := range regs {
			reg.Client.Close()
		}
	}()

	var opts []compare.Option
	if limitsPath != "" {
		overrides, err := limits.LoadFile(limitsPath)
		if err != nil {
			return fmt.Errorf("loading limits: %w", err)
		}
		opts = append(opts, compare.WithBudget(budget.NewManagerWithTable(overrides.MergeOver(limits.Default()))))
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	orch := compare.NewOrchestrator(opts...)
	rs, err := orch.AskAll(ctx, prompt, regs)
	if err != nil {
		return err
	}

	printResults(os.Stdout, rs)

	if len(rs.Successes()) == 0 {
		return fmt.Errorf("all providers failed")
	}

	if summarize || consolidate {
		agg := compare.NewAggregator(regs)
		if summarize {
			printSynthesis(ctx, os.Stdout, "SUMMARY", agg.Summarize, rs)
		}
		if consolidate {
			printSynthesis(ctx, os.Stdout, "CONSOLIDATED", agg.Consolidate, rs)
		}
	}
	return nil
}

func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	info, err := os.Stdin.Stat()
	if err == nil && info.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", fmt.Errorf("reading prompt from stdin: %w", err)
		}
		if prompt := strings.TrimSpace(string(data)); prompt != "" {
			return prompt, nil
		}
	}
	return "", fmt.Errorf("no prompt given; pass it as arguments or on stdin")
}

// buildRegistrations creates one registration per provider with an API key in
// the environment, optionally filtered by the -only flag.
func buildRegistrations(only string) ([]compare.Registration, error) {
	wanted := parseOnly(only)

	var regs []compare.Registration
	for _, name := range model.Providers() {
		if wanted != nil && !wanted[name] {
			continue
		}
		key := os.Getenv(envKeys[name])
		if key == "" {
			continue
		}
		cfg := provider.DefaultConfig().WithAPIKey(key)
		cfg.LoadFromEnv()
		cfg.Provider = name
		client, err := provider.New(name, cfg)
		if err != nil {
			slog.Warn("skipping provider", slog.String("provider", name), slog.Any("error", err))
			continue
		}
		regs = append(regs, compare.Registration{
			Name:   name,
			Model:  limits.DefaultKey,
			Client: client,
		})
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("no providers available; set at least one of the *_API_KEY variables")
	}
	return regs, nil
}

// parseOnly resolves the -only list, accepting both provider names and user
// aliases like "chatgpt". Returns nil when no filter was given.
func parseOnly(only string) map[string]bool {
	if only == "" {
		return nil
	}
	wanted := make(map[string]bool)
	for _, part := range strings.Split(only, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p := model.Provider(part); p != "" {
			wanted[p] = true
		} else {
			wanted[strings.ToLower(part)] = true
		}
	}
	return wanted
}

func printResults(w io.Writer, rs compare.ResultSet) {
	for _, name := range rs.Providers() {
		r := rs[name]
		fmt.Fprintf(w, "=== %s ===\n", strings.ToUpper(model.DisplayName(name)))
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "error: %v\n", r.Err)
		case r.Truncated:
			fmt.Fprintf(w, "[input was truncated for token limits]\n%s\n", r.Text)
		default:
			fmt.Fprintln(w, r.Text)
		}
		fmt.Fprintf(w, "(%s)\n\n", r.Duration.Round(time.Millisecond))
	}
}

type synthFunc func(context.Context, compare.ResultSet) (string, error)

func printSynthesis(ctx context.Context, w io.Writer, label string, fn synthFunc, rs compare.ResultSet) {
	text, err := fn(ctx, rs)
	if err != nil {
		fmt.Fprintf(w, "=== %s ===\nerror: %v\n\n", label, err)
		return
	}
	fmt.Fprintf(w, "=== %s ===\n%s\n\n", label, text)
}
