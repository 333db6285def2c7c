// Command ctrlfix runs the repair-intake chat in the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"ctrlfix/pkg/config"
	"ctrlfix/pkg/flow"
	"ctrlfix/pkg/intent"
	"ctrlfix/pkg/llm"
	"ctrlfix/pkg/pricing"
	"ctrlfix/pkg/responder"
	"ctrlfix/pkg/session"
	"ctrlfix/pkg/ticket"
)

const (
	colorReset = "\033[0m"
	colorBot   = "\033[36m"
	colorUser  = "\033[33m"
	colorDim   = "\033[2m"
)

// demoScript walks a complete hardware-repair booking without typing.
var demoScript = []string{
	"",
	"+852 1234 5678",
	"Jane Doe",
	"laptop",
	"ASUS ROG G614J",
	"16gb ram, bought 2022",
	"2",
	"Screen cracked after a drop, top left corner",
	"no",
	"1",
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML config file")
		demo       = flag.Bool("demo", false, "replay a scripted conversation instead of reading stdin")
		noColor    = flag.Bool("no-color", false, "disable ANSI colors")
	)
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ctrlfix: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	color := !*noColor && term.IsTerminal(int(os.Stdout.Fd()))
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctrlfix: %v\n", err)
		os.Exit(1)
	}

	var classifier intent.Classifier = intent.NewKeywordClassifier()
	var rsp responder.Responder = responder.NewHeuristic()
	if client != nil {
		classifier = intent.NewResilient(intent.NewLLMClassifier(client), intent.NewKeywordClassifier())
		rsp = responder.NewResilient(responder.NewLLM(client, cfg.LLM.HistoryTokenBudget), responder.NewHeuristic())
	}

	var oracle pricing.Oracle = pricing.NewStatic()
	if cfg.Pricing.SerpAPIKey != "" {
		oracle = pricing.NewResilient(pricing.NewSerpClient(
			cfg.Pricing.SerpAPIKey, cfg.Pricing.USDToHKD,
			time.Duration(cfg.Pricing.TimeoutSec)*time.Second))
	}

	var sink ticket.Sink
	if cfg.Store.TicketsFile != "" {
		sink = ticket.NewFile(cfg.Store.TicketsFile)
	}

	registry := session.NewRegistry()
	orch := flow.New(registry, classifier, rsp, oracle, sink)
	sess := orch.Start()
	ctx := context.Background()

	if *demo {
		runDemo(ctx, orch, sess.ID, paint)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	env := orch.ProcessInput(ctx, sess.ID, "")
	fmt.Println(paint(colorBot, env.Message))
	for env.NeedsInput {
		fmt.Print(paint(colorUser, "> "))
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return
		}
		env = orch.ProcessInput(ctx, sess.ID, line)
		fmt.Println(paint(colorBot, env.Message))
	}
}

func runDemo(ctx context.Context, orch *flow.Orchestrator, sessionID string, paint func(string, string) string) {
	for _, input := range demoScript {
		if input != "" {
			fmt.Println(paint(colorUser, "> "+input))
		}
		env := orch.ProcessInput(ctx, sessionID, input)
		fmt.Println(paint(colorBot, env.Message))
		fmt.Println(paint(colorDim, "---"))
		if !env.NeedsInput {
			return
		}
		time.Sleep(300 * time.Millisecond)
	}
}
