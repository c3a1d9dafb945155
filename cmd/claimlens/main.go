package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/claimlens/claimlens/internal/assess"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/docproc"
	"github.com/claimlens/claimlens/internal/mcp"
	"github.com/claimlens/claimlens/internal/pipeline"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "analyze":
		if err := runAnalyze(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "search":
		if err := runSearch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "classify":
		if err := runClassify(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("claimlens %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are shared by analyze and search.
type commonFlags struct {
	paths      []string
	configPath string
	embedFlag  string
	llmFlag    string
	jsonOut    bool
}

// parseCommon walks args, consuming shared flags and collecting
// positional paths. Unknown flags are handed to the extra callback,
// which may consume a value by returning true.
func parseCommon(args []string, extra func(flag, value string) (consumed bool, err error)) (commonFlags, error) {
	var f commonFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch {
		case arg == "--config":
			f.configPath = next()
		case arg == "--embed":
			f.embedFlag = next()
		case arg == "--llm":
			f.llmFlag = next()
		case arg == "--json":
			f.jsonOut = true
		case strings.HasPrefix(arg, "-"):
			if extra == nil {
				return f, fmt.Errorf("unknown flag: %s", arg)
			}
			consumed, err := extra(arg, peek(args, i+1))
			if err != nil {
				return f, err
			}
			if consumed {
				i++
			}
		default:
			f.paths = append(f.paths, arg)
		}
	}
	return f, nil
}

func peek(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func runAnalyze(args []string) error {
	var question string
	f, err := parseCommon(args, func(flag, value string) (bool, error) {
		switch flag {
		case "--question", "-q":
			question = value
			return true, nil
		}
		return false, fmt.Errorf("unknown flag: %s", flag)
	})
	if err != nil {
		return err
	}
	if len(f.paths) == 0 {
		return fmt.Errorf("usage: claimlens analyze <paths...> --question <text>")
	}
	if question == "" {
		return fmt.Errorf("--question is required")
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	embedder, err := pipeline.NewEmbedder(cfg, f.embedFlag)
	if err != nil {
		return fmt.Errorf("configuring embedder: %w", err)
	}
	provider, err := pipeline.NewLLM(cfg, f.llmFlag)
	if err != nil {
		return fmt.Errorf("configuring LLM: %w", err)
	}

	ctx := context.Background()
	index, res, err := pipeline.BuildIndex(ctx, cfg, embedder, f.paths)
	if err != nil {
		reportSkipped(res)
		return err
	}
	defer index.Close()
	reportSkipped(res)

	hits, err := index.Query(ctx, question)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no relevant documents found for the question")
	}

	assessment, err := assess.NewAnalyzer(provider).Analyze(ctx, hits, question)
	if err != nil {
		return err
	}

	if f.jsonOut {
		data, err := json.MarshalIndent(assessment, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printAssessment(assessment)
	return nil
}

func runSearch(args []string) error {
	var query string
	var kLexical, kVector int
	f, err := parseCommon(args, func(flag, value string) (bool, error) {
		switch flag {
		case "--query", "-q":
			query = value
			return true, nil
		case "--k-lexical":
			n, err := strconv.Atoi(value)
			if err != nil {
				return false, fmt.Errorf("invalid --k-lexical: %q", value)
			}
			kLexical = n
			return true, nil
		case "--k-vector":
			n, err := strconv.Atoi(value)
			if err != nil {
				return false, fmt.Errorf("invalid --k-vector: %q", value)
			}
			kVector = n
			return true, nil
		}
		return false, fmt.Errorf("unknown flag: %s", flag)
	})
	if err != nil {
		return err
	}
	if len(f.paths) == 0 {
		return fmt.Errorf("usage: claimlens search <paths...> --query <text> [--k-lexical N] [--k-vector N]")
	}
	if query == "" {
		return fmt.Errorf("--query is required")
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if kLexical > 0 {
		cfg.Retrieval.LexicalK = kLexical
	}
	if kVector > 0 {
		cfg.Retrieval.VectorK = kVector
	}

	embedder, err := pipeline.NewEmbedder(cfg, f.embedFlag)
	if err != nil {
		return fmt.Errorf("configuring embedder: %w", err)
	}

	ctx := context.Background()
	index, res, err := pipeline.BuildIndex(ctx, cfg, embedder, f.paths)
	if err != nil {
		reportSkipped(res)
		return err
	}
	defer index.Close()
	reportSkipped(res)

	hits, err := index.Query(ctx, query)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	for i, h := range hits {
		bold.Printf("%d. %s", i+1, h.Chunk.DocName)
		if h.Chunk.Section != "" {
			fmt.Printf(" — %s", h.Chunk.Section)
		}
		fmt.Printf("  (%s, score %.4f)\n", typeColor(h.Chunk.DocType).Sprint(h.Chunk.DocType), h.Score)
		dim.Printf("   lexical rank %s, vector rank %s\n", rankStr(h.LexicalRank), rankStr(h.VectorRank))
		fmt.Printf("   %s\n\n", excerpt(h.Chunk.Text, 240))
	}
	return nil
}

func runClassify(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: claimlens classify <path>")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	classifier := docproc.NewClassifier(docproc.DefaultClassifierConfig())
	detector := docproc.NewDetector(docproc.DefaultStructureConfig())
	docType := classifier.Classify(string(data))
	structure := detector.Detect(docproc.NormalizeLines(string(data)))

	fmt.Printf("Type:      %s\n", typeColor(docType).Sprint(docType))
	fmt.Printf("Structure: %s\n", structure)
	return nil
}

func runMCP(args []string) error {
	var configPath, embedFlag, llmFlag string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				i++
				configPath = args[i]
			}
		case "--embed":
			if i+1 < len(args) {
				i++
				embedFlag = args[i]
			}
		case "--llm":
			if i+1 < len(args) {
				i++
				llmFlag = args[i]
			}
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	embedder, err := pipeline.NewEmbedder(cfg, embedFlag)
	if err != nil {
		return fmt.Errorf("configuring embedder: %w", err)
	}
	// The LLM is only needed by analyze_claim; search still works
	// without one.
	provider, err := pipeline.NewLLM(cfg, llmFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no LLM provider (%v); analyze_claim disabled\n", err)
		provider = nil
	}

	s := mcp.NewServer(mcp.ServerConfig{
		Version:  version,
		Config:   cfg,
		Embedder: embedder,
		LLM:      provider,
	})
	return mcp.ServeStdio(s)
}

func reportSkipped(res *docproc.Result) {
	if res == nil {
		return
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", e.Source, e.Err)
	}
}

func printAssessment(a *assess.Assessment) {
	bold := color.New(color.Bold)

	bold.Print("Risk score:       ")
	riskColor(a.RiskScore).Printf("%.2f\n", a.RiskScore)
	bold.Print("Confidence:       ")
	fmt.Printf("%.2f\n\n", a.ConfidenceScore)

	printList("Risk factors", a.RiskFactors)
	printList("Policy violations", a.PolicyViolations)
	printList("Documentation gaps", a.DocumentationGaps)
	printList("Risk indicators", a.RiskIndicators)

	if a.ValidityAssessment != "" {
		bold.Println("Validity assessment:")
		fmt.Printf("  %s\n\n", a.ValidityAssessment)
	}
	printList("Recommended actions", a.RecommendedActions)
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	color.New(color.Bold).Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
	fmt.Println()
}

func riskColor(score float64) *color.Color {
	switch {
	case score >= 0.7:
		return color.New(color.FgRed, color.Bold)
	case score >= 0.4:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func typeColor(t docproc.DocType) *color.Color {
	switch t {
	case docproc.DocClaimReport:
		return color.New(color.FgRed)
	case docproc.DocPolicyDocument:
		return color.New(color.FgBlue)
	case docproc.DocMedicalReport:
		return color.New(color.FgMagenta)
	case docproc.DocInvoice:
		return color.New(color.FgYellow)
	case docproc.DocCorrespondence:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Faint)
	}
}

func rankStr(rank int) string {
	if rank == 0 {
		return "-"
	}
	return strconv.Itoa(rank)
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func printUsage() {
	fmt.Printf(`claimlens %s — claim document analysis and risk assessment

Usage:
  claimlens <command> [arguments]

Commands:
  analyze <paths...> --question <text>   Assess claim risk from documents
  search <paths...> --query <text>       Hybrid keyword + semantic search
  classify <path>                        Classify a single document
  mcp                                    Run the MCP server over stdio
  version                                Print version
  help                                   Show this help

Flags (analyze, search, mcp):
  --config <path>    Config file (default: ~/.claimlens/config.yaml)
  --embed <p/m>      Embedding provider/model (e.g. ollama/nomic-embed-text)
  --llm <p/m>        LLM provider/model (e.g. google/gemini-2.5-flash)
  --json             JSON output (analyze)
  --k-lexical <n>    Keyword candidates (search, default 3)
  --k-vector <n>     Vector candidates (search, default 2)

Environment:
  GEMINI_API_KEY / GOOGLE_API_KEY    Google providers
  OPENROUTER_API_KEY                 OpenRouter providers
  CLAIMLENS_EMBED, CLAIMLENS_LLM     Provider/model overrides
  CLAIMLENS_EMBED_ENDPOINT           Custom embedding endpoint
`, version)
}
