// Command dcmauto is the pipeline driver's CLI entry point (spec §6),
// grounded on the teacher's cmd/radx/internal/cli.Run: kong for flag
// parsing, charmbracelet/log for structured logging, embedding a
// config.GlobalConfig the same way cli.CLI embeds one.
//
// The catalogue of concrete operations is an external collaborator (spec
// §1): this binary wires the pipeline driver and CLI surface only; a
// deployment links in an operation registry built from whichever analytical
// operations it ships.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/internal/config"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
	"github.com/codeninja55/dicomautomaton-go/internal/report"
	"github.com/codeninja55/dicomautomaton-go/operation"
	"github.com/codeninja55/dicomautomaton-go/pipeline"
)

var version = "dev"

const (
	startChildrenSentinel = "start-children"
	stopChildrenSentinel  = "stop-children"
)

// CLI is the root command structure parsed by kong.
type CLI struct {
	config.GlobalConfig

	DetailedUsage bool              `help:"Emit the catalogue of operation argument schemas and exit." name:"detailed-usage"`
	Lexicon       string            `help:"Path consumed by the filename-lexicon collaborator." name:"lexicon"`
	LogFile       string            `help:"Additionally write logs to this path, rotated via lumberjack." name:"log-file"`
	Standalone    string            `arg:"" optional:"" help:"Input file or directory."`
	Metadata      map[string]string `help:"Invocation-metadata key=value pair, repeatable." name:"metadata" mapsep:"="`
	// Operation carries the flattened pipeline in order: each entry is
	// either an "Op:k1=v1:k2=v2" text form or one of the literal
	// start-children/stop-children sentinels. A single repeatable flag
	// preserves the relative order kong does not track across distinct
	// flag names.
	Operation   []string `help:"Operation in text form (Op:k1=v1:k2=v2), or the literal 'start-children'/'stop-children' sentinel; repeatable, order-preserving." name:"operation" short:"o"`
	Disregard   bool     `help:"Elide the first operation in the sequence." name:"disregard"`
	Ignore      bool     `help:"Elide the first parameter of the first operation in the sequence." name:"ignore"`
	VirtualData bool     `help:"Suppress missing-input checks." name:"virtual-data"`
	Version     kong.VersionFlag `help:"Print version and exit." default:"${version}"`
}

func main() {
	os.Exit(run(os.Args[1:], nil))
}

// run is the testable core of main: it accepts an explicit operation
// registry (nil in production, since the core ships none) so a future
// linked-in catalogue, or a test, can supply one without touching os.Args.
func run(args []string, registry []*operation.Operation) int {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dcmauto"),
		kong.Description("DICOMautomaton pipeline driver"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := setupLogger(&cli.GlobalConfig, cli.LogFile)

	if cli.DetailedUsage {
		printDetailedUsage(registry)
		return 0
	}

	if cli.Standalone == "" && !cli.VirtualData {
		logger.Error("no input file or directory supplied; pass one or set --virtual-data")
		return 1
	}

	tokens, err := buildTokens(cli)
	if err != nil {
		logger.Error("invalid pipeline flags", "error", err)
		return 1
	}

	dr := pipeline.NewDriver(registry)
	dr.Logger = logger
	dr.Meta["Invocation"] = strings.Join(os.Args, " ")
	for k, v := range cli.Metadata {
		dr.Meta[k] = v
	}

	d := drover.New()
	if err := dr.Run(d, tokens, cli.Lexicon); err != nil {
		var opErr *errs.OperationError
		if ok := asOperationError(err, &opErr); ok {
			fmt.Fprintln(os.Stderr, report.OperationFailure(opErr))
		} else {
			logger.Error("pipeline failed", "error", err)
		}
		return 1
	}

	fmt.Fprintln(os.Stderr, report.Summary(countOperations(tokens)))
	return 0
}

func asOperationError(err error, target **errs.OperationError) bool {
	for err != nil {
		if opErr, ok := err.(*errs.OperationError); ok {
			*target = opErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func countOperations(tokens []pipeline.Token) int {
	n := 0
	for _, t := range tokens {
		if t.Kind == pipeline.TokenOperation {
			n++
		}
	}
	return n
}

// buildTokens flattens cli.Operation into pipeline tokens, applying
// --disregard (elide the first operation token) and --ignore (elide the
// first parameter of the first operation token) exactly once each.
func buildTokens(cli *CLI) ([]pipeline.Token, error) {
	tokens := make([]pipeline.Token, 0, len(cli.Operation))
	for _, entry := range cli.Operation {
		switch entry {
		case startChildrenSentinel:
			tokens = append(tokens, pipeline.Token{Kind: pipeline.TokenStartChildren})
		case stopChildrenSentinel:
			tokens = append(tokens, pipeline.Token{Kind: pipeline.TokenStopChildren})
		default:
			tokens = append(tokens, pipeline.Token{Kind: pipeline.TokenOperation, Text: entry})
		}
	}

	if cli.Disregard {
		tokens = elideFirstOperation(tokens)
	}
	if cli.Ignore {
		tokens = elideFirstParameter(tokens)
	}
	return tokens, nil
}

func elideFirstOperation(tokens []pipeline.Token) []pipeline.Token {
	for i, t := range tokens {
		if t.Kind == pipeline.TokenOperation {
			return append(append([]pipeline.Token{}, tokens[:i]...), tokens[i+1:]...)
		}
	}
	return tokens
}

func elideFirstParameter(tokens []pipeline.Token) []pipeline.Token {
	for i, t := range tokens {
		if t.Kind != pipeline.TokenOperation {
			continue
		}
		parts := strings.Split(t.Text, ":")
		if len(parts) < 2 {
			return tokens
		}
		parts = append(parts[:1], parts[2:]...)
		out := append([]pipeline.Token{}, tokens...)
		out[i].Text = strings.Join(parts, ":")
		return out
	}
	return tokens
}

func printDetailedUsage(registry []*operation.Operation) {
	fmt.Println(strconv.Itoa(len(registry)) + " operation(s) registered")
	for _, op := range registry {
		fmt.Printf("\n%s\n", op.Name)
		for _, arg := range op.Schema {
			fmt.Printf("  %-20s required=%-5v default=%q  %s\n", arg.Name, arg.Required, arg.Default, arg.Description)
		}
	}
}

// setupLogger mirrors the teacher's cli.setupLogger, extended with an
// optional rotating file sink (spec's domain-stack wiring for
// lumberjack.v2): when logFile is set, log records go to both stderr and
// the rotated file.
func setupLogger(cfg *config.GlobalConfig, logFile string) *log.Logger {
	var out io.Writer = os.Stderr
	if logFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch cfg.LogLevel {
	case "trace", "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	case "fatal":
		logger.SetLevel(log.FatalLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if !cfg.Pretty {
		logger.SetFormatter(log.JSONFormatter)
	}
	log.SetDefault(logger)
	return logger
}
