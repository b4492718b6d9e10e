package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"ui_automation/application/element"
	"ui_automation/application/runner"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/storage"
)

var (
	succColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	valueColor = color.New(color.FgCyan)
)

const helpText = `Commands:
  open <url>                     load a page
  click <target> [values...]     scroll below the header and click
  dblclick <target> [values...]  double-click without scrolling
  visible <target> [values...]   wait until the target matches
  invisible <target> [values...] wait until the target matches nothing
  exists <target> [values...]    check the target once
  count <target> [values...]     count matching elements
  scroll <target> [values...]    scroll the target into view
  run <file>                     run a YAML scenario
  locators                       list catalog names
  help                           show this help
  quit                           exit

A target is a catalog name (page.name) or a CSS/XPath selector. Quote
arguments that contain spaces: click "//button[text()='Log in']"`

// stepCommands maps REPL commands onto scenario steps
var stepCommands = map[string]entities.StepType{
	"click":     entities.StepClick,
	"dblclick":  entities.StepDoubleClick,
	"visible":   entities.StepWaitVisible,
	"invisible": entities.StepWaitInvisible,
	"exists":    entities.StepExists,
	"count":     entities.StepCount,
	"scroll":    entities.StepScroll,
}

type TerminalInterface struct {
	runner   *runner.Runner
	engine   interfaces.Engine
	locators interfaces.LocatorStore
	logger   logrus.FieldLogger
	reader   *bufio.Reader
	out      io.Writer
}

func NewTerminalInterface() (*TerminalInterface, error) {
	// Setup logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel.String)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	// Initialize browser engine
	engine, err := browser.NewEngine(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	opts := []runner.Option{
		runner.WithDefaultTimeout(cfg.DefaultTimeout()),
		runner.WithElementOptions(
			element.WithPollInterval(cfg.PollInterval()),
			element.WithLegacyXPathQuotes(cfg.LegacyXPathQuotes.Bool),
		),
	}

	var locators interfaces.LocatorStore
	if path := cfg.LocatorsFile.String; path != "" {
		catalog, err := storage.LoadLocatorCatalog(path)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		logger.WithField("locators", len(catalog.Names())).Info("Locator catalog loaded")
		locators = catalog
		opts = append(opts, runner.WithLocators(catalog))
	}

	if dir := cfg.ReportDir.String; dir != "" {
		reports, err := storage.NewReportStore(dir)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		opts = append(opts, runner.WithReports(reports))
	}

	return newTerminal(runner.NewRunner(engine, logger, opts...), engine, locators, logger, os.Stdin, os.Stdout), nil
}

func newTerminal(r *runner.Runner, engine interfaces.Engine, locators interfaces.LocatorStore, logger logrus.FieldLogger, in io.Reader, out io.Writer) *TerminalInterface {
	return &TerminalInterface{
		runner:   r,
		engine:   engine,
		locators: locators,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (t *TerminalInterface) Run() error {
	fmt.Fprintln(t.out, "UI Automation")
	fmt.Fprintln(t.out, "=============")
	fmt.Fprintln(t.out, "Type 'help' for commands, or 'quit' to exit")
	fmt.Fprintln(t.out)

	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return err
		}

		// Ctrl+C cancels the running command, not the session
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		quit, cmdErr := t.handle(ctx, input)
		stop()
		if cmdErr != nil {
			failColor.Fprintf(t.out, "Error: %v\n", cmdErr)
		}
		if quit {
			fmt.Fprintln(t.out, "Bye!")
			return nil
		}
		if eof {
			return nil
		}
	}
}

// handle executes one input line and reports whether the loop should stop
func (t *TerminalInterface) handle(ctx context.Context, input string) (bool, error) {
	args, err := splitArgs(input)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit", "q":
		return true, nil

	case "help":
		fmt.Fprintln(t.out, helpText)
		return false, nil

	case "locators":
		if t.locators == nil {
			fmt.Fprintln(t.out, "No locator catalog loaded (set UI_LOCATORS_FILE)")
			return false, nil
		}
		for _, name := range t.locators.Names() {
			loc, _ := t.locators.Lookup(name)
			fmt.Fprintf(t.out, "  %s\t%s\n", name, valueColor.Sprint(loc.Selector))
		}
		return false, nil

	case "open":
		if len(args) != 1 {
			return false, errors.New("usage: open <url>")
		}
		t.printResult(t.runner.ExecuteStep(ctx, entities.Step{Type: entities.StepNavigate, URL: args[0]}))
		return false, nil

	case "run":
		if len(args) != 1 {
			return false, errors.New("usage: run <file>")
		}
		return false, t.runScenario(ctx, args[0])
	}

	stepType, ok := stepCommands[cmd]
	if !ok {
		return false, fmt.Errorf("unknown command %q, type 'help' for commands", cmd)
	}
	if len(args) == 0 {
		return false, fmt.Errorf("usage: %s <target> [values...]", cmd)
	}
	step := entities.Step{Type: stepType, Target: args[0]}
	if len(args) > 1 {
		step.Values = args[1:]
	}
	t.printResult(t.runner.ExecuteStep(ctx, step))
	return false, nil
}

func (t *TerminalInterface) runScenario(ctx context.Context, path string) error {
	sc, err := storage.LoadScenario(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(t.out, "\nRunning scenario %s (%d steps)\n\n", valueColor.Sprint(sc.Name), len(sc.Steps))
	results, err := t.runner.Run(ctx, sc)
	for _, res := range results {
		t.printResult(res)
	}

	if err != nil {
		failColor.Fprintf(t.out, "\nScenario %s: %s\n\n", sc.Status, sc.Name)
		return nil
	}
	succColor.Fprintf(t.out, "\nScenario %s: %s\n\n", sc.Status, sc.Name)
	return nil
}

func (t *TerminalInterface) printResult(res entities.StepResult) {
	if !res.Success {
		failColor.Fprintf(t.out, "✗ %s: %s\n", res.Message, res.Error)
		return
	}
	succColor.Fprint(t.out, "✓ ")
	fmt.Fprintln(t.out, res.Message)
}

func (t *TerminalInterface) Close() error {
	return t.engine.Close()
}

// splitArgs splits a command line on whitespace. Double-quoted arguments
// may contain spaces; \" inside them is a literal quote.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	runes := []rune(strings.TrimSpace(line))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
