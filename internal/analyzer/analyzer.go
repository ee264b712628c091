// Package analyzer drives exception-flow analysis over a set of C# files:
// parse, bind types, classify code units and run every enabled rule.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync/atomic"

	"exflow/internal/cache"
	"exflow/internal/catches"
	"exflow/internal/codeunit"
	"exflow/internal/config"
	"exflow/internal/diag"
	"exflow/internal/hierarchy"
	"exflow/internal/member"
	"exflow/internal/semantic"
	"exflow/internal/syntax"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options configure an Analyzer. The zero value enables every rule and unit
// kind, treats System.Exception and System.SystemException as broad and
// uses one worker per CPU.
type Options struct {
	Settings   *config.Settings
	BroadTypes []string
	Workers    int
	Logger     *log.Logger
}

// Analyzer is reusable; each Analyze call is an independent run with its own
// cache.
type Analyzer struct {
	parser   *syntax.Parser
	registry *member.Registry
	settings *config.Settings
	broad    []string
	workers  int
	logger   *log.Logger

	// unitHook runs before each unit is analyzed; tests use it to inject
	// failures.
	unitHook func(*codeunit.CodeUnit)
}

func New(opts Options) (*Analyzer, error) {
	p, err := syntax.NewParser("csharp")
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		parser:   p,
		registry: member.DefaultRegistry(),
		settings: opts.Settings,
		broad:    opts.BroadTypes,
		workers:  opts.Workers,
		logger:   opts.Logger,
	}
	if a.settings == nil {
		a.settings = config.NewSettings("", nil)
	}
	if a.broad == nil {
		a.broad = []string{"System.Exception", "System.SystemException"}
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	return a, nil
}

// Extensions returns the file extensions the analyzer accepts.
func (a *Analyzer) Extensions() []string {
	return a.parser.Extensions()
}

// Result is the outcome of one run.
type Result struct {
	RunID uuid.UUID
	Files int
	// Types counts the classes, structs and interfaces declared in the sources.
	Types       int
	Units       int
	Diagnostics []diag.Diagnostic
}

// Source is one file's content.
type Source struct {
	Path string
	Text []byte
}

// AnalyzeFiles reads and analyzes paths. Unreadable files are logged and
// skipped.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) (*Result, error) {
	trees := make([]*syntax.Tree, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, path := range paths {
		g.Go(func() error {
			tree, err := a.parser.ParseFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.logger.Printf("⚠️ skipping %s: %v", path, err)
				return nil
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	return a.analyzeTrees(ctx, compact(trees))
}

// Analyze analyzes in-memory sources.
func (a *Analyzer) Analyze(ctx context.Context, sources ...Source) (*Result, error) {
	trees := make([]*syntax.Tree, 0, len(sources))
	for _, src := range sources {
		tree, err := a.parser.Parse(ctx, src.Path, src.Text)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return a.analyzeTrees(ctx, trees)
}

func compact(trees []*syntax.Tree) []*syntax.Tree {
	out := trees[:0]
	for _, t := range trees {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (a *Analyzer) analyzeTrees(ctx context.Context, trees []*syntax.Tree) (*Result, error) {
	sort.Slice(trees, func(i, j int) bool { return trees[i].Path < trees[j].Path })

	run := cache.New()
	defer run.Clear()
	ctx = cache.WithRun(ctx, run)

	universe := semantic.NewUniverse(cache.FromContext(ctx))
	universe.SetLogger(a.logger)
	for _, tree := range trees {
		if tree.HasErrors() {
			a.logger.Printf("⚠️ %s: syntax errors, results may be incomplete", tree.Path)
		}
		universe.Declare(tree)
	}
	universe.Link()

	broad := a.broadness(universe)
	bag := diag.NewBag()
	var units atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, tree := range trees {
		model := universe.Model(tree)
		for _, unit := range a.registry.Units(tree.Root) {
			if !a.settings.AnalyzeKind(unit.Kind) || !unit.HasBody() {
				continue
			}
			g.Go(func() error {
				// Cancellation is checked per unit; finished units keep their findings.
				if err := gctx.Err(); err != nil {
					return err
				}
				units.Add(1)
				bag.Add(a.analyzeUnit(unit, model, broad)...)
				return nil
			})
		}
	}
	err := g.Wait()

	bag.Sort()
	bag.Dedup()
	res := &Result{
		RunID:       run.ID(),
		Files:       len(trees),
		Types:       len(universe.Declared()),
		Units:       int(units.Load()),
		Diagnostics: bag.Items(),
	}
	if err != nil {
		return res, fmt.Errorf("analysis interrupted: %w", err)
	}
	return res, nil
}

func (a *Analyzer) broadness(u *semantic.Universe) *catches.Broadness {
	types := make([]*hierarchy.TypeNode, 0, len(a.broad))
	for _, name := range a.broad {
		t := u.Lookup(name)
		if t == nil {
			a.logger.Printf("⚠️ broad catch type %s is not known, ignored", name)
			continue
		}
		types = append(types, t)
	}
	return catches.NewBroadness(types...)
}
