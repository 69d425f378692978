// Package engine orchestrates one analysis run: classify the project
// files, fan the three extractors out as independent tasks, reconcile their
// mentions in priority order, then derive the graph, metrics, narrative,
// and warnings. Nothing outlives a run except what the injected result
// store keeps.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/nveloso/roscope/internal/analyzer"
	"github.com/nveloso/roscope/internal/classifier"
	"github.com/nveloso/roscope/internal/config"
	"github.com/nveloso/roscope/internal/extract"
	"github.com/nveloso/roscope/internal/filetree"
	"github.com/nveloso/roscope/internal/model"
	"github.com/nveloso/roscope/internal/reconcile"
	"github.com/nveloso/roscope/internal/report"
	"github.com/nveloso/roscope/internal/rosgraph"
	"github.com/nveloso/roscope/internal/store"
)

// Engine runs analyses over extracted project directories.
type Engine struct {
	cfg    *config.Config
	store  store.ResultStore
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore injects a result store; analyses are then persisted under a
// fresh analysis id and can be reloaded without re-parsing.
func WithStore(s store.ResultStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine with the given configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full pipeline over projectDir and returns the analysis
// document. Per-file parse failures never abort the run; an unreadable
// project directory does.
func (e *Engine) Analyze(ctx context.Context, projectDir string) (*report.Document, error) {
	start := time.Now()

	info, err := os.Stat(projectDir)
	if err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", projectDir)
	}

	opts := classifier.Options{}
	if overrides, err := config.LoadProjectOverrides(projectDir); err != nil {
		e.logger.Warn("ignoring project overrides", "dir", projectDir, "error", err)
	} else if overrides != nil {
		opts.IgnoredPaths = overrides.IgnoredPaths
	}

	listing, err := classifier.Classify(projectDir, opts)
	if err != nil {
		return nil, fmt.Errorf("classify project: %w", err)
	}
	e.logger.Debug("classified project files",
		"python", len(listing.Python), "cpp", len(listing.Cpp),
		"launch", len(listing.Launch), "other", len(listing.Other))

	mentions, runLog := e.extract(ctx, projectDir, listing)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled after extraction: %w", err)
	}

	result, err := reconcile.Reconcile(mentions)
	if err != nil {
		// Ordering is enforced above, so this is an engine bug.
		return nil, fmt.Errorf("reconcile mentions: %w", err)
	}

	warnings := analyzer.Analyze(result.Model, result.Collisions, analyzer.OSReader(projectDir))
	for _, f := range runLog.Failures {
		warnings = append(warnings, fmt.Sprintf("Parse failure in %s (%s): %s", f.File, f.Stage, f.Reason))
	}

	doc := &report.Document{
		Nodes:           result.Model.Nodes,
		Topics:          result.Model.Topics,
		Services:        result.Model.Services,
		Parameters:      result.Model.Parameters,
		Metrics:         report.ComputeMetrics(result.Model),
		BehaviorSummary: report.BuildSummary(result.Model),
		Warnings:        warnings,
	}

	if e.store != nil {
		doc.AnalysisID = newAnalysisID()
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("serialize analysis: %w", err)
		}
		if err := e.store.Put(doc.AnalysisID, payload); err != nil {
			return nil, fmt.Errorf("store analysis: %w", err)
		}
	}

	e.logger.Debug("analysis complete",
		"nodes", doc.Metrics.NodesCount, "topics", doc.Metrics.TopicsCount,
		"duration", time.Since(start))
	return doc, nil
}

// Load retrieves a previously stored analysis by id.
func (e *Engine) Load(id string) (*report.Document, bool, error) {
	if e.store == nil {
		return nil, false, nil
	}
	payload, ok, err := e.store.Get(id)
	if err != nil || !ok {
		return nil, false, err
	}
	var doc report.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false, fmt.Errorf("decode stored analysis %s: %w", id, err)
	}
	return &doc, true, nil
}

// Tree builds the presentation-ready directory tree for the project.
func (e *Engine) Tree(projectDir string) (*filetree.Node, error) {
	return filetree.Build(projectDir)
}

// Graph derives the communication graph from an analysis document.
func (e *Engine) Graph(doc *report.Document) *rosgraph.Graph {
	return rosgraph.Build(&model.CanonicalModel{
		Nodes:      doc.Nodes,
		Topics:     doc.Topics,
		Services:   doc.Services,
		Parameters: doc.Parameters,
	})
}

// extract runs the three extractors as independent tasks and returns all
// mentions in extractor priority order. Ordering is enforced here, at the
// merge boundary, by buffering per origin; it never depends on which task
// finishes first.
func (e *Engine) extract(ctx context.Context, projectDir string, listing *classifier.Listing) ([]extract.Mention, *extract.RunLog) {
	var (
		mu                          sync.Mutex
		structured, pattern, launch []extract.Mention
		log                         extract.RunLog
	)

	p := pool.New().WithMaxGoroutines(e.cfg.Analyzer.Concurrency)

	p.Go(func() {
		ex := extract.NewPythonExtractor()
		var mentions []extract.Mention
		taskLog := &extract.RunLog{}
		for _, rel := range listing.Python {
			src, err := os.ReadFile(join(projectDir, rel))
			if err != nil {
				taskLog.Addf(rel, "python", err.Error())
				continue
			}
			mentions = append(mentions, ex.ExtractFile(ctx, rel, src, taskLog)...)
		}
		mu.Lock()
		defer mu.Unlock()
		structured = mentions
		log.Merge(taskLog)
	})

	p.Go(func() {
		ex := extract.NewCppExtractor()
		var mentions []extract.Mention
		taskLog := &extract.RunLog{}
		for _, rel := range listing.Cpp {
			src, err := os.ReadFile(join(projectDir, rel))
			if err != nil {
				taskLog.Addf(rel, "cpp", err.Error())
				continue
			}
			mentions = append(mentions, ex.ExtractFile(rel, src)...)
		}
		mu.Lock()
		defer mu.Unlock()
		pattern = mentions
		log.Merge(taskLog)
	})

	p.Go(func() {
		ex := extract.NewLaunchExtractor()
		var mentions []extract.Mention
		taskLog := &extract.RunLog{}
		for _, rel := range listing.Launch {
			src, err := os.ReadFile(join(projectDir, rel))
			if err != nil {
				taskLog.Addf(rel, "launch", err.Error())
				continue
			}
			mentions = append(mentions, ex.ExtractFile(rel, src, taskLog)...)
		}
		mu.Lock()
		defer mu.Unlock()
		launch = mentions
		log.Merge(taskLog)
	})

	p.Wait()

	ordered := make([]extract.Mention, 0, len(structured)+len(pattern)+len(launch))
	ordered = append(ordered, structured...)
	ordered = append(ordered, pattern...)
	ordered = append(ordered, launch...)
	return ordered, &log
}

// newAnalysisID returns a short opaque analysis identifier.
func newAnalysisID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func join(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel))
}
