// Package importer adds cards parsed from markdown notes to a stack.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/gitsource"
	"github.com/conorfennell/studymate/internal/knol"
	"github.com/conorfennell/studymate/internal/parser"
	"go.uber.org/zap"
)

// Library is the part of study.Library the importer writes to.
type Library interface {
	FindStackByName(name string) (domain.Stack, bool)
	Stack(id string) (domain.Stack, error)
	AddStack(ctx context.Context, name string) (*domain.Stack, error)
	AddCard(ctx context.Context, stackID, front, back string) (*domain.Card, error)
}

// Options selects what to import and where.
type Options struct {
	// Source is a markdown file, a directory walked for .md files, or a git URL.
	Source string
	// StackName is the target stack. It is created when missing.
	StackName string
	// ReposDir is where git sources are checked out.
	ReposDir string
	// Progress receives git transfer output. May be nil.
	Progress io.Writer
}

// Result summarizes an import.
type Result struct {
	StackID string
	Parsed  int
	Added   int
	Skipped int
	Errors  []error
}

// Importer reconciles markdown sources into stacks.
type Importer struct {
	lib    Library
	logger *zap.Logger
	sync   func(ctx context.Context, url, path string, progress io.Writer, logger *zap.Logger) error
}

// New creates an Importer.
func New(lib Library, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{lib: lib, logger: logger, sync: gitsource.Sync}
}

// Import parses every card in opts.Source and adds the ones whose content is not
// already in the stack. Parse failures of single files are collected, not fatal.
func (im *Importer) Import(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.StackName) == "" {
		return nil, fmt.Errorf("stack name cannot be empty")
	}

	root := opts.Source
	if gitsource.IsURL(opts.Source) {
		localPath, err := gitsource.LocalPath(opts.ReposDir, opts.Source)
		if err != nil {
			return nil, err
		}
		if err := im.sync(ctx, opts.Source, localPath, opts.Progress, im.logger); err != nil {
			return nil, err
		}
		root = localPath
	} else if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", root, err)
	}

	stack, err := im.targetStack(ctx, opts.StackName)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(stack.Cards))
	for _, c := range stack.Cards {
		known[knol.Hash(c.Front, c.Back)] = true
	}

	res := &Result{StackID: stack.ID}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		entries, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, e := range entries {
			res.Parsed++
			back := e.BackWithContext()
			hash := knol.Hash(e.Front, back)
			if known[hash] {
				res.Skipped++
				continue
			}
			card, addErr := im.lib.AddCard(ctx, stack.ID, e.Front, back)
			if addErr != nil {
				return addErr
			}
			if card == nil {
				// Blank back.
				res.Skipped++
				continue
			}
			known[hash] = true
			res.Added++
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("failed to import %s: %w", opts.Source, walkErr)
	}

	im.logger.Info("Import complete",
		zap.String("source", opts.Source),
		zap.String("stack_id", stack.ID),
		zap.Int("parsed_cards", res.Parsed),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (im *Importer) targetStack(ctx context.Context, name string) (domain.Stack, error) {
	if s, ok := im.lib.FindStackByName(name); ok {
		return s, nil
	}
	created, err := im.lib.AddStack(ctx, name)
	if err != nil {
		return domain.Stack{}, err
	}
	return im.lib.Stack(created.ID)
}
