// Package ocr recognizes scanned case sheets by rendering PDF pages with
// pdftoppm and reading them with tesseract.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrNotInstalled is returned when tesseract or pdftoppm cannot be found.
var ErrNotInstalled = errors.New("tesseract-ocr is not installed or not in PATH")

// Defaults applied when Engine fields are zero.
const (
	DefaultDPI         = 300
	DefaultConcurrency = 4
	DefaultLanguage    = "eng"
)

// Runner executes external commands.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) { return exec.LookPath(name) }

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Engine renders and recognizes PDFs.
type Engine struct {
	Runner      Runner
	DPI         int
	Preprocess  bool // binarize pages before recognition
	Concurrency int
	Language    string
	Logger      *slog.Logger
}

// NewEngine returns an Engine using os/exec and the defaults.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		Runner:      ExecRunner{},
		DPI:         DefaultDPI,
		Concurrency: DefaultConcurrency,
		Language:    DefaultLanguage,
		Logger:      logger,
	}
}

// Available reports whether both binaries are on PATH.
func (e *Engine) Available() error {
	for _, bin := range []string{"pdftoppm", "tesseract"} {
		if _, err := e.runner().LookPath(bin); err != nil {
			return fmt.Errorf("%w (%s)", ErrNotInstalled, bin)
		}
	}
	return nil
}

// ExtractPDF recognizes every page of the PDF at path. Page texts are
// joined with form feeds in page order.
func (e *Engine) ExtractPDF(ctx context.Context, path string) (string, error) {
	if err := e.Available(); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "casesheet-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create ocr dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	dpi := strconv.Itoa(e.dpi())
	if _, err := e.runner().Run(ctx, "pdftoppm", "-r", dpi, "-png", path, prefix); err != nil {
		return "", fmt.Errorf("render pages: %w", err)
	}

	images, err := pageImages(dir)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("render pages: no images produced")
	}

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())
	for i, img := range images {
		g.Go(func() error {
			src := img
			if e.Preprocess {
				bin := strings.TrimSuffix(img, ".png") + "-bin.png"
				if err := Binarize(img, bin); err != nil {
					return fmt.Errorf("preprocess page %d: %w", i+1, err)
				}
				src = bin
			}
			out, err := e.runner().Run(gctx, "tesseract", src, "stdout",
				"-l", e.language(), "--oem", "3", "--psm", "4")
			if err != nil {
				return fmt.Errorf("recognize page %d: %w", i+1, err)
			}
			texts[i] = strings.TrimSpace(string(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	e.logger().Debug("ocr complete", "path", path, "pages", len(images))
	return strings.Join(texts, "\f"), nil
}

// pageImages lists pdftoppm output (page-1.png or page-01.png) in page order.
func pageImages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	type page struct {
		num  int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		n, err := strconv.Atoi(strings.TrimPrefix(base, "page-"))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: n, path: m})
	}
	sort.Slice(pages, func(a, b int) bool { return pages[a].num < pages[b].num })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

func (e *Engine) runner() Runner {
	if e.Runner == nil {
		return ExecRunner{}
	}
	return e.Runner
}

func (e *Engine) dpi() int {
	if e.DPI <= 0 {
		return DefaultDPI
	}
	return e.DPI
}

func (e *Engine) concurrency() int {
	if e.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return e.Concurrency
}

func (e *Engine) language() string {
	if e.Language == "" {
		return DefaultLanguage
	}
	return e.Language
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
