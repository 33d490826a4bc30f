package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mikkopa/mso-rew-converter/internal/mso"
	"github.com/mikkopa/mso-rew-converter/internal/source"
	"github.com/mikkopa/mso-rew-converter/internal/storm"
)

// Options configures one conversion run.
type Options struct {
	InputFile string
	OutputDir string

	Equaliser     string
	QType         mso.QType
	IncludeTypes  []string
	ExcludeTypes  []string
	CombineShared bool

	PDFFallbackPdftotext bool
}

// DefaultEqualiser is the equaliser label used when none is configured.
const DefaultEqualiser = "StormAudio"

// Unit is one rendered output document: a channel, a channel merged with the
// shared sub filters, or the standalone shared sub.
type Unit struct {
	Name           string // channel label, e.g. "Left" or "Shared Sub"
	FileName       string
	SharedFilters  int // shared filters merged in (combine mode only)
	ChannelFilters int // the unit's own filters
	Content        string
}

// Summary reports what a run produced.
type Summary struct {
	Units          []Unit
	TotalProcessed int // source filters counted once each
	TotalExported  int // filters written across all files, merges included
}

// Build parses an MSO export and renders every output unit without touching
// the filesystem. Channels are emitted in sorted name order.
func Build(content string, opts Options, now time.Time) (*Summary, error) {
	if opts.Equaliser == "" {
		opts.Equaliser = DefaultEqualiser
	}

	doc, err := mso.ParseDocument(content, mso.Options{
		QType:        opts.QType,
		IncludeTypes: opts.IncludeTypes,
		ExcludeTypes: opts.ExcludeTypes,
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Channels))
	for name := range doc.Channels {
		names = append(names, name)
	}
	slices.Sort(names)

	sum := &Summary{}
	combine := opts.CombineShared && len(doc.Shared) > 0

	for _, name := range names {
		filters := doc.Channels[name]

		unit := Unit{
			Name:           name,
			FileName:       storm.FileName(name),
			ChannelFilters: len(filters),
		}
		if combine {
			merged := make([]mso.Filter, 0, len(doc.Shared)+len(filters))
			merged = append(merged, doc.Shared...)
			merged = append(merged, filters...)
			unit.SharedFilters = len(doc.Shared)
			unit.Content = storm.Render(merged, name, opts.Equaliser, now)
		} else {
			unit.Content = storm.Render(filters, name, opts.Equaliser, now)
		}

		sum.Units = append(sum.Units, unit)
		sum.TotalProcessed += unit.ChannelFilters
		sum.TotalExported += unit.SharedFilters + unit.ChannelFilters
	}

	if len(doc.Shared) > 0 && !opts.CombineShared {
		unit := Unit{
			Name:           storm.SharedChannelLabel,
			FileName:       storm.SharedFileName,
			ChannelFilters: len(doc.Shared),
			Content:        storm.Render(doc.Shared, storm.SharedChannelLabel, opts.Equaliser, now),
		}
		sum.Units = append(sum.Units, unit)
		sum.TotalProcessed += unit.ChannelFilters
		sum.TotalExported += unit.ChannelFilters
	}

	return sum, nil
}

// Run drives a full conversion: read the input document, build every output
// unit, and write one file per unit into the output directory.
func Run(opts Options, log *slog.Logger) (*Summary, error) {
	f, err := os.Open(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rd, err := source.ForFile(opts.InputFile)
	if err != nil {
		return nil, err
	}
	if p, ok := rd.(*source.PDFReader); ok {
		p.FallbackPdftotext = opts.PDFFallbackPdftotext
	}
	content, err := rd.Extract(f, filepath.Base(opts.InputFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.InputFile, err)
	}

	sum, err := Build(content, opts, time.Now())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	for _, unit := range sum.Units {
		path := filepath.Join(opts.OutputDir, unit.FileName)
		if err := os.WriteFile(path, []byte(unit.Content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		log.Info("exported filters",
			"channel", unit.Name,
			"file", unit.FileName,
			"shared", unit.SharedFilters,
			"filters", unit.ChannelFilters,
		)
	}

	return sum, nil
}
