package convert

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mikkopa/mso-rew-converter/internal/mso"
)

var testTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

const sampleExport = `Channel: "Left"
FL1: Parametric EQ
Parameter "Center freq (Hz)" = 100
Parameter "Boost (dB)" = -3
Parameter "Q (RBJ)" = 0.7
End Channel: "Left"

Channel: "Right"
FL2: Parametric EQ
Parameter "Center freq (Hz)" = 120
Parameter "Boost (dB)" = 2
Parameter "Q (RBJ)" = 1.5
FL3: Parametric EQ
Parameter "Center freq (Hz)" = 200
Parameter "Boost (dB)" = -1.5
Parameter "Q (RBJ)" = 3
End Channel: "Right"

Shared sub channel:
FL4: All-Pass Second-Order
Parameter "Freq of 180 deg phase (Hz)" = 60
Parameter "All-pass Q" = 1.0
End shared sub channel
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuild_SeparateShared(t *testing.T) {
	sum, err := Build(sampleExport, Options{}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Left, Right (sorted), then the standalone shared unit.
	if len(sum.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(sum.Units))
	}
	if sum.Units[0].Name != "Left" || sum.Units[1].Name != "Right" {
		t.Errorf("channels not in sorted order: %s, %s", sum.Units[0].Name, sum.Units[1].Name)
	}

	shared := sum.Units[2]
	if shared.FileName != "shared_sub_filters.txt" {
		t.Errorf("expected shared_sub_filters.txt, got %q", shared.FileName)
	}
	if shared.Name != "Shared Sub" {
		t.Errorf("expected Shared Sub label, got %q", shared.Name)
	}
	if !strings.Contains(shared.Content, "Channel: Shared Sub") {
		t.Errorf("shared output missing channel label:\n%s", shared.Content)
	}

	if sum.TotalProcessed != 4 {
		t.Errorf("expected 4 processed, got %d", sum.TotalProcessed)
	}
	if sum.TotalExported != 4 {
		t.Errorf("expected 4 exported, got %d", sum.TotalExported)
	}
}

func TestBuild_CombineShared(t *testing.T) {
	sum, err := Build(sampleExport, Options{CombineShared: true}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No standalone shared unit in combine mode.
	if len(sum.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(sum.Units))
	}
	for _, u := range sum.Units {
		if u.FileName == "shared_sub_filters.txt" {
			t.Error("standalone shared file must not be emitted in combine mode")
		}
		if u.SharedFilters != 1 {
			t.Errorf("unit %s: expected 1 shared filter merged, got %d", u.Name, u.SharedFilters)
		}
		// Shared records come first.
		allPass := strings.Index(u.Content, "All Pass")
		bell := strings.Index(u.Content, "Bell")
		if allPass < 0 || bell < 0 || allPass > bell {
			t.Errorf("unit %s: shared filters must precede channel filters:\n%s", u.Name, u.Content)
		}
	}

	// Channel filters counted once; merges inflate only the exported total.
	if sum.TotalProcessed != 3 {
		t.Errorf("expected 3 processed, got %d", sum.TotalProcessed)
	}
	if sum.TotalExported != 5 {
		t.Errorf("expected 5 exported, got %d", sum.TotalExported)
	}
}

func TestBuild_CombineSharedNumberingContiguous(t *testing.T) {
	sum, err := Build(sampleExport, Options{CombineShared: true}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var right *Unit
	for i := range sum.Units {
		if sum.Units[i].Name == "Right" {
			right = &sum.Units[i]
		}
	}
	if right == nil {
		t.Fatal("missing Right unit")
	}
	for _, want := range []string{"Filter 1: ON All Pass", "Filter 2: ON Bell", "Filter 3: ON Bell"} {
		if !strings.Contains(right.Content, want) {
			t.Errorf("expected %q in combined output:\n%s", want, right.Content)
		}
	}
}

func TestBuild_EmptyChannelProducesNoUnit(t *testing.T) {
	content := `Channel: "Left"
FL1: Gain Block
Parameter "Gain (dB)" = 2
End Channel: "Left"
`
	sum, err := Build(content, Options{}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Units) != 0 {
		t.Errorf("channel with zero retained filters must produce no unit, got %d", len(sum.Units))
	}
}

func TestBuild_QTypeSelection(t *testing.T) {
	content := `Channel: "Left"
FL1: Parametric EQ
Parameter "Center freq (Hz)" = 100
Parameter "Boost (dB)" = -3
Parameter "Q (RBJ)" = 0.7
"Classic" Q = 0.65
End Channel: "Left"
`
	sum, err := Build(content, Options{QType: mso.QTypeClassic}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sum.Units[0].Content, "Q 0.65") {
		t.Errorf("expected classic Q in output:\n%s", sum.Units[0].Content)
	}
}

func TestRun_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mso_export.txt")
	if err := os.WriteFile(input, []byte(sampleExport), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	sum, err := Run(Options{InputFile: input, OutputDir: outDir}, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(sum.Units))
	}

	for _, name := range []string{"Left_filters.txt", "Right_filters.txt", "shared_sub_filters.txt"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("missing output file %s: %v", name, err)
		}
		if !strings.HasPrefix(string(data), "Filter Settings file\n") {
			t.Errorf("%s: missing header", name)
		}
	}

	left, _ := os.ReadFile(filepath.Join(outDir, "Left_filters.txt"))
	if !strings.Contains(string(left), "Filter 1: ON Bell Fc 100.0 Hz Gain -3.0 dB Q 0.7") {
		t.Errorf("unexpected Left content:\n%s", left)
	}
}

func TestRun_MissingInputFile(t *testing.T) {
	_, err := Run(Options{
		InputFile: filepath.Join(t.TempDir(), "nope.txt"),
		OutputDir: t.TempDir(),
	}, discard())
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestRun_CombineSharedOmitsSharedFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mso_export.txt")
	if err := os.WriteFile(input, []byte(sampleExport), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	_, err := Run(Options{InputFile: input, OutputDir: outDir, CombineShared: true}, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "shared_sub_filters.txt")); !os.IsNotExist(err) {
		t.Error("shared_sub_filters.txt must not exist in combine mode")
	}
}
