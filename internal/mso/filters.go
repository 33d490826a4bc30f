package mso

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QType selects which Q convention Parametric EQ records carry in their Q field.
type QType string

const (
	QTypeRBJ     QType = "rbj"
	QTypeClassic QType = "classic"
)

// Filter is one parsed filter definition, ready for rendering.
type Filter struct {
	Name string // record tag, e.g. "FL3"
	Type string // declared type text, e.g. "Parametric EQ"
	Freq float64
	Gain float64
	Q    float64

	// Alternate Q conventions, populated for Parametric EQ records only.
	QRBJ     float64
	QClassic float64
}

// Options controls filter selection during parsing.
type Options struct {
	QType        QType
	IncludeTypes []string
	ExcludeTypes []string
}

// DefaultOptions returns the standard selection: Parametric EQ and All-Pass
// filters in, Gain and Delay blocks out, RBJ Q values.
func DefaultOptions() Options {
	return Options{
		QType:        QTypeRBJ,
		IncludeTypes: []string{"Parametric EQ", "All-Pass"},
		ExcludeTypes: []string{"Gain Block", "Delay Block"},
	}
}

func (o Options) withDefaults() Options {
	if o.QType == "" {
		o.QType = QTypeRBJ
	}
	if o.IncludeTypes == nil {
		o.IncludeTypes = []string{"Parametric EQ", "All-Pass"}
	}
	if o.ExcludeTypes == nil {
		o.ExcludeTypes = []string{"Gain Block", "Delay Block"}
	}
	return o
}

// ParseError reports a numeric field that matched its pattern but failed to
// parse. It aborts the whole run rather than dropping the record.
type ParseError struct {
	Filter string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter %s: field %q: invalid value %q: %v", e.Filter, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	chunkStartRe = regexp.MustCompile(`(?m)^FL\d+:`)
	headerRe     = regexp.MustCompile(`^(FL\d+): (.+)`)

	peqFreqRe     = regexp.MustCompile(`Parameter "Center freq \(Hz\)" = ([\d.]+)`)
	peqGainRe     = regexp.MustCompile(`Parameter "Boost \(dB\)" = ([-\d.]+)`)
	peqQRBJRe     = regexp.MustCompile(`Parameter "Q \(RBJ\)" = ([\d.]+)`)
	peqQClassicRe = regexp.MustCompile(`"Classic" Q = ([\d.]+)`)

	allPassFreqRe = regexp.MustCompile(`Parameter "Freq of 180 deg phase \(Hz\)" = ([\d.]+)`)
	allPassQRe    = regexp.MustCompile(`Parameter "All-pass Q" = ([\d.]+)`)
)

// ParseFilters splits a block's text into per-filter chunks and extracts a
// Filter from each. Chunks with unrecognized headers or missing required
// parameters are dropped silently; a matched numeric field that fails to
// parse is fatal.
func ParseFilters(text string, opts Options) ([]Filter, error) {
	opts = opts.withDefaults()

	var filters []Filter
	for _, chunk := range splitChunks(text) {
		first, rest, _ := strings.Cut(chunk, "\n")
		m := headerRe.FindStringSubmatch(first)
		if m == nil {
			continue
		}
		name := m[1]
		typ := strings.TrimSpace(m[2])

		if !included(typ, opts.IncludeTypes, opts.ExcludeTypes) {
			continue
		}

		f, err := extractRecord(name, typ, rest, opts.QType)
		if err != nil {
			return nil, err
		}
		if f != nil {
			filters = append(filters, *f)
		}
	}
	return filters, nil
}

// splitChunks breaks block text into chunks, each starting at a line of the
// shape `FL<digits>:`. Text before the first such line forms a leading chunk
// that the header match rejects.
func splitChunks(text string) []string {
	starts := chunkStartRe.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil
	}

	var chunks []string
	for i, s := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		chunks = append(chunks, strings.TrimSpace(text[s[0]:end]))
	}
	return chunks
}

// included applies the type selection: any include phrase must occur in the
// type text, and no exclude phrase may. Exclusion wins over inclusion.
// Matching is case-insensitive substring containment.
func included(typ string, include, exclude []string) bool {
	lower := strings.ToLower(typ)

	ok := false
	for _, inc := range include {
		if strings.Contains(lower, strings.ToLower(inc)) {
			ok = true
			break
		}
	}
	for _, exc := range exclude {
		if strings.Contains(lower, strings.ToLower(exc)) {
			ok = false
			break
		}
	}
	return ok
}

// extractRecord dispatches on the filter category. Types with no extraction
// routine yield nil without error.
func extractRecord(name, typ, params string, qType QType) (*Filter, error) {
	lower := strings.ToLower(typ)
	switch {
	case strings.Contains(lower, "parametric eq"):
		return extractParametricEQ(name, typ, params, qType)
	case strings.Contains(lower, "all-pass"):
		return extractAllPass(name, typ, params)
	}
	return nil, nil
}

func extractParametricEQ(name, typ, params string, qType QType) (*Filter, error) {
	freqM := peqFreqRe.FindStringSubmatch(params)
	gainM := peqGainRe.FindStringSubmatch(params)
	qRBJM := peqQRBJRe.FindStringSubmatch(params)
	if freqM == nil || gainM == nil || qRBJM == nil {
		return nil, nil
	}

	freq, err := parseField(name, "Center freq (Hz)", freqM[1])
	if err != nil {
		return nil, err
	}
	gain, err := parseField(name, "Boost (dB)", gainM[1])
	if err != nil {
		return nil, err
	}
	qRBJ, err := parseField(name, "Q (RBJ)", qRBJM[1])
	if err != nil {
		return nil, err
	}

	qClassic := qRBJ
	if m := peqQClassicRe.FindStringSubmatch(params); m != nil {
		qClassic, err = parseField(name, `"Classic" Q`, m[1])
		if err != nil {
			return nil, err
		}
	}

	q := qRBJ
	if qType == QTypeClassic {
		q = qClassic
	}

	return &Filter{
		Name:     name,
		Type:     typ,
		Freq:     freq,
		Gain:     gain,
		Q:        q,
		QRBJ:     qRBJ,
		QClassic: qClassic,
	}, nil
}

func extractAllPass(name, typ, params string) (*Filter, error) {
	freqM := allPassFreqRe.FindStringSubmatch(params)
	qM := allPassQRe.FindStringSubmatch(params)
	if freqM == nil || qM == nil {
		return nil, nil
	}

	freq, err := parseField(name, "Freq of 180 deg phase (Hz)", freqM[1])
	if err != nil {
		return nil, err
	}
	q, err := parseField(name, "All-pass Q", qM[1])
	if err != nil {
		return nil, err
	}

	return &Filter{
		Name: name,
		Type: typ,
		Freq: freq,
		Q:    q,
	}, nil
}

func parseField(filter, field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ParseError{Filter: filter, Field: field, Value: value, Err: err}
	}
	return v, nil
}
