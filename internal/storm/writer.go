package storm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mikkopa/mso-rew-converter/internal/mso"
)

const (
	// SharedFileName is the output file for an uncombined shared sub channel.
	SharedFileName = "shared_sub_filters.txt"

	// SharedChannelLabel labels the standalone shared sub output.
	SharedChannelLabel = "Shared Sub"
)

// FileName returns the output file name for a channel.
func FileName(channel string) string {
	return channel + "_filters.txt"
}

// Render produces a complete StormAudio filter settings document. The channel
// line is omitted when channelName is empty. Filters without a rendering rule
// are skipped and do not consume a number.
func Render(filters []mso.Filter, channelName, equaliser string, now time.Time) string {
	var b strings.Builder

	b.WriteString("Filter Settings file\n\n")
	fmt.Fprintf(&b, "Dated:%s\n\n", now.Format("20060102"))
	fmt.Fprintf(&b, "Equaliser: %s\n", equaliser)
	if channelName != "" {
		fmt.Fprintf(&b, "Channel: %s\n", channelName)
	}
	b.WriteString("\n")

	n := 1
	for _, f := range filters {
		lower := strings.ToLower(f.Type)
		switch {
		case strings.Contains(lower, "parametric eq"):
			fmt.Fprintf(&b, "Filter %d: ON Bell Fc %s Hz Gain %s dB Q %s\n",
				n, formatNumber(f.Freq), formatNumber(f.Gain), formatNumber(f.Q))
			n++
		case strings.Contains(lower, "all-pass"):
			fmt.Fprintf(&b, "Filter %d: ON All Pass Order %d Fc %s Hz Gain 0 dB Q %s\n",
				n, allPassOrder(f.Type), formatNumber(f.Freq), formatNumber(f.Q))
			n++
		}
	}

	return b.String()
}

// allPassOrder derives the filter order from the ordinal word in the type
// text, defaulting to second order.
func allPassOrder(typ string) int {
	lower := strings.ToLower(typ)
	switch {
	case strings.Contains(lower, "first-order"):
		return 1
	case strings.Contains(lower, "second-order"):
		return 2
	case strings.Contains(lower, "third-order"):
		return 3
	case strings.Contains(lower, "fourth-order"):
		return 4
	}
	return 2
}

// formatNumber renders a value in its shortest decimal form, keeping a
// trailing .0 on integral values so 100 reads as 100.0.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
