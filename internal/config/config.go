package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mikkopa/mso-rew-converter/internal/mso"
)

// Config carries the conversion defaults and, for serve mode, the HTTP
// settings. Env vars seed everything; CLI flags override the conversion
// options per run.
type Config struct {
	// HTTP service
	Port           string
	APIKey         string // empty disables auth
	MaxUploadBytes int64

	// Conversion defaults
	Equaliser     string
	QType         string
	IncludeTypes  []string
	ExcludeTypes  []string
	CombineShared bool

	// PDF input
	PDFFallbackPdftotext bool
}

func Load() Config {
	return Config{
		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("MSO2STORM_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		Equaliser:     envOr("EQUALISER", "StormAudio"),
		QType:         envOr("Q_TYPE", string(mso.QTypeRBJ)),
		IncludeTypes:  envList("INCLUDE_TYPES", []string{"Parametric EQ", "All-Pass"}),
		ExcludeTypes:  envList("EXCLUDE_TYPES", []string{"Gain Block", "Delay Block"}),
		CombineShared: envBool("COMBINE_SHARED", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
}

func (c Config) Validate() error {
	switch mso.QType(c.QType) {
	case mso.QTypeRBJ, mso.QTypeClassic:
	default:
		return fmt.Errorf("Q_TYPE must be %q or %q, got %q", mso.QTypeRBJ, mso.QTypeClassic, c.QType)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
