package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikkopa/mso-rew-converter/internal/convert"
	"github.com/mikkopa/mso-rew-converter/internal/mso"
	"github.com/mikkopa/mso-rew-converter/internal/source"
)

type convertUnit struct {
	Name           string `json:"name"`
	FileName       string `json:"filename"`
	SharedFilters  int    `json:"shared_filters"`
	ChannelFilters int    `json:"channel_filters"`
	Content        string `json:"content"`
}

type convertResponse struct {
	Units          []convertUnit `json:"units"`
	TotalProcessed int           `json:"total_processed"`
	TotalExported  int           `json:"total_exported"`
}

// handleConvert accepts a multipart MSO export upload and returns every
// rendered output document. Nothing is written server-side.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	rd, err := source.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p, ok := rd.(*source.PDFReader); ok {
		p.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	content, err := rd.Extract(io.LimitReader(file, s.cfg.MaxUploadBytes+1), filename)
	if err != nil {
		jsonError(w, "read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(content)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := s.conversionOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sum, err := convert.Build(content, opts, time.Now())
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := convertResponse{
		Units:          make([]convertUnit, 0, len(sum.Units)),
		TotalProcessed: sum.TotalProcessed,
		TotalExported:  sum.TotalExported,
	}
	for _, u := range sum.Units {
		resp.Units = append(resp.Units, convertUnit{
			Name:           u.Name,
			FileName:       u.FileName,
			SharedFilters:  u.SharedFilters,
			ChannelFilters: u.ChannelFilters,
			Content:        u.Content,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// conversionOptions reads per-request overrides of the configured defaults.
func (s *Server) conversionOptions(r *http.Request) (convert.Options, error) {
	opts := convert.Options{
		Equaliser:     s.cfg.Equaliser,
		QType:         mso.QType(s.cfg.QType),
		IncludeTypes:  s.cfg.IncludeTypes,
		ExcludeTypes:  s.cfg.ExcludeTypes,
		CombineShared: s.cfg.CombineShared,
	}

	if v := r.FormValue("equaliser"); v != "" {
		opts.Equaliser = v
	}
	if v := r.FormValue("q_type"); v != "" {
		switch mso.QType(v) {
		case mso.QTypeRBJ, mso.QTypeClassic:
			opts.QType = mso.QType(v)
		default:
			return opts, fmt.Errorf("q_type must be %q or %q", mso.QTypeRBJ, mso.QTypeClassic)
		}
	}
	if v := r.FormValue("include_types"); v != "" {
		opts.IncludeTypes = splitList(v)
	}
	if v := r.FormValue("exclude_types"); v != "" {
		opts.ExcludeTypes = splitList(v)
	}
	if v := r.FormValue("combine_shared"); v != "" {
		opts.CombineShared = v == "true"
	}

	return opts, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	return name
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
