package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eventboard-backend/internal/services"

	"github.com/rs/zerolog"
)

const imageField = "image"

var errBodyTooLarge = errors.New("request body too large")

// requestForm holds the fields of a write request and its optional upload.
type requestForm struct {
	values    url.Values
	upload    *services.Upload
	file      multipart.File
	multipart *multipart.Form
}

// parseForm reads a multipart, urlencoded or JSON body. The caller must
// call close once the upload has been consumed.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*requestForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r, maxBytes)
	case "application/json":
		return parseJSON(r)
	default:
		if err := r.ParseForm(); err != nil {
			return nil, classifyBodyError(err)
		}
		return &requestForm{values: r.PostForm}, nil
	}
}

func parseMultipart(r *http.Request, maxBytes int64) (*requestForm, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, classifyBodyError(err)
	}

	form := &requestForm{values: url.Values(r.MultipartForm.Value), multipart: r.MultipartForm}
	headers := r.MultipartForm.File[imageField]
	if len(headers) == 0 {
		return form, nil
	}

	fh := headers[0]
	file, err := fh.Open()
	if err != nil {
		r.MultipartForm.RemoveAll()
		return nil, fmt.Errorf("%w: failed to open upload: %w", services.ErrImageIO, err)
	}
	form.file = file
	form.upload = &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		File:        file,
	}
	return form, nil
}

func parseJSON(r *http.Request) (*requestForm, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, classifyBodyError(err)
	}

	values := url.Values{}
	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
		case []any:
			for _, item := range v {
				if s, ok := scalarString(item); ok {
					values.Add(key, s)
				}
			}
		default:
			if s, ok := scalarString(v); ok {
				values.Set(key, s)
			}
		}
	}
	return &requestForm{values: values}, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func classifyBodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large") {
		return errBodyTooLarge
	}
	return fmt.Errorf("failed to parse request body: %w", err)
}

func (f *requestForm) close() {
	if f == nil {
		return
	}
	if f.file != nil {
		f.file.Close()
	}
	if f.multipart != nil {
		f.multipart.RemoveAll()
	}
}

// str returns the first value of key as sent, nil when absent or empty.
func (f *requestForm) str(key string) *string {
	v := f.values.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// number parses key as a float, nil when absent or empty.
func (f *requestForm) number(model, key string) (*float64, error) {
	v := f.str(key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, services.NewCastError(model, key, "Number", *v)
	}
	return &n, nil
}

// list collects repeated values of key and key[], dropping empty entries.
func (f *requestForm) list(key string) []string {
	out := []string{}
	for _, k := range []string{key, key + "[]"} {
		for _, v := range f.values[k] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// respondFormError reports a body that could not be parsed.
func respondFormError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Request body rejected")
		respondError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, services.ErrImageIO):
		respondWriteError(w, r, err, "Failed to open upload")
	default:
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Malformed request body")
		respondError(w, err.Error(), http.StatusBadRequest)
	}
}
