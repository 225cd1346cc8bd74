package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/casq89/mibauu-backend/pkg/model"
)

// maxFormMemory is the part of a multipart body kept in memory; larger
// uploads spill to temporary files.
const maxFormMemory = 32 << 20

// FieldKind selects how a multipart form value is coerced
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldFloat
	FieldBool
)

// FieldRule coerces one multipart form value. Numbers that do not parse become
// null; booleans are true only for the literal "true".
type FieldRule struct {
	Kind FieldKind
	// Always sets the column on create even when the form omits it, to null
	// or false. Updates only carry the fields the form sends.
	Always bool
}

// FieldRules maps form field names to their coercion
type FieldRules map[string]FieldRule

// input is a parsed request body: column values plus an optional file
type input struct {
	fields model.Record
	file   *multipart.FileHeader
}

// readInput parses the body according to its content type. Multipart forms
// go through rules and may carry a file under fileField; anything else must
// be a JSON object. withDefaults applies the Always rules to omitted fields.
func readInput(r *http.Request, rules FieldRules, fileField string, withDefaults bool) (*input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r, rules, fileField, withDefaults)
	}
	fields, err := readJSONObject(r)
	if err != nil {
		return nil, err
	}
	return &input{fields: fields}, nil
}

func readJSONObject(r *http.Request) (model.Record, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, badRequest("could not read request body: %s", err.Error())
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields model.Record
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, badRequest("request body is required")
		}
		return nil, badRequest("invalid JSON body: %s", err.Error())
	}
	if fields == nil {
		return nil, badRequest("request body must be a JSON object")
	}
	return fields, nil
}

func readMultipart(r *http.Request, rules FieldRules, fileField string, withDefaults bool) (*input, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, badRequest("invalid multipart body: %s", err.Error())
	}

	fields := model.Record{}
	for name, values := range r.MultipartForm.Value {
		if name == fileField || len(values) == 0 {
			continue
		}
		fields[name] = coerce(values[0], rules[name].Kind)
	}
	if withDefaults {
		applyDefaults(fields, rules)
	}

	in := &input{fields: fields}
	if fileField != "" {
		if files := r.MultipartForm.File[fileField]; len(files) > 0 && files[0].Size > 0 {
			in.file = files[0]
		}
	}
	return in, nil
}

// applyDefaults sets every omitted Always field to null, or false for
// booleans.
func applyDefaults(fields model.Record, rules FieldRules) {
	for name, rule := range rules {
		if _, ok := fields[name]; ok || !rule.Always {
			continue
		}
		if rule.Kind == FieldBool {
			fields[name] = false
		} else {
			fields[name] = nil
		}
	}
}

func coerce(value string, kind FieldKind) interface{} {
	switch kind {
	case FieldInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil
		}
		return i
	case FieldFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return f
	case FieldBool:
		return value == "true"
	}
	return value
}

// fileContentType returns the declared type of an uploaded part, falling back
// to the file extension.
func fileContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
