package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) error {
	WriteFileHeaders(w, name)
	_, err := io.Copy(w, in)
	return err
}

func WriteJson(w http.ResponseWriter, data interface{}) error {
	res, err := json.Marshal(data)
	if err != nil {
		return WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to marshal"))
	}
	w.Header().Set("Content-Type", "application/json")
	return WriteResult(w, res)
}

func WriteJsonFile(w http.ResponseWriter, v interface{}, fileName string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to marshal"))
	}
	return WriteFile(w, bytes.NewReader(data), fileName+".json")
}

// ReadJson decodes a POST or PUT request body into v.
func ReadJson(r *http.Request, v interface{}) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return errors.Errorf("Invalid http method %q", r.Method)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(err, "Failed to unmarshal")
	}
	return nil
}

func WriteResult(w http.ResponseWriter, data []byte) error {
	_, err := w.Write(data)
	return err
}

func WriteError(w http.ResponseWriter, code int, err error) error {
	type jError struct {
		Error string `json:"error"`
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		return merr
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return WriteResult(w, data)
}
