package glpitest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

var errInputMissing = errors.New("input is missing")

type itemInput struct {
	records []glpi.Record
	many    bool
}

// readBody reads the request body and puts it back for the handler.
func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()

	if err != nil {
		body = nil
	}

	r.Body = io.NopCloser(bytes.NewReader(body))

	return body
}

func decodeBody(r *http.Request, out any) error {
	err := json.NewDecoder(r.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

// decodeInput reads a {"input": object|array} write payload.
func decodeInput(r *http.Request) (itemInput, error) {
	var envelope struct {
		Input json.RawMessage `json:"input"`
	}

	err := decodeBody(r, &envelope)
	if err != nil {
		return itemInput{}, err
	}

	raw := bytes.TrimSpace(envelope.Input)
	if len(raw) == 0 {
		return itemInput{}, errInputMissing
	}

	if raw[0] == '[' {
		var records []glpi.Record

		err = json.Unmarshal(raw, &records)
		if err != nil {
			return itemInput{}, fmt.Errorf("decoding input: %w", err)
		}

		return itemInput{records: records, many: true}, nil
	}

	var record glpi.Record

	err = json.Unmarshal(raw, &record)
	if err != nil {
		return itemInput{}, fmt.Errorf("decoding input: %w", err)
	}

	return itemInput{records: []glpi.Record{record}}, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set(glpi.HeaderContentType, glpi.ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError writes the ["ERROR_CODE", "message"] body GLPI uses.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, []string{code, message})
}
