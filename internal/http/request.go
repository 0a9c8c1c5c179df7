package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cantiere/internal/core"
)

// Request body caps. JSON bodies are small; receipt uploads carry whole
// scanned documents.
const (
	maxJSONBody   = 1 << 20  // 1 MB
	maxUploadSize = 10 << 20 // 10 MB
)

var (
	errBadRequest     = errors.New("malformed request body")
	errUploadTooLarge = fmt.Errorf("upload larger than %d bytes", maxUploadSize)
)

// decodeJSON reads one JSON value from the request body. Validation
// sentinels raised by custom unmarshalers (amounts, hours, dates) pass
// through so the caller answers 422; anything else malformed is a 400.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// readUpload pulls the uploaded document out of a multipart form. The field
// is named "file"; the stored filename comes from the upload itself.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, errUploadTooLarge
		}
		return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: missing file field", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}
