package dispatch

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Payload is the structured body produced by decoding. Multipart
// decoding additionally attaches the per-file upload results under the
// "files" key.
type Payload map[string]any

// filesKey is the payload key carrying multipart upload results.
const filesKey = "files"

// Files returns the upload results attached by multipart decoding, or
// nil when the payload carries none.
func (p Payload) Files() []UploadResult {
	if results, ok := p[filesKey].([]UploadResult); ok {
		return results
	}
	return nil
}

// UploadResult is the per-file outcome record produced by multipart
// decoding: the destination path the part was written to, and the
// write error if persistence failed. Results appear in the payload in
// the exact order parts were received and are never mutated afterwards.
type UploadResult struct {
	// File is the destination path in the upload directory.
	File string

	// Err is the write failure, if any. A failed write does not abort
	// processing of the remaining parts.
	Err error
}

// Decoder turns accumulated raw request bytes into a Payload according
// to the declared content type. Decode-time errors are recovered
// locally: a malformed body never reaches the application handler as
// an error.
type Decoder struct {
	uploadDir string
}

// NewDecoder returns a decoder persisting multipart file parts into
// uploadDir.
func NewDecoder(uploadDir string) *Decoder {
	return &Decoder{uploadDir: uploadDir}
}

// Decode produces the structured payload for one request body. For
// methods that may not carry a body the payload is always empty,
// regardless of actual stream content.
func (d *Decoder) Decode(method, contentType string, body []byte) Payload {
	if !methodHasBody(method) {
		return Payload{}
	}

	switch {
	case contentType == "":
		return Payload{}
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return decodeForm(body)
	case strings.HasPrefix(contentType, "application/json"):
		return decodeJSON(body)
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return d.decodeMultipart(contentType, body)
	}

	// Unsupported content types decode to an empty payload, the same
	// policy as the absent-header branch.
	return Payload{}
}

// methodHasBody reports whether the method may carry a request body
// the decoder should consume. Per RFC 9110 Section 9.3.1, GET-like
// request content has no defined semantics.
func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// decodeForm parses an application/x-www-form-urlencoded body
// (https://url.spec.whatwg.org/#application/x-www-form-urlencoded).
// Pairs split on the first "=", values are percent-decoded, and pairs
// with an empty key are discarded, which guards against a trailing "&".
func decodeForm(body []byte) Payload {
	payload := Payload{}
	for pair := range strings.SplitSeq(string(body), "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		payload[key] = value
	}
	return payload
}

// decodeJSON parses an application/json body. A parse failure yields
// an empty payload rather than propagating; this is a deliberate
// recoverable-error policy. Non-object JSON values also yield an empty
// payload since the contract is a field-name mapping.
func decodeJSON(body []byte) Payload {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}
	}
	payload := make(Payload, len(fields))
	for key, value := range fields {
		payload[key] = value
	}
	return payload
}
