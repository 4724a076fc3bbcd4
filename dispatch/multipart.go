package dispatch

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// decodeMultipart parses a multipart/form-data body (RFC 7578) without
// relying on mime/multipart: the raw body is split on CRLF-delimited
// lines and lines between boundary markers are grouped into parts.
// File parts are persisted strictly sequentially, one part at a time,
// so the upload results appear in the exact order parts were received.
// A write failure is recorded per file and does not abort the
// remaining parts.
func (d *Decoder) decodeMultipart(contentType string, body []byte) Payload {
	payload := Payload{}
	results := []UploadResult{}

	boundary, ok := boundaryParam(contentType)
	if !ok {
		payload[filesKey] = results
		return payload
	}

	delimiter := "--" + boundary
	closer := delimiter + "--"

	lines := strings.Split(string(body), "\r\n")
	var part []string
	inPart := false

	flush := func() {
		if !inPart {
			return
		}
		name, filename, content := parsePart(part)
		if filename != "" || hasFilenameParam(part) {
			results = append(results, d.persistPart(filename, content))
		} else if name != "" {
			payload[name] = strings.TrimSpace(content)
		}
		part = part[:0]
	}

	for _, line := range lines {
		switch line {
		case closer:
			flush()
			inPart = false
		case delimiter:
			flush()
			inPart = true
		default:
			if inPart {
				part = append(part, line)
			}
		}
	}
	flush()

	payload[filesKey] = results
	return payload
}

// persistPart writes one file part to the upload directory. When the
// part declares no filename, the current unix timestamp is used so the
// destination never has an empty name.
func (d *Decoder) persistPart(filename, content string) UploadResult {
	if filename == "" {
		filename = strconv.FormatInt(time.Now().Unix(), 10)
	}

	dest := filepath.Join(d.uploadDir, filename)
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return UploadResult{File: dest, Err: err}
	}
	return UploadResult{File: dest}
}

// parsePart splits a part's lines into its header block and content
// body on the first blank line, and extracts the name and filename
// parameters from the Content-Disposition header field
// (RFC 7578 Section 4.2).
func parsePart(lines []string) (name, filename, content string) {
	split := len(lines)
	for i, line := range lines {
		if line == "" {
			split = i
			break
		}
	}

	for _, header := range lines[:split] {
		if !isDispositionHeader(header) {
			continue
		}
		name = dispositionParam(header, "name")
		filename = dispositionParam(header, "filename")
	}

	if split < len(lines) {
		content = strings.Join(lines[split+1:], "\r\n")
	}
	return name, filename, content
}

// hasFilenameParam reports whether the part's header block declares a
// filename parameter at all, covering parts that declare an empty
// filename and must still be treated as file uploads.
func hasFilenameParam(lines []string) bool {
	for _, line := range lines {
		if line == "" {
			return false
		}
		if isDispositionHeader(line) && strings.Contains(line, "filename=") {
			return true
		}
	}
	return false
}

// isDispositionHeader reports whether the line is a Content-Disposition
// header field. Field names are case-insensitive per RFC 9110
// Section 5.1.
func isDispositionHeader(line string) bool {
	const prefix = "content-disposition:"
	return len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix)
}

// dispositionParam extracts one quoted parameter value from a
// Content-Disposition header line, e.g. name="field1". The match must
// sit at a parameter boundary so that "name" never matches inside
// "filename".
func dispositionParam(header, key string) string {
	marker := key + `="`
	offset := 0
	for {
		idx := strings.Index(header[offset:], marker)
		if idx < 0 {
			return ""
		}
		start := offset + idx
		if start > 0 && header[start-1] != ' ' && header[start-1] != ';' {
			offset = start + len(marker)
			continue
		}
		rest := header[start+len(marker):]
		end := strings.Index(rest, `"`)
		if end < 0 {
			return ""
		}
		return rest[:end]
	}
}

// boundaryParam extracts the boundary token from a multipart
// content-type header value (RFC 2046 Section 5.1.1). Both quoted and
// bare boundary parameters are accepted.
func boundaryParam(contentType string) (string, bool) {
	const marker = "boundary="
	start := strings.Index(contentType, marker)
	if start < 0 {
		return "", false
	}

	boundary := contentType[start+len(marker):]
	if semi := strings.Index(boundary, ";"); semi >= 0 {
		boundary = boundary[:semi]
	}
	boundary = strings.Trim(strings.TrimSpace(boundary), `"`)
	if boundary == "" {
		return "", false
	}
	return boundary, true
}
