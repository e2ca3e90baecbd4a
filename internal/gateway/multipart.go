package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// formField is one part of a multipart body. Exactly one of value or file is used.
type formField struct {
	name  string
	value string
	file  *domain.FileUpload
}

// encodeForm buffers fields into a multipart body and returns it with its
// content type.
func encodeForm(fields ...formField) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.file == nil {
			if err := w.WriteField(f.name, f.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.name), quoteEscaper.Replace(f.file.Filename)))
		ct := f.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.name, err)
		}
		if _, err := part.Write(f.file.Content); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
