package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/aretw0/assist/pkg/domain"
)

var errFileUnreadable = errors.New("file could not be read")

// part is one multipart field. File parts with no file are skipped.
type part struct {
	Name   string
	Text   string
	File   *domain.UploadedFile
	isFile bool
}

func textPart(name, value string) part {
	return part{Name: name, Text: value}
}

func filePart(name string, f *domain.UploadedFile) part {
	return part{Name: name, File: f, isFile: true}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart buffers the form so the request carries a Content-Length.
// Files keep their declared type instead of the octet-stream default of CreateFormFile.
func encodeMultipart(parts []part) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.isFile && p.File == nil {
			continue
		}
		if !p.isFile {
			if err := w.WriteField(p.Name, p.Text); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := writeFile(w, p.Name, p.File); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *domain.UploadedFile) error {
	if f.Open == nil {
		return fmt.Errorf("%w: %s has no content", errFileUnreadable, f.Name)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	contentType := f.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	dst, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errFileUnreadable, f.Name, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: %s: %v", errFileUnreadable, f.Name, err)
	}
	return nil
}
