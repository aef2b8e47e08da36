package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/assist/pkg/domain"
)

// MaxHelpDocumentSize is the size ceiling of help-request attachments (5 MiB).
const MaxHelpDocumentSize = 5 * 1024 * 1024

// Policy is the allow-list a file must satisfy before it enters a form slot.
// Checks use metadata only (extension, declared type, size); the content is never parsed.
type Policy struct {
	// Extensions lists accepted extensions with the leading dot, compared case-insensitively.
	Extensions []string
	// MIMETypes lists accepted declared types. Empty means any.
	MIMETypes []string
	// MaxSize is the byte ceiling. Zero means unlimited.
	MaxSize int64
	// Message overrides the rejection text for type mismatches.
	Message string
}

// ImagePolicy accepts the image formats used for profile pictures and NGO logos.
var ImagePolicy = Policy{
	Extensions: []string{".png", ".jpg", ".jpeg", ".gif"},
	Message:    "Please upload a valid image file (PNG, JPG, GIF, JPEG)",
}

// VerificationPolicy accepts images plus PDF for identity verification documents.
var VerificationPolicy = Policy{
	Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".pdf"},
	Message:    "Please upload a valid image or PDF file (PNG, JPG, GIF, JPEG, PDF)",
}

// HelpDocumentPolicy accepts the supporting documents of a help request.
// Only the declared type and size are checked; the name may have any extension.
var HelpDocumentPolicy = Policy{
	MIMETypes:  []string{"application/pdf", "image/jpeg", "image/png"},
	MaxSize:    MaxHelpDocumentSize,
	Message:    "Invalid file type. Please upload PDF, JPEG, or PNG files only.",
}

// Check reports why a file does not satisfy the policy. The error wraps domain.ErrFileRejected.
func (p Policy) Check(f *domain.UploadedFile) error {
	if f == nil {
		return fmt.Errorf("%w: no file selected", domain.ErrFileRejected)
	}
	if len(p.Extensions) > 0 && !containsFold(p.Extensions, f.Ext()) {
		return fmt.Errorf("%w: %s", domain.ErrFileRejected, p.typeMessage())
	}
	if len(p.MIMETypes) > 0 && !containsFold(p.MIMETypes, baseType(f.MIMEType)) {
		return fmt.Errorf("%w: %s", domain.ErrFileRejected, p.typeMessage())
	}
	if p.MaxSize > 0 && f.Size > p.MaxSize {
		return fmt.Errorf("%w: File size too large. Maximum allowed size is %s.", domain.ErrFileRejected, humanSize(p.MaxSize))
	}
	return nil
}

// Accept stores f in the field slot when it passes the policy and clears the field's error.
// On rejection the slot is left untouched and errs[field] is set.
// errs may be nil, in which case only the returned error reports the rejection.
func (p Policy) Accept(state *domain.FormState, field string, f *domain.UploadedFile, errs domain.ValidationResult) error {
	if err := p.Check(f); err != nil {
		if errs != nil {
			errs[field] = Reason(err)
		}
		return err
	}
	state.SetFile(field, f)
	if errs != nil {
		delete(errs, field)
	}
	return nil
}

// Reason strips the sentinel prefix from a rejection error for display.
func Reason(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrFileRejected.Error()+": ")
}

func (p Policy) typeMessage() string {
	if p.Message != "" {
		return p.Message
	}
	return "unsupported file type"
}

// FromPath describes a file on disk. The MIME type is derived from the extension.
func FromPath(path string) (*domain.UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrFileRejected, path)
	}
	name := filepath.Base(path)
	return &domain.UploadedFile{
		Name:     name,
		MIMEType: TypeByName(name),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes describes an in-memory file.
func FromBytes(name, mimeType string, data []byte) *domain.UploadedFile {
	if mimeType == "" {
		mimeType = TypeByName(name)
	}
	return &domain.UploadedFile{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// TypeByName returns the declared MIME type for a file name, falling back to
// application/octet-stream.
func TypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	// Not every platform's mime table knows these; keep them stable.
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(t))
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
