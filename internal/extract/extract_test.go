package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>jane@example.com</w:t></w:r></w:p>
<w:p><w:r><w:t>Experience</w:t></w:r><w:r><w:tab/><w:t>Backend Engineer</w:t></w:r></w:p>
</w:body>
</w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func validDOCX(t *testing.T) []byte {
	return buildDOCX(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	})
}

func TestExtractDOCX(t *testing.T) {
	res, err := Extract(context.Background(), validDOCX(t), MimeDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, want := range []string{"Jane Doe", "jane@example.com", "Experience\tBackend Engineer"} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("expected %q in %q", want, res.Text)
		}
	}
	if res.PageCount != nil {
		t.Fatalf("expected nil page count for docx, got %d", *res.PageCount)
	}
}

func TestExtractZipDeclaredDOCXNormalizes(t *testing.T) {
	res, err := Extract(context.Background(), validDOCX(t), "application/zip")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(res.Text, "Jane Doe") {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestExtractFixedTexts(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{name: "legacy doc", contentType: MimeDOC, want: DocNotSupportedText},
		{name: "plain text", contentType: "text/plain", want: UnsupportedFormatText},
		{name: "real zip", contentType: "application/zip", want: UnsupportedFormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(context.Background(), []byte("whatever"), tt.contentType)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if res.Text != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, res.Text)
			}
			if res.PageCount != nil {
				t.Fatalf("expected nil page count")
			}
		})
	}
}

func TestExtractParseFailures(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{name: "corrupt pdf", data: []byte("definitely not a pdf"), contentType: MimePDF},
		{name: "truncated pdf", data: []byte("%PDF-1.4\n1 0 obj\n"), contentType: MimePDF},
		{name: "empty docx", data: nil, contentType: MimeDOCX},
		{name: "corrupt docx", data: []byte("PK not really"), contentType: MimeDOCX},
		{name: "docx without body", data: buildDOCX(t, map[string]string{"notes.txt": "hi"}), contentType: MimeDOCX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(context.Background(), tt.data, tt.contentType)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if res.Text != "" {
				t.Fatalf("expected no text on failure, got %q", res.Text)
			}
		})
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Extract(ctx, validDOCX(t), MimeDOCX); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeContentType(t *testing.T) {
	if got := NormalizeContentType("Application/PDF; charset=binary", nil); got != MimePDF {
		t.Fatalf("unexpected %q", got)
	}
	if got := NormalizeContentType("application/octet-stream", validDOCX(t)); got != MimeDOCX {
		t.Fatalf("unexpected %q", got)
	}
}
