// Package extract turns uploaded resume bytes into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	DocNotSupportedText   = "DOC file format not fully supported. Please convert to DOCX or PDF for better results."
	UnsupportedFormatText = "Unsupported file format for text extraction."
)

// ErrParse marks bytes that could not be parsed as their declared type.
var ErrParse = errors.New("parse failed")

// Result is the outcome of a successful extraction. PageCount is only set for PDFs.
type Result struct {
	Text      string
	PageCount *int
	Duration  time.Duration
}

// Extractor is the default text extractor.
type Extractor struct{}

func New() Extractor { return Extractor{} }

// Extract parses data according to contentType. Legacy DOC and unknown types
// yield a fixed explanatory text rather than an error.
func (Extractor) Extract(ctx context.Context, data []byte, contentType string) (Result, error) {
	return Extract(ctx, data, contentType)
}

// Extract is the package-level form of Extractor.Extract.
func Extract(ctx context.Context, data []byte, contentType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	var (
		res Result
		err error
	)
	switch NormalizeContentType(contentType, data) {
	case MimePDF:
		res, err = extractPDF(data)
	case MimeDOCX:
		res, err = extractDOCX(data)
	case MimeDOC:
		res = Result{Text: DocNotSupportedText}
	default:
		res = Result{Text: UnsupportedFormatText}
	}
	if err != nil {
		return Result{}, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

func extractPDF(data []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: pdf parser panic: %v", ErrParse, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read pdf: %v", ErrParse, err)
	}

	pages := reader.NumPage()
	var buf strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Result{}, fmt.Errorf("%w: page %d: %v", ErrParse, i, err)
		}
		buf.WriteString(text)
		if i < pages {
			buf.WriteString("\n")
		}
	}
	return Result{Text: strings.TrimSpace(buf.String()), PageCount: &pages}, nil
}

func extractDOCX(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty docx data", ErrParse)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read docx: %v", ErrParse, err)
	}
	defer doc.Close()

	text, err := stripDocxXML(doc.Editable().GetContent())
	if err != nil {
		return Result{}, fmt.Errorf("%w: docx body: %v", ErrParse, err)
	}
	return Result{Text: text}, nil
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// NormalizeContentType strips parameters and maps generic zip uploads that
// are really DOCX files onto the DOCX type.
func NormalizeContentType(contentType string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if clean != "application/zip" && clean != "application/octet-stream" {
		return clean
	}
	if isDOCXArchive(data) {
		return MimeDOCX
	}
	return clean
}

func isDOCXArchive(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
