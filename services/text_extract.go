package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var supportedBookExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".epub": true,
}

// SupportedBookExtension reports whether a filename carries one of the
// accepted upload formats.
func SupportedBookExtension(filename string) bool {
	return supportedBookExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ExtractBookText pulls the plain text out of an uploaded book file
// based on its extension.
func ExtractBookText(filename string, fileContent []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDFText(fileContent)
	case ".txt":
		return extractPlainText(fileContent), nil
	case ".epub":
		return extractEPUBText(fileContent)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

func extractPDFText(fileContent []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(fileContent), int64(len(fileContent)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		t, err := p.GetPlainText(fonts)
		if err != nil {
			continue
		}
		b.WriteString(t)
		b.WriteString("\n\n")
	}

	text := normalizeWhitespace(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text in PDF")
	}
	return text, nil
}

func extractPlainText(fileContent []byte) string {
	if !utf8.Valid(fileContent) {
		// Replace undecodable bytes rather than rejecting the file.
		fileContent = bytes.ToValidUTF8(fileContent, []byte("�"))
	}
	return normalizeWhitespace(string(fileContent))
}

// extractEPUBText walks the EPUB archive in spine-ish order (sorted
// content paths) and strips each XHTML document down to its text.
func extractEPUBText(fileContent []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(fileContent), int64(len(fileContent)))
	if err != nil {
		return "", fmt.Errorf("failed to open EPUB archive: %w", err)
	}

	var contentFiles []*zip.File
	for _, f := range zr.File {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext == ".xhtml" || ext == ".html" || ext == ".htm" {
			contentFiles = append(contentFiles, f)
		}
	}
	if len(contentFiles) == 0 {
		return "", fmt.Errorf("no readable content in EPUB")
	}
	sort.Slice(contentFiles, func(i, j int) bool { return contentFiles[i].Name < contentFiles[j].Name })

	var b strings.Builder
	for _, f := range contentFiles {
		rc, err := f.Open()
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(rc)
		rc.Close()
		if err != nil {
			continue
		}
		doc.Find("script, style").Remove()
		b.WriteString(doc.Find("body").Text())
		b.WriteString("\n\n")
	}

	text := normalizeWhitespace(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text in EPUB")
	}
	return text, nil
}

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
