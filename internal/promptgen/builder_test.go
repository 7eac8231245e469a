package promptgen

import (
	"strings"
	"testing"

	"trainforge/internal/domain"
	"trainforge/internal/outputs"
)

func mustConfig(t *testing.T, id string) outputs.Config {
	t.Helper()
	cfg, ok := outputs.ByID(id)
	if !ok {
		t.Fatalf("unknown output config %q", id)
	}
	return cfg
}

func textOf(p Prompt) string {
	var b strings.Builder
	for _, part := range p.Parts {
		if part.Inline == nil {
			b.WriteString(part.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func TestBuildSystemInstruction(t *testing.T) {
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "guide.txt", MIME: "text/plain", Data: []byte("x")},
		domain.FileTypeText,
		domain.ExtractedContent{Kind: domain.KindText, Text: "Safety first."},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	cfg := mustConfig(t, outputs.IDQuiz)
	p := Build(pf, cfg, "")
	if !strings.Contains(p.SystemInstruction, cfg.Fragment) {
		t.Error("system instruction missing the output fragment")
	}
	for _, required := range []string{
		"sole source of truth",
		"self-contained",
		"window.print()",
		"<!DOCTYPE html>",
	} {
		if !strings.Contains(p.SystemInstruction, required) {
			t.Errorf("system instruction missing %q", required)
		}
	}
}

func TestBuildCSVPrompt(t *testing.T) {
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "sales.csv", MIME: "text/csv", Data: []byte("x")},
		domain.FileTypeCSV,
		domain.ExtractedContent{
			Kind: domain.KindData,
			Text: "Data file: sales.csv",
			Table: &domain.Table{
				Headers: []string{"name", "signups", "revenue"},
				Rows: []domain.Row{
					{"name": "acme", "signups": float64(12), "revenue": float64(99.5)},
					{"name": "globex", "signups": float64(7), "revenue": float64(42)},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	p := Build(pf, mustConfig(t, outputs.IDQuiz), "")
	text := textOf(p)
	if !strings.Contains(text, "PRIMARY DATA TABLE") {
		t.Error("missing PRIMARY DATA TABLE block")
	}
	if !strings.Contains(text, "Total Rows: 2") {
		t.Error("missing total row count")
	}
	if !strings.Contains(text, `name="acme" signups="12" revenue="99.5"`) {
		t.Errorf("row 1 not rendered in header order: %q", text)
	}
	if i, j := strings.Index(text, `name="acme"`), strings.Index(text, `name="globex"`); i < 0 || j < 0 || i > j {
		t.Error("rows not in original order")
	}
	if strings.Contains(text, "more rows") {
		t.Error("truncation note emitted without truncation")
	}
}

func TestBuildExtraInstructionsAndSentinels(t *testing.T) {
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "notes.md", MIME: "text/markdown", Data: []byte("x")},
		domain.FileTypeMarkdown,
		domain.ExtractedContent{Kind: domain.KindText, Text: "## Rules\nAlways wear gloves."},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	p := Build(pf, mustConfig(t, outputs.IDFlashcards), "Focus on the rules section")
	text := textOf(p)
	if !strings.Contains(text, "Focus on the rules section") {
		t.Error("extra instructions not carried")
	}
	if !strings.Contains(text, "===== PRIMARY SOURCE: notes.md =====") ||
		!strings.Contains(text, "===== END PRIMARY SOURCE: notes.md =====") {
		t.Error("primary source sentinels missing")
	}
}

func TestBuildPDFInlinesFirstFivePagesOnly(t *testing.T) {
	img := &domain.InlineImage{MIMEType: "image/png", Data: []byte{1}}
	var pages []domain.Page
	for i := 1; i <= 8; i++ {
		pages = append(pages, domain.Page{Number: i, Text: "page text", Image: img})
	}
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "manual.pdf", MIME: "application/pdf", Data: []byte("x")},
		domain.FileTypePDF,
		domain.ExtractedContent{Kind: domain.KindPages, Pages: pages, Text: "[Page 1] page text"},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	p := Build(pf, mustConfig(t, outputs.IDWalkthrough), "")
	inlineCount := 0
	for _, part := range p.Parts {
		if part.Inline != nil {
			inlineCount++
		}
	}
	if inlineCount != maxInlinePages {
		t.Errorf("inline page images = %d, want %d", inlineCount, maxInlinePages)
	}
	text := textOf(p)
	for i := 1; i <= 8; i++ {
		if !strings.Contains(text, "--- PAGE "+string(rune('0'+i))+" ---") {
			t.Errorf("missing page header for page %d", i)
		}
	}
}

func TestBuildImagePrompt(t *testing.T) {
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "panel.jpg", MIME: "image/jpeg", Data: []byte{1, 2}},
		domain.FileTypeImage,
		domain.ExtractedContent{
			Kind:  domain.KindImage,
			Image: &domain.InlineImage{MIMEType: "image/jpeg", Data: []byte{1, 2}},
		},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	p := Build(pf, mustConfig(t, outputs.IDHotspot), "")
	text := textOf(p)
	if !strings.Contains(text, "IMAGE FILE: panel.jpg") {
		t.Error("missing IMAGE FILE block")
	}
	last := p.Parts[len(p.Parts)-1]
	if last.Inline == nil || last.Inline.MIMEType != "image/jpeg" {
		t.Error("image must be attached as the final inline part")
	}
}

func TestBuildOmitsAbsentSegments(t *testing.T) {
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: "a.txt", MIME: "text/plain", Data: []byte("x")},
		domain.FileTypeText,
		domain.ExtractedContent{Kind: domain.KindText, Text: "hello"},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	p := Build(pf, mustConfig(t, outputs.IDQuiz), "")
	text := textOf(p)
	for _, banned := range []string{"PRIMARY DATA TABLE", "--- PAGE", "VIDEO KEYFRAMES", "IMAGE FILE"} {
		if strings.Contains(text, banned) {
			t.Errorf("segment %q emitted for a plain text file", banned)
		}
	}
	for _, part := range p.Parts {
		if part.Inline != nil {
			t.Error("no inline parts expected for plain text")
		}
	}
}
