package segment

import (
	"testing"

	"github.com/dgallion1/secseg/internal/semantic"
)

func TestClassifyText_RuleTable(t *testing.T) {
	c := NewClassifier(DefaultParams())

	tests := []struct {
		name     string
		text     string
		ctx      Context
		wantType semantic.Type
		wantConf float64
	}{
		{"item heading", "Item 1.01 Entry into a Material Definitive Agreement", Context{}, semantic.SectionTitle, 0.95},
		{"lettered subheader", "(a) Dismissal of Independent Accountant", Context{}, semantic.SectionTitle, 0.8},
		{"numbered subheader", "(1) Basis of Presentation", Context{}, semantic.SectionTitle, 0.8},
		{"roman subheader", "(iv) Restructuring Charges", Context{}, semantic.SectionTitle, 0.8},
		{"dotted subheader", "1. Overview of Results", Context{}, semantic.SectionTitle, 0.8},
		{"all caps heading", "FORWARD-LOOKING STATEMENTS", Context{}, semantic.SectionTitle, 0.75},
		{"paragraph", "The Registrant entered into an agreement with the lenders named therein.", Context{}, semantic.Paragraph, 0.9},
		{"note supplementary", "Note: all amounts are unaudited", Context{}, semantic.SupplementaryText, 0.7},
		{"see accompanying", "See accompanying notes to the financial statements.", Context{}, semantic.SupplementaryText, 0.7},
		{"asterisk footnote", "* Excludes one-time charges", Context{}, semantic.SupplementaryText, 0.7},
		{"parenthetical", "(in thousands, except per share data)", Context{}, semantic.SupplementaryText, 0.7},
		{"short label", "Exhibit 99.1", Context{}, semantic.SupplementaryText, 0.7},
		{"short punctuated response", "None.", Context{}, semantic.SupplementaryText, 0.7},
		{"short punctuated sentence", "No exhibits are filed.", Context{}, semantic.SupplementaryText, 0.7},
		{"long unpunctuated", "a long run of text without any terminal punctuation that keeps going and going beyond the supplementary threshold", Context{}, semantic.Text, 0.5},
		{"fragment in mixed content", "the registrant previously", Context{MixedContent: true}, semantic.Text, 0.5},
		{"sentence fragment in mixed content", "as disclosed elsewhere.", Context{MixedContent: true}, semantic.Text, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, conf, ok := c.ClassifyText(tt.text, tt.ctx)
			if !ok {
				t.Fatalf("expected classification for %q", tt.text)
			}
			if typ != tt.wantType {
				t.Errorf("expected %s, got %s", tt.wantType, typ)
			}
			if conf != tt.wantConf {
				t.Errorf("expected confidence %v, got %v", tt.wantConf, conf)
			}
		})
	}
}

func TestClassifyText_EmptyDropped(t *testing.T) {
	c := NewClassifier(DefaultParams())
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, _, ok := c.ClassifyText(text, Context{}); ok {
			t.Errorf("expected %q to be dropped", text)
		}
	}
}

func TestClassifyText_ItemWithTerminalPunctIsParagraph(t *testing.T) {
	c := NewClassifier(DefaultParams())
	typ, _, ok := c.ClassifyText("Item 1.01 of the Credit Agreement provides for an extension of the maturity date.", Context{})
	if !ok || typ != semantic.Paragraph {
		t.Errorf("expected PARAGRAPH for a sentence mentioning an item, got %s", typ)
	}
}

func TestClassifyText_EmphasizedHeadingScaling(t *testing.T) {
	c := NewClassifier(DefaultParams())

	// Short and title-cased: both bonuses apply.
	typ, conf, ok := c.ClassifyText("Results of Operations", Context{Emphasized: true})
	if !ok || typ != semantic.SectionTitle {
		t.Fatalf("expected SECTION_TITLE, got %s", typ)
	}
	if conf != 0.8 {
		t.Errorf("expected scaled confidence 0.8, got %v", conf)
	}

	// Short but not title-cased: one tier above base, as an exact value.
	typ, conf, ok = c.ClassifyText("overview of operations", Context{Emphasized: true})
	if !ok || typ != semantic.SectionTitle {
		t.Fatalf("expected SECTION_TITLE, got %s", typ)
	}
	if conf != 0.7 {
		t.Errorf("expected middle tier confidence 0.7, got %v", conf)
	}

	// Many words and not title-cased: base confidence only.
	long := "overview of the various contractual arrangements entered into by the registrant during the quarter"
	typ, conf, ok = c.ClassifyText(long, Context{Emphasized: true})
	if !ok || typ != semantic.SectionTitle {
		t.Fatalf("expected SECTION_TITLE, got %s", typ)
	}
	if conf != 0.6 {
		t.Errorf("expected base confidence 0.6, got %v", conf)
	}
}

func TestClassifyText_TieBreakOrderIsFixed(t *testing.T) {
	// "Note 1. Summary" matches both the footnote-marker rule and the
	// dotted-subheader shape; the title rules come first, but the subheader
	// regex requires the marker at the start, so the footnote prefix wins
	// here. What matters is determinism.
	c := NewClassifier(DefaultParams())
	typ1, conf1, _ := c.ClassifyText("Note 1. Summary", Context{})
	for i := 0; i < 10; i++ {
		typ2, conf2, _ := c.ClassifyText("Note 1. Summary", Context{})
		if typ1 != typ2 || conf1 != conf2 {
			t.Fatalf("classification not deterministic: %s/%v vs %s/%v", typ1, conf1, typ2, conf2)
		}
	}
}

func TestParams_Defaults(t *testing.T) {
	p := Params{}.withDefaults()
	if p.TitleMaxLen != 120 || p.TitleMaxWords != 10 || p.SupplementaryMaxLen != 40 {
		t.Errorf("unexpected defaults: %+v", p)
	}

	// Explicit values survive.
	p = Params{TitleMaxLen: 80}.withDefaults()
	if p.TitleMaxLen != 80 {
		t.Errorf("expected explicit TitleMaxLen to survive, got %d", p.TitleMaxLen)
	}
	if p.TitleMaxWords != 10 {
		t.Errorf("expected default TitleMaxWords, got %d", p.TitleMaxWords)
	}
}
