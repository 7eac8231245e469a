package outputs

import (
	"testing"

	"trainforge/internal/domain"
)

func TestApplicableForImage(t *testing.T) {
	configs := ApplicableFor(domain.FileTypeImage)
	if len(configs) == 0 {
		t.Fatal("no configs applicable to image")
	}
	for _, cfg := range configs {
		if cfg.ID == AutoID {
			t.Error("ApplicableFor must never include the auto entry")
		}
		found := false
		for _, input := range cfg.Inputs {
			if input == domain.FileTypeImage {
				found = true
			}
		}
		if !found {
			t.Errorf("config %q listed for image but image not in its inputs", cfg.ID)
		}
	}
}

func TestApplicableForPreservesDeclarationOrder(t *testing.T) {
	configs := ApplicableFor(domain.FileTypeText)
	all := All()
	idx := map[string]int{}
	for i, cfg := range all {
		idx[cfg.ID] = i
	}
	for i := 0; i < len(configs)-1; i++ {
		if idx[configs[i].ID] > idx[configs[i+1].ID] {
			t.Fatalf("applicable configs out of declaration order: %q before %q", configs[i].ID, configs[i+1].ID)
		}
	}
}

func TestByID(t *testing.T) {
	for _, cfg := range All() {
		got, ok := ByID(cfg.ID)
		if !ok || got.ID != cfg.ID {
			t.Errorf("ByID(%q) = %v, %v", cfg.ID, got.ID, ok)
		}
		if got.Fragment == "" {
			t.Errorf("config %q has no prompt fragment", cfg.ID)
		}
	}
	autoCfg, ok := ByID(AutoID)
	if !ok {
		t.Fatal("ByID(auto) not found")
	}
	if autoCfg.Fragment != "" {
		t.Error("auto entry must not carry a prompt fragment")
	}
	if _, ok := ByID("definitely-not-a-kind"); ok {
		t.Error("ByID accepted an unknown id")
	}
}

func TestEveryFileTypeHasAnOutput(t *testing.T) {
	for _, ft := range domain.AllFileTypes {
		if len(ApplicableFor(ft)) == 0 {
			t.Errorf("file type %q has no applicable outputs", ft)
		}
	}
}

func TestIsConcrete(t *testing.T) {
	if IsConcrete(AutoID) {
		t.Error("auto must not count as concrete")
	}
	if !IsConcrete(IDQuiz) {
		t.Error("quiz must be concrete")
	}
	if got := len(All()); got != 9 {
		t.Errorf("concrete kinds = %d, want 9", got)
	}
}
