// Package outputs holds the static catalog of training artifact kinds the
// model can be asked to produce. The catalog is process-wide immutable
// configuration: loaded once, never mutated.
package outputs

import (
	"trainforge/internal/domain"
)

// Config describes one training-output kind: which inputs it applies to and
// the instruction block the prompt builder splices into the system prompt.
type Config struct {
	ID          string
	Name        string
	Description string
	Inputs      []domain.FileType
	Fragment    string
}

// AutoID is the synthetic kind that defers the choice to the auto-selector.
// It applies to every input and carries no fragment of its own.
const AutoID = "auto"

const (
	IDQuiz        = "quiz"
	IDFlashcards  = "flashcards"
	IDHotspot     = "hotspot"
	IDWalkthrough = "walkthrough"
	IDScenario    = "scenario"
	IDMatching    = "matching"
	IDSorting     = "sorting"
	IDTimeline    = "timeline"
	IDFillBlank   = "fillblank"
)

var textual = []domain.FileType{
	domain.FileTypeText, domain.FileTypeMarkdown, domain.FileTypeCSV,
	domain.FileTypeExcel, domain.FileTypePDF,
}

// registry declaration order is the display order.
var registry = []Config{
	{
		ID:          IDQuiz,
		Name:        "Knowledge Quiz",
		Description: "Multiple-choice quiz built from facts and figures in the material",
		Inputs:      textual,
		Fragment: `Create a multiple-choice quiz with 8-12 questions drawn strictly from the material.
Each question has one correct answer and three plausible distractors taken from related
facts in the same material. Show one question at a time with a progress bar. Award 10
points per correct answer with immediate right/wrong feedback and a one-line explanation
quoting the source fact. Shuffle answer positions on load.`,
	},
	{
		ID:          IDFlashcards,
		Name:        "Flashcards",
		Description: "Flip-card deck for memorizing terms, definitions, and key facts",
		Inputs:      textual,
		Fragment: `Create a deck of 10-20 flip cards. Front: a term, name, or question from the material;
back: its definition or answer. Cards flip on click with a 3D transition. Include
previous/next navigation, a shuffle button, and a self-assessment toggle (knew it /
didn't know it) that feeds a running mastery percentage.`,
	},
	{
		ID:          IDHotspot,
		Name:        "Image Hotspot Trainer",
		Description: "Identify parts, defects, or regions of interest directly on the image",
		Inputs:      []domain.FileType{domain.FileTypeImage, domain.FileTypePDF},
		Fragment: `Display the provided image and define 4-8 clickable hotspot regions over the features a
trainee must learn to identify (parts, defects, damage, or labeled areas visible in the
image). Each hotspot task names what to find; a correct click within the region scores
15 points and reveals a short explanation, a miss deducts 5 and shows a hint. Track
found/remaining counts.`,
	},
	{
		ID:          IDWalkthrough,
		Name:        "Step-by-Step Walkthrough",
		Description: "Ordered walkthrough of a procedure shown in the material",
		Inputs: []domain.FileType{
			domain.FileTypeVideo, domain.FileTypePDF,
			domain.FileTypeText, domain.FileTypeMarkdown,
		},
		Fragment: `Reconstruct the procedure shown in the material as an ordered sequence of steps, one
screen per step, each with a clear title, a short description, and any cautions present
in the source. After the walkthrough, test recall: present the same steps shuffled and
have the trainee drag them into the correct order, scoring 10 points per correctly
placed step.`,
	},
	{
		ID:          IDScenario,
		Name:        "Branching Scenario",
		Description: "Decision-based simulation with consequences for each choice",
		Inputs: []domain.FileType{
			domain.FileTypeText, domain.FileTypeMarkdown, domain.FileTypePDF,
		},
		Fragment: `Build a branching scenario simulation grounded in the situations described by the
material. Present 5-8 decision points, each with 2-3 choices; every choice leads to a
consequence screen grounded in the material before continuing. Good decisions earn 20
points, acceptable ones 10, poor ones 0 with an explanation of what the material
recommends instead.`,
	},
	{
		ID:          IDMatching,
		Name:        "Matching Pairs",
		Description: "Match related terms, values, or concepts from two columns",
		Inputs: []domain.FileType{
			domain.FileTypeText, domain.FileTypeMarkdown,
			domain.FileTypeCSV, domain.FileTypeExcel,
		},
		Fragment: `Create a matching exercise with 6-10 pairs drawn from the material (term and definition,
item and value, cause and effect). Render two shuffled columns; the trainee clicks one
entry from each column to propose a pair. Correct pairs lock in green for 10 points,
wrong pairs flash red and deduct 2. Finish with a time bonus for completing under two
minutes.`,
	},
	{
		ID:          IDSorting,
		Name:        "Sorting Challenge",
		Description: "Sort items into the categories the material defines",
		Inputs: []domain.FileType{
			domain.FileTypeCSV, domain.FileTypeExcel,
			domain.FileTypeText, domain.FileTypeMarkdown,
		},
		Fragment: `Derive 2-4 categories and 8-16 sortable items from the material. The trainee drags each
item into a category bucket; correct drops snap in for 10 points, wrong drops bounce
back with a hint naming the distinguishing attribute. Show a per-category accuracy
breakdown at the end.`,
	},
	{
		ID:          IDTimeline,
		Name:        "Timeline Builder",
		Description: "Place events or milestones from the material in order",
		Inputs: []domain.FileType{
			domain.FileTypeText, domain.FileTypeMarkdown, domain.FileTypePDF,
		},
		Fragment: `Extract the dated events, milestones, or ordered stages from the material and present
them shuffled. The trainee drags each onto a horizontal timeline in the right position;
correct placements lock for 10 points. After completion, replay the finished timeline
with a short annotation per entry taken from the material.`,
	},
	{
		ID:          IDFillBlank,
		Name:        "Fill in the Blanks",
		Description: "Complete key sentences from the material with the missing words",
		Inputs: []domain.FileType{
			domain.FileTypeText, domain.FileTypeMarkdown, domain.FileTypePDF,
		},
		Fragment: `Select 8-12 key sentences from the material and blank out the single most meaningful
word or figure in each. Offer a word bank containing every answer plus 3-4 distractors
from the same material. Each correctly filled blank scores 10 points; after two wrong
attempts reveal the answer for 0 points with the original sentence shown in full.`,
	},
}

// auto is appended to the catalog for display purposes but is excluded from
// ApplicableFor: it marks "let the selector decide" rather than an artifact.
var auto = Config{
	ID:          AutoID,
	Name:        "Auto-Select",
	Description: "Let the model pick the best-fitting output for the content",
	Inputs:      domain.AllFileTypes,
}

// All returns every concrete config in declaration order.
func All() []Config {
	out := make([]Config, len(registry))
	copy(out, registry)
	return out
}

// ByID resolves an output-type identifier, including the synthetic auto kind.
func ByID(id string) (Config, bool) {
	if id == AutoID {
		return auto, true
	}
	for _, cfg := range registry {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return Config{}, false
}

// IsConcrete reports whether id names one of the nine concrete kinds.
func IsConcrete(id string) bool {
	if id == AutoID {
		return false
	}
	_, ok := ByID(id)
	return ok
}

// ApplicableFor lists the concrete configs applicable to the given input
// type, in declaration order. The auto entry is never included.
func ApplicableFor(ft domain.FileType) []Config {
	var out []Config
	for _, cfg := range registry {
		for _, input := range cfg.Inputs {
			if input == ft {
				out = append(out, cfg)
				break
			}
		}
	}
	return out
}
