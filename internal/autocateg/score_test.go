package autocateg

import (
	"strings"
	"testing"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

func scoreAgainst(t *testing.T, title, categoryName string, depth int) (int, []string) {
	t.Helper()
	cat := FlatCategory{
		Slug:     Normalize(categoryName),
		Name:     categoryName,
		FullPath: categoryName,
		Keywords: ExpandKeywords(categoryName),
		Depth:    depth,
	}
	text := Normalize(title)
	return Score(text, strings.Fields(text), &cat)
}

// TestScore_BrakePadAgainstBrakes tests the canonical high-confidence case:
// a brake pad title against the Freios category.
func TestScore_BrakePadAgainstBrakes(t *testing.T) {
	score, matched := scoreAgainst(t, "Pastilha de Freio Dianteira", "Freios", 0)

	if score < 80 {
		t.Errorf("expected high confidence (>= 80), got %d", score)
	}
	if !containsWord(matched, "freio") || !containsWord(matched, "pastilha") {
		t.Errorf("expected freio and pastilha among matched keywords, got %v", matched)
	}
}

func TestScore_BrakePadAgainstEngineIsZero(t *testing.T) {
	score, matched := scoreAgainst(t, "Pastilha de Freio Dianteira", "Motor", 0)

	if score != 0 {
		t.Errorf("expected 0 for unrelated category, got %d", score)
	}
	if matched != nil {
		t.Errorf("expected no matched keywords, got %v", matched)
	}
}

func TestScore_ExpansionBonusCapped(t *testing.T) {
	// Eight keyword hits against one found name word: the raw expansion
	// bonus would be 21, capped to 20, on top of a 50 name score.
	score, matched := scoreAgainst(t,
		"Pastilha de Freio Disco Tambor Lona Servo Sapata ABS",
		"Freios Traseiros", 0)

	if len(matched) != 8 {
		t.Fatalf("expected 8 matched keywords, got %d: %v", len(matched), matched)
	}
	if score != 70 {
		t.Errorf("expected score 70, got %d", score)
	}
}

func TestScore_DepthBonus(t *testing.T) {
	base, _ := scoreAgainst(t, "Radiador Gol 1.0", "Radiadores Importados", 0)
	one, _ := scoreAgainst(t, "Radiador Gol 1.0", "Radiadores Importados", 1)
	deep, _ := scoreAgainst(t, "Radiador Gol 1.0", "Radiadores Importados", 5)

	if base != 50 {
		t.Fatalf("expected base score 50, got %d", base)
	}
	if one != base+5 {
		t.Errorf("expected +5 at depth 1, got %d", one)
	}
	if deep != base+10 {
		t.Errorf("expected depth bonus capped at +10, got %d (base %d)", deep, base)
	}
}

func TestScore_ExactWordBonus(t *testing.T) {
	exact, _ := scoreAgainst(t, "Vela NGK", "Kit Vela", 0)
	prefix, _ := scoreAgainst(t, "Velas NGK", "Kit Vela", 0)

	if exact != 58 {
		t.Errorf("expected 58 with exact token match, got %d", exact)
	}
	if prefix != 50 {
		t.Errorf("expected 50 with prefix-only match, got %d", prefix)
	}
}

func TestScore_WithinBounds(t *testing.T) {
	titles := []string{
		"Pastilha de Freio Dianteira Gol G5",
		"Amortecedor Traseiro Palio",
		"Bomba d'Água Corsa 1.4",
		"Farol Esquerdo Uno Mille",
		"Correia Dentada Tensor Polia Completo",
		"Jogo de Velas e Cabos de Vela Bobina Ignição",
		"Parafuso Zincado M8",
		"",
	}
	flat := Flatten(brakeAndEngineTree())

	for _, title := range titles {
		text := Normalize(title)
		words := strings.Fields(text)
		for i := range flat {
			score, _ := Score(text, words, &flat[i])
			if score < 0 || score > 100 {
				t.Errorf("score out of bounds for %q vs %q: %d", title, flat[i].Slug, score)
			}
		}
	}
}

func TestBestMatch_FirstSeenWinsTies(t *testing.T) {
	cats := []FlatCategory{
		{Slug: "freios-a", Name: "Freios", FullPath: "Freios", Keywords: ExpandKeywords("Freios")},
		{Slug: "freios-b", Name: "Freios", FullPath: "Freios", Keywords: ExpandKeywords("Freios")},
	}

	text := Normalize("Pastilha de Freio")
	best, score, _ := BestMatch(text, strings.Fields(text), cats)

	if best == nil {
		t.Fatal("expected a best match")
	}
	if best.Slug != "freios-a" {
		t.Errorf("expected tie to keep first category, got %q (score %d)", best.Slug, score)
	}
}

func TestBestMatch_NothingMatchesReturnsNil(t *testing.T) {
	flat := Flatten([]catalog.CategoryNode{
		{Slug: "freios", Name: "Freios"},
		{Slug: "motor", Name: "Motor"},
	})

	text := Normalize("Parafuso Zincado M8")
	best, score, matched := BestMatch(text, strings.Fields(text), flat)

	if best != nil {
		t.Errorf("expected no match, got %q", best.Slug)
	}
	if score != 0 || matched != nil {
		t.Errorf("expected zero score and no keywords, got %d %v", score, matched)
	}
}
