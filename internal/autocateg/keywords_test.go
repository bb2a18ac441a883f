package autocateg

import (
	"sort"
	"testing"
)

func containsWord(list []string, w string) bool {
	for _, item := range list {
		if item == w {
			return true
		}
	}
	return false
}

// TestExpandKeywords_PluralNameSelectsGroup tests that a plural category
// name like "Freios" still pulls in the freio expansion group by prefix.
func TestExpandKeywords_PluralNameSelectsGroup(t *testing.T) {
	kws := ExpandKeywords("Freios")

	for _, want := range []string{"freios", "freio", "pastilha", "disco", "tambor"} {
		if !containsWord(kws, want) {
			t.Errorf("expected %q in expanded keywords for Freios, got %v", want, kws)
		}
	}
}

func TestExpandKeywords_AccentedExactKey(t *testing.T) {
	kws := ExpandKeywords("Suspensão")

	for _, want := range []string{"suspensao", "amortecedor", "mola", "bieleta"} {
		if !containsWord(kws, want) {
			t.Errorf("expected %q in expanded keywords for Suspensão, got %v", want, kws)
		}
	}
}

// TestExpandKeywords_UnknownNameKeepsOwnWords tests that a category outside
// the expansion table still gets a usable keyword set from its own name,
// including singular forms.
func TestExpandKeywords_UnknownNameKeepsOwnWords(t *testing.T) {
	kws := ExpandKeywords("Acessórios Internos")

	for _, want := range []string{"acessorios", "acessorio", "internos", "interno"} {
		if !containsWord(kws, want) {
			t.Errorf("expected %q in expanded keywords, got %v", want, kws)
		}
	}
	if containsWord(kws, "motor") {
		t.Errorf("unrelated group leaked into keywords: %v", kws)
	}
}

func TestExpandKeywords_Sorted(t *testing.T) {
	kws := ExpandKeywords("Pastilhas de Freio")
	if !sort.StringsAreSorted(kws) {
		t.Errorf("expected sorted keywords, got %v", kws)
	}
}

func TestNameWords_DropsStopwords(t *testing.T) {
	got := NameWords("Pastilhas de Freio")
	if len(got) != 2 || got[0] != "pastilhas" || got[1] != "freio" {
		t.Errorf("expected [pastilhas freio], got %v", got)
	}

	got = NameWords("Correia do Alternador e da Direção")
	if len(got) != 3 || got[0] != "correia" || got[1] != "alternador" || got[2] != "direcao" {
		t.Errorf("expected [correia alternador direcao], got %v", got)
	}
}

func TestKeyMatchesWord(t *testing.T) {
	cases := []struct {
		key, word string
		want      bool
	}{
		{"freio", "freio", true},
		{"freio", "freios", true},
		{"suspensao", "suspensoes", false}, // plural changes the stem
		{"filtro", "filtros", true},
		{"motor", "motorista", true},
		{"freio", "f", false},
		{"correia", "correias", true},
		{"vela", "velocimetro", false},
	}

	for _, c := range cases {
		if got := keyMatchesWord(c.key, c.word); got != c.want {
			t.Errorf("keyMatchesWord(%q, %q): expected %v, got %v", c.key, c.word, c.want, got)
		}
	}
}
