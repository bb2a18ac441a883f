package autocateg

import (
	"sort"
	"strings"
)

// expansionTable maps a domain term to the broader vocabulary found in
// product titles of that domain. Keys and terms are already normalized.
// A category name word matches a key exactly or by prefix in either
// direction, and matching pulls the whole term list into the category's
// keyword set.
var expansionTable = map[string][]string{
	"motor": {
		"motor", "pistao", "biela", "virabrequim", "comando", "valvula",
		"tucho", "cabecote", "carter", "junta", "anel", "bronzina",
		"retentor", "bloco",
	},
	"freio": {
		"freio", "pastilha", "disco", "tambor", "lona", "pinca",
		"cilindro", "burrinho", "servo", "sapata", "abs", "flexivel",
	},
	"suspensao": {
		"suspensao", "amortecedor", "mola", "batente", "coxim", "bandeja",
		"pivo", "bucha", "bieleta", "estabilizadora", "balanca",
		"kit batente",
	},
	"direcao": {
		"direcao", "terminal", "axial", "cremalheira", "setor", "coifa",
		"volante", "barra", "braco", "hidraulica",
	},
	"eletrica": {
		"eletrica", "bateria", "alternador", "partida", "arranque",
		"rele", "fusivel", "chicote", "sensor", "modulo", "interruptor",
		"chave de seta",
	},
	"ignicao": {
		"ignicao", "vela", "bobina", "cabo de vela", "distribuidor",
		"rotor", "faisca", "supressivo",
	},
	"arrefecimento": {
		"arrefecimento", "radiador", "ventoinha", "eletroventilador",
		"bomba d agua", "valvula termostatica", "reservatorio",
		"mangueira", "intercooler", "defletor",
	},
	"transmissao": {
		"transmissao", "cambio", "diferencial", "semieixo",
		"homocinetica", "cardan", "trizeta", "engrenagem",
		"sincronizador", "seletora",
	},
	"embreagem": {
		"embreagem", "plato", "disco", "rolamento", "atuador",
		"cabo de embreagem", "bimassa", "volante motor",
	},
	"filtro": {
		"filtro", "oleo", "combustivel", "cabine", "elemento",
		"separador", "blindado", "filtrante",
	},
	"combustivel": {
		"combustivel", "bomba", "bico", "injetor", "carburador",
		"tanque", "boia", "flauta", "regulador", "tbi",
	},
	"escapamento": {
		"escapamento", "silencioso", "catalisador", "coletor",
		"ponteira", "abracadeira", "sonda lambda", "intermediario",
	},
	"iluminacao": {
		"iluminacao", "farol", "lanterna", "lampada", "pisca", "seta",
		"milha", "xenon", "led", "refletor",
	},
	"carroceria": {
		"carroceria", "parachoque", "paralama", "capo", "porta",
		"retrovisor", "grade", "friso", "macaneta", "fechadura",
		"vidro", "borracha",
	},
	"rolamento": {
		"rolamento", "cubo", "roda", "ponta de eixo", "homocinetica",
		"agulha", "esfera", "cubo de roda",
	},
	"correia": {
		"correia", "tensor", "esticador", "polia", "dentada", "poli v",
		"sincronizadora", "multi v",
	},
}

// stopwords are connective words dropped from category names before any
// word-level matching.
var stopwords = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true,
	"e": true, "em": true, "para": true,
	"a": true, "o": true, "as": true, "os": true,
	"com": true, "sem": true,
}

// NameWords returns the meaningful words of a category name: tokenized via
// Normalize with stopwords removed.
func NameWords(name string) []string {
	words := Tokenize(name)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// ExpandKeywords builds the keyword set of a category from its name. The
// set is seeded with the name's own words (plus naive singular forms, since
// tree labels are usually plural and titles usually singular) and unioned
// with every expansion group whose key matches a name word. Returned
// sorted so repeated runs over the same tree compare equal.
func ExpandKeywords(name string) []string {
	set := map[string]bool{}

	for _, w := range NameWords(name) {
		set[w] = true
		if strings.HasSuffix(w, "s") && len(w) > 3 {
			set[w[:len(w)-1]] = true
			if strings.HasSuffix(w, "es") && len(w) > 4 {
				set[w[:len(w)-2]] = true
			}
		}

		for key, terms := range expansionTable {
			if keyMatchesWord(key, w) {
				for _, t := range terms {
					set[t] = true
				}
			}
		}
	}

	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// keyMatchesWord reports whether a category name word selects an expansion
// key: exact match, or a prefix relation in either direction when both
// sides are long enough to be meaningful.
func keyMatchesWord(key, word string) bool {
	if key == word {
		return true
	}
	if len(key) < 3 || len(word) < 3 {
		return false
	}
	return strings.HasPrefix(word, key) || strings.HasPrefix(key, word)
}
