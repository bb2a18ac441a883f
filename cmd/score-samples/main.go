package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

// sampleTree mirrors the upper part of the store's category tree so scoring
// tweaks can be eyeballed without touching the API.
var sampleTree = []catalog.CategoryNode{
	{
		Slug: "freios",
		Name: "Freios",
		Children: []catalog.CategoryNode{
			{Slug: "pastilhas-de-freio", Name: "Pastilhas de Freio"},
			{Slug: "discos-de-freio", Name: "Discos de Freio"},
		},
	},
	{
		Slug: "suspensao",
		Name: "Suspensão",
		Children: []catalog.CategoryNode{
			{Slug: "amortecedores", Name: "Amortecedores"},
			{Slug: "molas", Name: "Molas"},
		},
	},
	{
		Slug: "motor",
		Name: "Motor",
		Children: []catalog.CategoryNode{
			{Slug: "correias", Name: "Correias"},
			{Slug: "bombas-dagua", Name: "Bombas d'Água"},
		},
	},
	{
		Slug: "arrefecimento",
		Name: "Arrefecimento",
		Children: []catalog.CategoryNode{
			{Slug: "radiadores", Name: "Radiadores"},
		},
	},
	{
		Slug: "ignicao",
		Name: "Ignição",
		Children: []catalog.CategoryNode{
			{Slug: "velas", Name: "Velas"},
		},
	},
	{
		Slug: "eletrica",
		Name: "Elétrica",
		Children: []catalog.CategoryNode{
			{Slug: "sondas-lambda", Name: "Sondas Lambda"},
		},
	},
	{
		Slug: "iluminacao",
		Name: "Iluminação",
		Children: []catalog.CategoryNode{
			{Slug: "farois", Name: "Faróis"},
		},
	},
}

// sampleTitles are real-world shaped listings, including a couple the
// heuristic is expected to leave unmatched.
var sampleTitles = []string{
	"Pastilha de Freio Dianteira Gol G5 G6 Cobreq N-502",
	"Disco de Freio Ventilado Par Palio Uno Fiorino",
	"Amortecedor Traseiro Corsa Classic Monroe",
	"Bomba d'Água Uno Mille Fire 1.0 8V",
	"Kit Correia Dentada + Tensor Gol AP 1.8",
	"Farol Principal Esquerdo Uno Vivace 2011 a 2016",
	"Radiador Honda Civic 1.7 2001 a 2006 com Ar",
	"Jogo de Velas NGK Palio Siena 1.0 Fire",
	"Sonda Lambda Universal 4 Fios",
	"Mola Dianteira Par Celta Prisma",
	"Parafuso de Roda Cromado M12 Cónico",
	"Adesivo Decorativo Faixa Lateral Preta",
}

type candidate struct {
	cat     autocateg.FlatCategory
	score   int
	matched []string
}

func main() {
	engine := autocateg.NewEngine(sampleTree)
	cats := engine.Categories()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("SCORING SAMPLES (%d categories, %d titles)\n", len(cats), len(sampleTitles))
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	for i, title := range sampleTitles {
		fmt.Printf("─── Sample %d ─────────────────────────────────────────────────────────────────\n", i+1)
		fmt.Printf("Title: %s\n", title)

		text := autocateg.Normalize(title)
		words := strings.Fields(text)

		var ranked []candidate
		for j := range cats {
			score, matched := autocateg.Score(text, words, &cats[j])
			if score > 0 {
				ranked = append(ranked, candidate{cats[j], score, matched})
			}
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return ranked[a].score > ranked[b].score
		})

		if len(ranked) == 0 {
			fmt.Println("No category scored above zero.")
			fmt.Println()
			continue
		}

		top := ranked
		if len(top) > 3 {
			top = top[:3]
		}
		for j, c := range top {
			fmt.Printf("  %d. %3d  %-40s %v\n", j+1, c.score, c.cat.FullPath, c.matched)
		}
		fmt.Println()
	}
}
