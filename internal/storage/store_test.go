package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
)

// testKey is 32 bytes so tests skip the deliberately slow scrypt derivation.
var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "autocateg.db"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleResults() []autocateg.MatchResult {
	return []autocateg.MatchResult{
		{
			SKU:             "CAP-00001",
			Titulo:          "Pastilha de Freio Dianteira",
			CurrentCategory: "",
			SuggestedSlug:   "freios",
			SuggestedPath:   "Freios",
			Confidence:      95,
			MatchedKeywords: []string{"freio", "pastilha"},
		},
		{
			SKU:             "CAP-00002",
			Titulo:          "Amortecedor Traseiro Palio",
			CurrentCategory: "suspensao",
			SuggestedSlug:   "suspensao",
			SuggestedPath:   "Suspensão",
			Confidence:      88,
			MatchedKeywords: []string{"amortecedor", "suspensao"},
			AlreadyCorrect:  true,
		},
		{
			SKU:    "CAP-00003",
			Titulo: "Parafuso Zincado M8",
		},
	}
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := store.GetRun(run.ID)
	assert.Nil(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, RunSourceManual, got.Source)
	assert.False(t, got.FinishedAt.Valid)

	err = store.FinishRun(run.ID, RunStatusDone, autocateg.Summary{
		Total:          3,
		Matched:        2,
		HighConfidence: 2,
		AlreadyCorrect: 1,
	})
	assert.Nil(t, err)

	got, err = store.GetRun(run.ID)
	assert.Nil(t, err)
	assert.Equal(t, RunStatusDone, got.Status)
	assert.True(t, got.FinishedAt.Valid)
	assert.Equal(t, 3, got.TotalProducts)
	assert.Equal(t, 3, got.Analyzed)
	assert.Equal(t, 2, got.Matched)
	assert.Equal(t, 2, got.HighConfidence)
	assert.Equal(t, 1, got.AlreadyCorrect)
}

func TestFinishRunCancelledKeepsTotal(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 250)
	assert.Nil(t, err)

	err = store.FinishRun(run.ID, RunStatusCancelled, autocateg.Summary{
		Total:   120,
		Matched: 80,
	})
	assert.Nil(t, err)

	got, err := store.GetRun(run.ID)
	assert.Nil(t, err)
	assert.Equal(t, RunStatusCancelled, got.Status)
	assert.Equal(t, 250, got.TotalProducts)
	assert.Equal(t, 120, got.Analyzed)
	assert.Equal(t, 80, got.Matched)
}

func TestGetRunMissing(t *testing.T) {
	store := newTestStore(t)

	run, err := store.GetRun("no-such-run")
	assert.Nil(t, err)
	assert.Nil(t, run)

	run, err = store.LatestRun()
	assert.Nil(t, err)
	assert.Nil(t, run)
}

func TestLatestRunAndList(t *testing.T) {
	store := newTestStore(t)

	first, err := store.CreateRun(RunSourceManual, 10)
	assert.Nil(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.CreateRun(RunSourceWatch, 20)
	assert.Nil(t, err)

	latest, err := store.LatestRun()
	assert.Nil(t, err)
	assert.Equal(t, second.ID, latest.ID)

	runs, err := store.ListRuns(0)
	assert.Nil(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	runs, err = store.ListRuns(1)
	assert.Nil(t, err)
	assert.Len(t, runs, 1)
}

func TestSaveAndGetSuggestions(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveResults(run.ID, sampleResults()))

	all, err := store.GetSuggestions(run.ID, SuggestionFilter{})
	assert.Nil(t, err)
	assert.Len(t, all, 3)
	// Default order is confidence descending
	assert.Equal(t, "CAP-00001", all[0].SKU)
	assert.Equal(t, "CAP-00002", all[1].SKU)
	assert.Equal(t, "CAP-00003", all[2].SKU)

	assert.Equal(t, []string{"freio", "pastilha"}, all[0].MatchedKeywords)
	assert.Nil(t, all[2].MatchedKeywords)
	assert.True(t, all[1].AlreadyCorrect)

	confident, err := store.GetSuggestions(run.ID, SuggestionFilter{MinConfidence: 90})
	assert.Nil(t, err)
	assert.Len(t, confident, 1)
	assert.Equal(t, "CAP-00001", confident[0].SKU)

	pending, err := store.GetSuggestions(run.ID, SuggestionFilter{HideAlreadyCorrect: true})
	assert.Nil(t, err)
	assert.Len(t, pending, 2)

	bySKU, err := store.GetSuggestions(run.ID, SuggestionFilter{OrderBy: "sku", Limit: 2})
	assert.Nil(t, err)
	assert.Len(t, bySKU, 2)
	assert.Equal(t, "CAP-00001", bySKU[0].SKU)

	_, err = store.GetSuggestions(run.ID, SuggestionFilter{OrderBy: "nonsense"})
	assert.NotNil(t, err)
}

func TestSelection(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveResults(run.ID, sampleResults()))

	err = store.SetSelected(run.ID, []string{"CAP-00001"}, true)
	assert.Nil(t, err)

	selected, err := store.GetSuggestions(run.ID, SuggestionFilter{OnlySelected: true})
	assert.Nil(t, err)
	assert.Len(t, selected, 1)
	assert.Equal(t, "CAP-00001", selected[0].SKU)

	err = store.SetSelected(run.ID, []string{"CAP-00001"}, false)
	assert.Nil(t, err)

	selected, err = store.GetSuggestions(run.ID, SuggestionFilter{OnlySelected: true})
	assert.Nil(t, err)
	assert.Len(t, selected, 0)
}

// TestSelectByConfidence tests bulk selection: only rows with something to
// apply are touched, so the already-correct and unmatched ones stay out.
func TestSelectByConfidence(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveResults(run.ID, sampleResults()))

	changed, err := store.SelectByConfidence(run.ID, 80, true)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), changed)

	selected, err := store.GetSuggestions(run.ID, SuggestionFilter{OnlySelected: true})
	assert.Nil(t, err)
	assert.Len(t, selected, 1)
	assert.Equal(t, "CAP-00001", selected[0].SKU)
}

func TestMarkApplied(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveResults(run.ID, sampleResults()))

	assert.Nil(t, store.MarkApplied(run.ID, []string{"CAP-00001"}))

	all, err := store.GetSuggestions(run.ID, SuggestionFilter{OrderBy: "sku"})
	assert.Nil(t, err)

	applied := all[0]
	assert.True(t, applied.Applied)
	assert.True(t, applied.AlreadyCorrect)
	assert.Equal(t, "freios", applied.CurrentCategory)

	unapplied, err := store.GetSuggestions(run.ID, SuggestionFilter{OnlyUnapplied: true})
	assert.Nil(t, err)
	assert.Len(t, unapplied, 2)
}

func TestSuggestionMatchResult(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun(RunSourceManual, 3)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveResults(run.ID, sampleResults()))
	assert.Nil(t, store.SetSelected(run.ID, []string{"CAP-00001"}, true))

	all, err := store.GetSuggestions(run.ID, SuggestionFilter{OrderBy: "sku"})
	assert.Nil(t, err)

	r := all[0].MatchResult()
	assert.Equal(t, "CAP-00001", r.SKU)
	assert.Equal(t, "Pastilha de Freio Dianteira", r.Titulo)
	assert.Equal(t, "freios", r.SuggestedSlug)
	assert.Equal(t, 95, r.Confidence)
	assert.True(t, r.Selected)
}

func TestSeenLedger(t *testing.T) {
	store := newTestStore(t)

	assert.Nil(t, store.MarkProductsSeen([]string{"CAP-00001", "CAP-00002"}))
	// Repeat insert is ignored
	assert.Nil(t, store.MarkProductsSeen([]string{"CAP-00002"}))

	seen, err := store.SeenSKUs()
	assert.Nil(t, err)
	assert.Len(t, seen, 2)
	assert.True(t, seen["CAP-00001"])
	assert.True(t, seen["CAP-00002"])

	pruned, err := store.PruneSeenProducts(time.Hour)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), pruned)

	time.Sleep(5 * time.Millisecond)
	pruned, err = store.PruneSeenProducts(0)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), pruned)

	seen, err = store.SeenSKUs()
	assert.Nil(t, err)
	assert.Len(t, seen, 0)
}

func TestCredentialsRoundtrip(t *testing.T) {
	store := newTestStore(t)

	baseURL, token, err := store.LoadCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "", baseURL)
	assert.Equal(t, "", token)

	assert.Nil(t, store.SaveCredentials("https://staging.carretao.local", "tok_live_abc123"))

	baseURL, token, err = store.LoadCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "https://staging.carretao.local", baseURL)
	assert.Equal(t, "tok_live_abc123", token)

	assert.Nil(t, store.SaveCredentials("", "tok_live_rotated"))
	baseURL, token, err = store.LoadCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "", baseURL)
	assert.Equal(t, "tok_live_rotated", token)

	assert.Nil(t, store.DeleteCredentials())
	_, token, err = store.LoadCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "", token)
}

func TestCredentialsWrongKey(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "autocateg.db")

	store, err := NewSQLiteStore(dbPath, testKey)
	assert.Nil(t, err)
	assert.Nil(t, store.SaveCredentials("", "tok_live_abc123"))
	assert.Nil(t, store.Close())

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	store, err = NewSQLiteStore(dbPath, otherKey)
	assert.Nil(t, err)
	defer store.Close()

	_, _, err = store.LoadCredentials()
	assert.NotNil(t, err)
}

func TestCredentialsWithoutKey(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "autocateg.db"), nil)
	assert.Nil(t, err)
	defer store.Close()

	assert.ErrorIs(t, store.SaveCredentials("", "token"), ErrNoEncryptionKey)

	_, _, err = store.LoadCredentials()
	assert.ErrorIs(t, err, ErrNoEncryptionKey)
}
