package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/threefind/internal/registry"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save some scores
	_, err = store.SaveScore("threefind", 100)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("threefind", 50)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("threefind", 200)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Different game
	_, err = store.SaveScore("threefind_endless", 500)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Retrieve top scores for campaign
	scores, err := store.TopScores("threefind", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 {
		t.Errorf("Expected highest score to be 200, got %d", scores[0].Score)
	}
	if scores[1].Score != 100 {
		t.Errorf("Expected second score to be 100, got %d", scores[1].Score)
	}
	if scores[2].Score != 50 {
		t.Errorf("Expected third score to be 50, got %d", scores[2].Score)
	}

	// Retrieve top scores for endless
	endlessScores, err := store.TopScores("threefind_endless", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(endlessScores) != 1 {
		t.Errorf("Expected 1 endless score, got %d", len(endlessScores))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save 5 scores
	for i := 0; i < 5; i++ {
		store.SaveScore("test", (i+1)*100)
	}

	// Request only top 3
	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	// Should be 500, 400, 300 (top 3)
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// No scores yet
	high, err := store.HighScore("threefind")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	// Add scores
	store.SaveScore("threefind", 100)
	store.SaveScore("threefind", 300)
	store.SaveScore("threefind", 200)

	high, err = store.HighScore("threefind")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveScore("threefind", 100)
	store.SaveScore("threefind", 200)
	store.SaveScore("threefind_endless", 300)

	// Clear only campaign scores
	err = store.ClearScores("threefind")
	if err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	// Campaign should be empty
	campaignScores, _ := store.TopScores("threefind", 10)
	if len(campaignScores) != 0 {
		t.Errorf("Expected 0 campaign scores after clear, got %d", len(campaignScores))
	}

	// Endless should still have scores
	endlessScores, _ := store.TopScores("threefind_endless", 10)
	if len(endlessScores) != 1 {
		t.Errorf("Endless scores should not be affected by clearing campaign")
	}
}

func TestStoreAllScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Add many scores
	for i := 0; i < 20; i++ {
		store.SaveScore("test", i*10)
	}

	scores, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}

	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	// Test that ~ expansion works (we won't actually write to home)
	// Just verify the function doesn't crash
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSessions(t *testing.T) {
	store := openTestStore(t)

	rec := SessionRecord{
		SessionID:  "7b0c3a52-2f55-4d0a-9c1e-5a8e2b1f4d10",
		GameID:     "threefind",
		Mode:       "campaign",
		Score:      1230,
		Level:      3,
		Moves:      41,
		Flips:      6,
		Matched:    87,
		Cascades:   9,
		MaxCascade: 4,
		Duration:   312,
	}
	if _, err := store.SaveSession(rec); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	got, err := store.SessionByID(rec.SessionID)
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("SessionByID() returned nil")
	}

	rec.ID = got.ID
	rec.CreatedAt = got.CreatedAt
	if *got != rec {
		t.Errorf("SessionByID() = %+v, want %+v", *got, rec)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	missing, err := store.SessionByID("nope")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown session, got %+v", missing)
	}
}

func TestStoreSessionRequiresID(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveSession(SessionRecord{GameID: "threefind"}); err == nil {
		t.Error("SaveSession() without session id should fail")
	}
}

func TestStoreSessionReplace(t *testing.T) {
	store := openTestStore(t)

	store.SaveSession(SessionRecord{SessionID: "a", GameID: "threefind", Mode: "campaign", Score: 10})
	store.SaveSession(SessionRecord{SessionID: "a", GameID: "threefind", Mode: "campaign", Score: 90})

	sessions, err := store.RecentSessions("threefind", 10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Score != 90 {
		t.Errorf("expected one replaced session with score 90, got %+v", sessions)
	}
}

func TestStoreRecentSessions(t *testing.T) {
	store := openTestStore(t)

	ids := []string{"s1", "s2", "s3", "s4"}
	for i, id := range ids {
		game := "threefind"
		if i%2 == 1 {
			game = "threefind_endless"
		}
		if _, err := store.SaveSession(SessionRecord{SessionID: id, GameID: game, Mode: "x", Score: i}); err != nil {
			t.Fatalf("SaveSession(%s) failed: %v", id, err)
		}
	}

	all, err := store.RecentSessions("", 3)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions with limit, got %d", len(all))
	}
	// Newest first
	if all[0].SessionID != "s4" || all[2].SessionID != "s2" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].SessionID, all[1].SessionID, all[2].SessionID)
	}

	top, err := store.TopSessions("threefind", 10)
	if err != nil {
		t.Fatalf("TopSessions() failed: %v", err)
	}
	if len(top) != 2 || top[0].SessionID != "s3" || top[1].SessionID != "s1" {
		t.Errorf("TopSessions() = %+v, want s3 then s1", top)
	}

	endless, err := store.RecentSessions("threefind_endless", 10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(endless) != 2 {
		t.Errorf("expected 2 endless sessions, got %d", len(endless))
	}
}

func TestStoreSaveSessionStats(t *testing.T) {
	store := openTestStore(t)

	st := registry.SessionStats{
		SessionID:  "stats-1",
		Mode:       "endless",
		Score:      450,
		Moves:      12,
		Matched:    30,
		Cascades:   2,
		MaxCascade: 2,
		Duration:   90 * time.Second,
	}
	if err := store.SaveSessionStats("threefind_endless", st); err != nil {
		t.Fatalf("SaveSessionStats() failed: %v", err)
	}

	got, err := store.SessionByID("stats-1")
	if err != nil || got == nil {
		t.Fatalf("SessionByID() = %v, %v", got, err)
	}
	if got.GameID != "threefind_endless" || got.Score != 450 || got.Duration != 90 || got.Matched != 30 {
		t.Errorf("unexpected record %+v", *got)
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("threefind", 100)
	store.SaveScore("threefind", 300)
	store.SaveScore("threefind_endless", 50)

	stats, err := store.GetGameStats("threefind")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.AvgScore != 200 || stats.TotalScore != 400 {
		t.Errorf("unexpected stats %+v", *stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(all) != 2 || all["threefind_endless"].HighScore != 50 {
		t.Errorf("unexpected all-games stats: %v", all)
	}
}
