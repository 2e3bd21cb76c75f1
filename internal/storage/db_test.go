package storage

import (
	"path/filepath"
	"testing"

	"clipforge/internal/appdirs"
	"clipforge/internal/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestResolveDBPathUsesCacheDir(t *testing.T) {
	originalResolver := appDirsResolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache-root")
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output-root"),
			CacheDir:  cacheDir,
		}, nil
	}

	got, err := resolveDBPath()
	if err != nil {
		t.Fatalf("resolveDBPath() returned error: %v", err)
	}

	want := filepath.Join(cacheDir, "clipforge.db")
	if got != want {
		t.Fatalf("resolveDBPath() = %q, want %q", got, want)
	}
}

func openTestDB(t *testing.T) {
	t.Helper()
	originalDB := DB
	t.Cleanup(func() {
		DB = originalDB
	})

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.HighlightRun{}, &types.HighlightClip{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	DB = db
}

func TestRunCRUD(t *testing.T) {
	openTestDB(t)

	run := &types.HighlightRun{
		TaskId:         "task-1",
		VideoPath:      "/videos/match.mp4",
		VideoName:      "match",
		VideoDuration:  120,
		Status:         types.RunStatusProcessing,
		ScenesDetected: 5,
	}
	if err := SaveRun(run); err != nil {
		t.Fatalf("SaveRun() returned error: %v", err)
	}

	// Same TaskId must update in place, not create a second row
	run.Status = types.RunStatusDone
	run.ScenesAnalyzed = 5
	run.ClipsExtracted = 2
	run.Clips = []types.HighlightClip{
		{Rank: 1, SceneIndex: 1, Score: 90, IsHighlight: true, Description: "Triple kill"},
		{Rank: 2, SceneIndex: 3, Score: 85, IsHighlight: true, Description: "Clutch round"},
	}
	if err := SaveRun(run); err != nil {
		t.Fatalf("SaveRun() update returned error: %v", err)
	}

	got, err := GetRun("task-1")
	if err != nil {
		t.Fatalf("GetRun() returned error: %v", err)
	}
	if got.Status != types.RunStatusDone {
		t.Fatalf("GetRun() status = %d, want %d", got.Status, types.RunStatusDone)
	}
	if len(got.Clips) != 2 {
		t.Fatalf("GetRun() clips = %d, want 2", len(got.Clips))
	}

	history, err := RunHistory(10)
	if err != nil {
		t.Fatalf("RunHistory() returned error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("RunHistory() = %d rows, want 1", len(history))
	}

	if err := DeleteRun("task-1"); err != nil {
		t.Fatalf("DeleteRun() returned error: %v", err)
	}
	if _, err := GetRun("task-1"); err == nil {
		t.Fatal("GetRun() after delete should return error")
	}
}

func TestMarkStaleRuns(t *testing.T) {
	openTestDB(t)

	for _, run := range []*types.HighlightRun{
		{TaskId: "stale", Status: types.RunStatusProcessing},
		{TaskId: "done", Status: types.RunStatusDone},
	} {
		if err := SaveRun(run); err != nil {
			t.Fatalf("SaveRun(%s) returned error: %v", run.TaskId, err)
		}
	}

	count, err := MarkStaleRuns()
	if err != nil {
		t.Fatalf("MarkStaleRuns() returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("MarkStaleRuns() = %d rows, want 1", count)
	}

	stale, err := GetRun("stale")
	if err != nil {
		t.Fatalf("GetRun(stale) returned error: %v", err)
	}
	if stale.Status != types.RunStatusFailed {
		t.Fatalf("stale run status = %d, want %d", stale.Status, types.RunStatusFailed)
	}

	done, err := GetRun("done")
	if err != nil {
		t.Fatalf("GetRun(done) returned error: %v", err)
	}
	if done.Status != types.RunStatusDone {
		t.Fatalf("done run status = %d, want %d", done.Status, types.RunStatusDone)
	}
}
