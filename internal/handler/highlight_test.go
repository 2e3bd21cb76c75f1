package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func init() {
	log.InitLogger()
}

func configureTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "clipforge.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.HighlightRun{}, &types.HighlightClip{}))

	original := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		storage.DB = original
	})
}

func buildHighlightRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/api/highlight/task", h.StartHighlightTask)
	router.GET("/api/highlight/task", h.GetHighlightTask)
	router.GET("/api/highlight/history", h.GetRunHistory)
	router.DELETE("/api/highlight/task/:taskId", h.DeleteRun)
	return router
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStartHighlightTask_InvalidParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := buildHighlightRouter(&Handler{})

	req, _ := http.NewRequest("POST", "/api/highlight/task", strings.NewReader(`{"count": 3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, apperrors.CodeInvalidParams, body["error"], "missing video_path should be rejected")
}

func TestGetHighlightTask_MissingTaskId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := buildHighlightRouter(&Handler{})

	req, _ := http.NewRequest("GET", "/api/highlight/task", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, apperrors.CodeInvalidParams, body["error"])
}

func TestGetHighlightTask_ReturnsRunWithClips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	configureTestDB(t)

	require.NoError(t, storage.SaveRun(&types.HighlightRun{
		TaskId:         "task-done",
		VideoName:      "ranked_match",
		Status:         types.RunStatusDone,
		ScenesDetected: 5,
		ScenesAnalyzed: 5,
		ClipsExtracted: 1,
		Clips: []types.HighlightClip{
			{Rank: 1, SceneIndex: 2, Timestamp: 30, Duration: 10, Score: 90,
				IsHighlight: true, Description: "Team fight", FilePath: "/out/highlight_01_score90.mp4"},
		},
	}))

	router := buildHighlightRouter(&Handler{})
	req, _ := http.NewRequest("GET", "/api/highlight/task?taskId=task-done", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, 0, body["error"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "data should be the run status object")
	assert.Equal(t, "task-done", data["task_id"])
	assert.Equal(t, "ranked_match", data["video_name"])
	assert.EqualValues(t, types.RunStatusDone, data["status"])

	clips, ok := data["clips"].([]any)
	require.True(t, ok)
	require.Len(t, clips, 1)
	clip := clips[0].(map[string]any)
	assert.EqualValues(t, 90, clip["score"])
	assert.Equal(t, "highlight_01_score90.mp4", clip["file"])
}

func TestGetHighlightTask_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	configureTestDB(t)

	router := buildHighlightRouter(&Handler{})
	req, _ := http.NewRequest("GET", "/api/highlight/task?taskId=nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, apperrors.CodeDBError, body["error"])
}

func TestDeleteRun_RemovesRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	configureTestDB(t)

	require.NoError(t, storage.SaveRun(&types.HighlightRun{
		TaskId: "task-del",
		Status: types.RunStatusDone,
	}))

	router := buildHighlightRouter(&Handler{})
	req, _ := http.NewRequest("DELETE", "/api/highlight/task/task-del", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, 0, body["error"])

	_, err := storage.GetRun("task-del")
	assert.Error(t, err, "run should be gone after delete")
}

func TestRunHistory_ListsRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	configureTestDB(t)

	for _, taskId := range []string{"h1", "h2"} {
		require.NoError(t, storage.SaveRun(&types.HighlightRun{
			TaskId: taskId,
			Status: types.RunStatusDone,
		}))
	}

	router := buildHighlightRouter(&Handler{})
	req, _ := http.NewRequest("GET", "/api/highlight/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.EqualValues(t, 0, body["error"])

	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}
