package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bagusrestoration/bengkel-progress-api/middleware"
	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testLookupBase = "https://bengkel.example.com/cek"

var testStaff = &services.Session{
	Subject:  "1",
	Email:    "admin@bengkel.test",
	Role:     services.RoleStaff,
	Token:    "test-token",
	Provider: "local",
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.JobRecord{}, &models.StaffAccount{}), "Failed to migrate test database")
	return db
}

type testEnv struct {
	db    *gorm.DB
	media *services.MockMediaHost
	feed  *services.ChangeFeed
	jobs  *services.JobService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	media := services.NewMockMediaHost()
	feed := services.NewChangeFeed(8)
	jobs := services.NewJobService(services.NewGormRecordStore(db), media, feed, services.JobServiceOptions{
		LookupBaseURL: testLookupBase,
		ShopName:      "Bagus Restoration",
	})
	return &testEnv{db: db, media: media, feed: feed, jobs: jobs}
}

// staffRouter mounts the job routes behind a fake session
func (e *testEnv) staffRouter() *gin.Engine {
	jc := NewJobController(e.jobs)

	router := gin.New()
	jobs := router.Group("/jobs", func(c *gin.Context) {
		middleware.SetSession(c, testStaff)
		c.Next()
	})
	jobs.GET("", jc.List)
	jobs.GET("/code", jc.GenerateCode)
	jobs.POST("", jc.Create)
	jobs.GET("/:id", jc.Get)
	jobs.PATCH("/:id", jc.Update)
	jobs.DELETE("/:id", jc.Delete)
	jobs.POST("/:id/photos/:slot", jc.SetPhoto)
	jobs.DELETE("/:id/photos/:slot", jc.ClearPhoto)
	jobs.GET("/:id/contact-link", jc.ContactLink)
	return router
}

func (e *testEnv) createJob(t *testing.T, in services.JobInput) *models.JobRecord {
	t.Helper()
	job, err := e.jobs.Create(context.Background(), in)
	require.NoError(t, err)
	return job
}

func sampleInput(code string) services.JobInput {
	return services.JobInput{
		Name:          "Vespa Sprint 1978",
		Plate:         "b 1234 xyz",
		Code:          code,
		ContactNumber: "+62 812 3456 7890",
		Status:        "Proses pengecatan",
		Detail:        "Repaint full body",
		Progress:      40,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, router http.Handler, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Found   *bool           `json:"found"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details interface{}            `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func decodeJob(t *testing.T, w *httptest.ResponseRecorder) JobView {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, "body: %s", w.Body.String())
	var view JobView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}
