package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/service"
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

type mockService struct {
	mock.Mock
}

var _ service.Service = (*mockService)(nil)

func (m *mockService) Start(
	ctx context.Context,
	req *analysisModel.StartAnalysisRequest,
) (*analysisModel.JobResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisModel.JobResponse), args.Error(1)
}

func (m *mockService) Resume(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisModel.JobResponse), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisModel.JobResponse), args.Error(1)
}

func (m *mockService) List(ctx context.Context, limit, offset int) (*analysisModel.JobListResponse, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisModel.JobListResponse), args.Error(1)
}

func (m *mockService) Report(ctx context.Context, id uuid.UUID) (*analysisModel.ReportResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisModel.ReportResponse), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func TestHandler_StartAnalysis(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/start", handler.StartAnalysis)

		req := &analysisModel.StartAnalysisRequest{
			AreaPath:  "Project\\Team",
			ItemTypes: []string{"Bug"},
		}
		resp := &analysisModel.JobResponse{
			ID:          uuid.NewString(),
			Status:      string(analysisModel.JobStatusPending),
			AreaPath:    "Project\\Team",
			TotalItems:  10,
			TotalChunks: 2,
		}

		mockSvc.On("Start", mock.Anything, req).Return(resp, nil)

		body, _ := json.Marshal(req)
		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/start", bytes.NewBuffer(body))
		httpReq.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusAccepted, w.Code)
		var response map[string]analysisModel.JobResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, resp.ID, response["job"].ID)
		assert.Equal(t, 2, response["job"].TotalChunks)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/start", handler.StartAnalysis)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/start", bytes.NewBufferString("{"))
		httpReq.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w.Body.Bytes()))
		mockSvc.AssertNotCalled(t, "Start")
	})

	t.Run("validation error from service", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/start", handler.StartAnalysis)

		mockSvc.On("Start", mock.Anything, mock.Anything).
			Return(nil, analysisModel.ErrInvalidDateRange)

		body, _ := json.Marshal(analysisModel.StartAnalysisRequest{
			AreaPath: "Project\\Team",
			DateFrom: "2025-02-01",
			DateTo:   "2025-01-01",
		})
		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/start", bytes.NewBuffer(body))
		httpReq.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w.Body.Bytes()))
		mockSvc.AssertExpectations(t)
	})

	t.Run("internal error", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/start", handler.StartAnalysis)

		mockSvc.On("Start", mock.Anything, mock.Anything).
			Return(nil, errors.New("tracker unreachable"))

		body, _ := json.Marshal(analysisModel.StartAnalysisRequest{AreaPath: "Project\\Team"})
		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/start", bytes.NewBuffer(body))
		httpReq.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w.Body.Bytes()))
	})
}

func TestHandler_GetJob(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id", handler.GetJob)

		id := uuid.New()
		resp := &analysisModel.JobResponse{
			ID:              id.String(),
			Status:          string(analysisModel.JobStatusRunning),
			CompletedChunks: 1,
			TotalChunks:     3,
		}
		mockSvc.On("Get", mock.Anything, id).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/"+id.String(), nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]analysisModel.JobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "RUNNING", response["job"].Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id", handler.GetJob)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/not-a-uuid", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w.Body.Bytes()))
		mockSvc.AssertNotCalled(t, "Get")
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id", handler.GetJob)

		id := uuid.New()
		mockSvc.On("Get", mock.Anything, id).Return(nil, analysisModel.ErrJobNotFound)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/"+id.String(), nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "JOB_NOT_FOUND", errorCode(t, w.Body.Bytes()))
	})
}

func TestHandler_ListJobs(t *testing.T) {
	t.Run("success with defaults", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs", handler.ListJobs)

		resp := &analysisModel.JobListResponse{
			Jobs:  []*analysisModel.JobResponse{{ID: uuid.NewString()}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 50, 0).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusOK, w.Code)
		var response analysisModel.JobListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(1), response.Total)
		assert.Len(t, response.Jobs, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("pagination parameters", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs", handler.ListJobs)

		resp := &analysisModel.JobListResponse{Jobs: []*analysisModel.JobResponse{}, Total: 0}
		mockSvc.On("List", mock.Anything, 10, 20).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs?limit=10&offset=20", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("garbage pagination falls back to defaults", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs", handler.ListJobs)

		resp := &analysisModel.JobListResponse{Jobs: []*analysisModel.JobResponse{}, Total: 0}
		mockSvc.On("List", mock.Anything, 50, 0).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs?limit=abc&offset=-5", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestHandler_GetReport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id/report", handler.GetReport)

		id := uuid.New()
		report := metricsModel.NewReport()
		report.Developer("Alice").TotalWorkingHours = 8
		resp := &analysisModel.ReportResponse{
			JobID:  id.String(),
			Report: report,
		}
		mockSvc.On("Report", mock.Anything, id).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/"+id.String()+"/report", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusOK, w.Code)
		var response analysisModel.ReportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotNil(t, response.Report)
		assert.InDelta(t, 8, response.Report.Developers["Alice"].TotalWorkingHours, 1e-9)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not completed", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id/report", handler.GetReport)

		id := uuid.New()
		mockSvc.On("Report", mock.Anything, id).Return(nil, analysisModel.ErrJobNotCompleted)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/"+id.String()+"/report", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ANALYSIS_NOT_COMPLETED", errorCode(t, w.Body.Bytes()))
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.GET("/analysis/jobs/:id/report", handler.GetReport)

		id := uuid.New()
		mockSvc.On("Report", mock.Anything, id).Return(nil, analysisModel.ErrJobNotFound)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("GET", "/analysis/jobs/"+id.String()+"/report", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "JOB_NOT_FOUND", errorCode(t, w.Body.Bytes()))
	})
}

func TestHandler_ResumeJob(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/jobs/:id/resume", handler.ResumeJob)

		id := uuid.New()
		resp := &analysisModel.JobResponse{
			ID:     id.String(),
			Status: string(analysisModel.JobStatusPending),
		}
		mockSvc.On("Resume", mock.Anything, id).Return(resp, nil)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/jobs/"+id.String()+"/resume", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusAccepted, w.Code)
		var response map[string]analysisModel.JobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, id.String(), response["job"].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not resumable", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/jobs/:id/resume", handler.ResumeJob)

		id := uuid.New()
		mockSvc.On("Resume", mock.Anything, id).Return(nil, analysisModel.ErrJobNotResumable)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/jobs/"+id.String()+"/resume", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "JOB_NOT_RESUMABLE", errorCode(t, w.Body.Bytes()))
	})

	t.Run("already running", func(t *testing.T) {
		mockSvc := new(mockService)
		handler := New(mockSvc, zap.NewNop().Sugar())
		router := setupRouter()
		router.POST("/analysis/jobs/:id/resume", handler.ResumeJob)

		id := uuid.New()
		mockSvc.On("Resume", mock.Anything, id).Return(nil, analysisModel.ErrJobAlreadyRunning)

		w := httptest.NewRecorder()
		httpReq, _ := http.NewRequest("POST", "/analysis/jobs/"+id.String()+"/resume", nil)
		router.ServeHTTP(w, httpReq)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "JOB_NOT_RESUMABLE", errorCode(t, w.Body.Bytes()))
	})
}
