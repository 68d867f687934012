package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourinsights/internal/config"
	apperrors "tourinsights/internal/errors"
	"tourinsights/internal/report"
	"tourinsights/internal/services"
)

type stubReportService struct {
	generated   report.Comprehensive
	generateErr error
	latest      report.Comprehensive
	latestErr   error
	gotOpts     services.GenerateOptions
}

func (s *stubReportService) GenerateComprehensive(_ context.Context, opts services.GenerateOptions) (report.Comprehensive, error) {
	s.gotOpts = opts
	return s.generated, s.generateErr
}

func (s *stubReportService) Latest(_ context.Context) (report.Comprehensive, error) {
	return s.latest, s.latestErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(svc ReportService) http.Handler {
	return NewRouter(RouterDeps{
		ReportService: svc,
		Version:       "test",
		RateLimit:     config.RateLimitConfig{Enabled: false},
		Logger:        testLogger(),
	})
}

func TestReportHandler_Generate(t *testing.T) {
	svc := &stubReportService{
		generated: report.Comprehensive{Metadata: report.Metadata{ID: "report-1"}},
	}
	router := testRouter(svc)

	body := strings.NewReader(`{"horizon_days": 14, "days_back": 180}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, services.GenerateOptions{HorizonDays: 14, DaysBack: 180}, svc.gotOpts)

	var resp report.Comprehensive
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report-1", resp.Metadata.ID)
}

func TestReportHandler_GenerateEmptyBody(t *testing.T) {
	svc := &stubReportService{
		generated: report.Comprehensive{Metadata: report.Metadata{ID: "report-1"}},
	}
	router := testRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, services.GenerateOptions{}, svc.gotOpts)
}

func TestReportHandler_GenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "horizon too short", body: `{"horizon_days": 3}`},
		{name: "horizon too long", body: `{"horizon_days": 365}`},
		{name: "days back too small", body: `{"days_back": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubReportService{}
			router := testRouter(svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
		})
	}
}

func TestReportHandler_GenerateMalformedJSON(t *testing.T) {
	router := testRouter(&stubReportService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{"horizon_days":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_GenerateDataUnavailable(t *testing.T) {
	svc := &stubReportService{
		generateErr: fmt.Errorf("loading datasets: %w", apperrors.ErrDataUnavailable),
	}
	router := testRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_DATA_SOURCE")
}

func TestReportHandler_Latest(t *testing.T) {
	svc := &stubReportService{
		latest: report.Comprehensive{Metadata: report.Metadata{ID: "report-9"}},
	}
	router := testRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp report.Comprehensive
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report-9", resp.Metadata.ID)
}

func TestReportHandler_LatestNotFound(t *testing.T) {
	svc := &stubReportService{
		latestErr: fmt.Errorf("querying latest report: %w", apperrors.ErrRecordNotFound),
	}
	router := testRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "REPORT_NOT_FOUND")
}

func TestRouter_Metrics(t *testing.T) {
	router := testRouter(&stubReportService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := testRouter(&stubReportService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
