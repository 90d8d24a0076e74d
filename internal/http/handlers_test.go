package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"radmon/internal/analytics"
	"radmon/internal/config"
	"radmon/internal/domain"
	"radmon/internal/export"
	"radmon/internal/repository"
	servicecompute "radmon/internal/service/compute"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReadingStore struct {
	readings []domain.Reading
}

func (f *fakeReadingStore) ListByDeviceBetween(_ context.Context, _ string, from, to time.Time) ([]domain.Reading, error) {
	out := []domain.Reading{}
	for _, r := range f.readings {
		if !r.MeasuredAt.Before(from) && !r.MeasuredAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReadingStore) LatestByDevice(_ context.Context, _ string) (*domain.Reading, error) {
	if len(f.readings) == 0 {
		return nil, nil
	}
	latest := f.readings[len(f.readings)-1]
	return &latest, nil
}

func (f *fakeReadingStore) CountByDeviceSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return len(f.readings), nil
}

type fakeHealthStore struct {
	snapshot *domain.DeviceHealthSnapshot
}

func (f *fakeHealthStore) Upsert(_ context.Context, snapshot *domain.DeviceHealthSnapshot) error {
	f.snapshot = snapshot
	return nil
}

func (f *fakeHealthStore) Get(_ context.Context, _ string) (*domain.DeviceHealthSnapshot, error) {
	return f.snapshot, nil
}

type fakeMetricStore struct {
	metrics []*domain.ComputedMetric
}

func (f *fakeMetricStore) Create(_ context.Context, metric *domain.ComputedMetric) error {
	f.metrics = append(f.metrics, metric)
	return nil
}

func (f *fakeMetricStore) ListRecent(_ context.Context, _ repository.ComputedMetricFilters) ([]domain.ComputedMetric, error) {
	out := make([]domain.ComputedMetric, len(f.metrics))
	for i, m := range f.metrics {
		out[i] = *m
	}
	return out, nil
}

type fakeAuditStore struct {
	entries []*domain.AuditLog
}

func (f *fakeAuditStore) Create(_ context.Context, entry *domain.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAlertReader struct {
	alerts []domain.Alert
	acked  []string
}

func (f *fakeAlertReader) ListByDevice(_ context.Context, _ string, _ int) ([]domain.Alert, error) {
	return f.alerts, nil
}

func (f *fakeAlertReader) Acknowledge(_ context.Context, alertID string) error {
	for _, a := range f.alerts {
		if a.ID == alertID {
			f.acked = append(f.acked, alertID)
			return nil
		}
	}
	return fmt.Errorf("alert not found: id=%s", alertID)
}

type handlerFixture struct {
	server   *httptest.Server
	readings *fakeReadingStore
	health   *fakeHealthStore
	metrics  *fakeMetricStore
	audit    *fakeAuditStore
	alerts   *fakeAlertReader
}

func setupHandler(t *testing.T) *handlerFixture {
	cfg, err := config.Load()
	require.NoError(t, err)

	logger := zap.NewNop()
	f := &handlerFixture{
		readings: &fakeReadingStore{},
		health:   &fakeHealthStore{},
		metrics:  &fakeMetricStore{},
		audit:    &fakeAuditStore{},
		alerts:   &fakeAlertReader{},
	}

	engine := analytics.NewEngine(cfg, f.readings, f.health, logger)
	compute := servicecompute.NewComputeService(engine, f.metrics, f.audit, logger)
	handler := NewAdminHandler(compute, f.alerts, f.readings, f.health,
		export.NewReadingsExporter(logger), logger)

	f.server = httptest.NewServer(NewRouter(handler))
	t.Cleanup(f.server.Close)
	return f
}

func (f *handlerFixture) post(t *testing.T, path, body string) (*http.Response, apiResponse) {
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func seedReadings(f *handlerFixture, deviceID string, base time.Time, values ...float64) {
	for i, v := range values {
		at := base.Add(time.Duration(i) * time.Hour)
		f.readings.readings = append(f.readings.readings, domain.Reading{
			ID: uuid.New().String(), DeviceID: deviceID,
			MeasuredAt: at, Value: v, Unit: "µSv/h",
		})
	}
}

func TestComputeCumulative_StoresMetricAndAudit(t *testing.T) {
	f := setupHandler(t)
	deviceID := uuid.New().String()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedReadings(f, deviceID, base, 1.0, 1.0)

	body := fmt.Sprintf(`{"device_id": %q, "from": %q, "to": %q}`,
		deviceID, base.Format(time.RFC3339), base.Add(2*time.Hour).Format(time.RFC3339))
	resp, envelope := f.post(t, "/api/admin/compute/cumulative", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)

	require.Len(t, f.metrics.metrics, 1)
	assert.Equal(t, domain.MetricCumulativeDose, f.metrics.metrics[0].MetricType)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "compute_cumulative_dose", f.audit.entries[0].Action)
}

func TestComputeCumulative_MissingDeviceID(t *testing.T) {
	f := setupHandler(t)

	resp, envelope := f.post(t, "/api/admin/compute/cumulative",
		`{"from": "2026-03-01T00:00:00Z", "to": "2026-03-02T00:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "device_id")
}

func TestComputeCumulative_InvalidWindow(t *testing.T) {
	f := setupHandler(t)

	body := fmt.Sprintf(`{"device_id": %q, "from": "2026-03-02T00:00:00Z", "to": "2026-03-01T00:00:00Z"}`,
		uuid.New().String())
	resp, _ := f.post(t, "/api/admin/compute/cumulative", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputePredict_RequiresPositiveThreshold(t *testing.T) {
	f := setupHandler(t)

	body := fmt.Sprintf(`{"device_id": %q, "from": "2026-03-01T00:00:00Z", "to": "2026-03-02T00:00:00Z"}`,
		uuid.New().String())
	resp, envelope := f.post(t, "/api/admin/compute/predict", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, envelope.Error, "threshold")
}

func TestComputeHealth_ReturnsSnapshot(t *testing.T) {
	f := setupHandler(t)
	deviceID := uuid.New().String()
	seedReadings(f, deviceID, time.Now().Add(-3*time.Hour), 1, 1, 1)

	body := fmt.Sprintf(`{"device_id": %q}`, deviceID)
	resp, envelope := f.post(t, "/api/admin/compute/health", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
	require.NotNil(t, f.health.snapshot)
	assert.Equal(t, deviceID, f.health.snapshot.DeviceID)
}

func TestListComputed_ReturnsStoredMetrics(t *testing.T) {
	f := setupHandler(t)
	f.metrics.metrics = append(f.metrics.metrics, &domain.ComputedMetric{
		ID:         uuid.New().String(),
		MetricType: domain.MetricEWMA,
		Value:      json.RawMessage(`{}`),
	})

	resp, err := http.Get(f.server.URL + "/api/admin/computed")
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
}

func TestAcknowledgeAlert(t *testing.T) {
	f := setupHandler(t)
	alertID := uuid.New().String()
	f.alerts.alerts = []domain.Alert{{ID: alertID, Level: domain.AlertLevelWarning}}

	resp, envelope := f.post(t, "/api/admin/alerts/acknowledge",
		fmt.Sprintf(`{"alert_id": %q}`, alertID))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
	assert.Equal(t, []string{alertID}, f.alerts.acked)
}

func TestAcknowledgeAlert_NotFound(t *testing.T) {
	f := setupHandler(t)

	resp, _ := f.post(t, "/api/admin/alerts/acknowledge",
		fmt.Sprintf(`{"alert_id": %q}`, uuid.New().String()))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetDeviceHealth_NoSnapshot(t *testing.T) {
	f := setupHandler(t)

	resp, err := http.Get(f.server.URL + "/api/admin/devices/health?device_id=" + uuid.New().String())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportReadings_ReturnsWorkbook(t *testing.T) {
	f := setupHandler(t)
	deviceID := uuid.New().String()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedReadings(f, deviceID, base, 0.5, 0.7)

	url := fmt.Sprintf("%s/api/admin/export/readings?device_id=%s&from=%s&to=%s",
		f.server.URL, deviceID,
		base.Format(time.RFC3339), base.Add(2*time.Hour).Format(time.RFC3339))
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupHandler(t)

	resp, err := http.Get(f.server.URL + "/api/admin/compute/cumulative")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
