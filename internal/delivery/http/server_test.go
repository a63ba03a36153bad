package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haltestellenmonitor/internal/config"
	httpDelivery "github.com/haltestellenmonitor/internal/delivery/http"
	"github.com/haltestellenmonitor/internal/delivery/http/handler"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/infrastructure/stopdata"
	"github.com/haltestellenmonitor/internal/repository/memory"
	"github.com/haltestellenmonitor/internal/usecase"
)

type MockTransitRepository struct {
	mock.Mock
}

func (m *MockTransitRepository) FetchDepartures(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepartureResult), args.Error(1)
}

func (m *MockTransitRepository) FetchDepartureMonitor(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepartureResult), args.Error(1)
}

func (m *MockTransitRepository) FetchTripStopTimes(ctx context.Context, q domain.TripQuery) ([]domain.StopSequenceItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StopSequenceItem), args.Error(1)
}

// disabledPlatform - платформа без live activities
type disabledPlatform struct{}

func (disabledPlatform) ActivitiesEnabled() bool { return false }

func (disabledPlatform) Request(context.Context, domain.ActivityAttributes, domain.ActivityContent) (repository.Activity, error) {
	return nil, domain.ErrActivitiesDisabled
}

type nopNotifier struct{}

func (nopNotifier) Deliver(context.Context, domain.ActivityRequest) error { return nil }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type testServer struct {
	server  *httpDelivery.Server
	transit *MockTransitRepository
}

func newTestServer(t *testing.T, checks map[string]handler.HealthCheck) *testServer {
	t.Helper()
	logger := zap.NewNop()

	directory, err := stopdata.Load()
	require.NoError(t, err)

	transit := &MockTransitRepository{}
	opts := usecase.PollOptions{
		SuccessInterval: 30 * time.Second,
		FetchTimeout:    time.Second,
		After:           func(time.Duration) <-chan time.Time { return make(chan time.Time) },
	}

	monitorUC := usecase.NewMonitorUsecase(transit, directory, opts, 40, logger)
	t.Cleanup(monitorUC.Close)
	stopUC := usecase.NewStopUsecase(directory, memory.NewKeyValueStore(), "", false, logger)
	activityUC := usecase.NewLiveActivityUsecase(disabledPlatform{}, memory.NewPushTokenHistory(), nopNotifier{}, directory, time.Minute, logger)

	cfg := &config.Config{}
	server := httpDelivery.NewServer(cfg, logger, httpDelivery.Handlers{
		Stop:     handler.NewStopHandler(stopUC, logger),
		Board:    handler.NewBoardHandler(monitorUC, logger),
		Trip:     handler.NewTripHandler(monitorUC, stopUC, logger),
		Activity: handler.NewActivityHandler(activityUC, logger),
		Favorite: handler.NewFavoriteHandler(stopUC, logger),
		Health:   handler.NewHealthHandler(checks),
	})
	return &testServer{server: server, transit: transit}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestServer_Stops(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("search", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/stops?q=platz", nil)
		require.Equal(t, http.StatusOK, status)

		var list struct {
			Stops []domain.Stop `json:"stops"`
			Total int           `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Greater(t, list.Total, 3)
		for _, stop := range list.Stops {
			assert.Contains(t, strings.ToLower(stop.Name), "platz")
		}
	})

	t.Run("get by gid", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28", nil)
		require.Equal(t, http.StatusOK, status)

		var stop domain.Stop
		require.NoError(t, json.Unmarshal(env.Data, &stop))
		assert.Equal(t, "Hauptbahnhof", stop.Name)
		assert.Equal(t, 33000028, stop.StopID)
	})

	t.Run("escaped gid", func(t *testing.T) {
		status, _ := s.do(t, http.MethodGet, "/api/v1/stops/de%3A14612%3A37", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("unknown gid", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:999", nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "STOP_NOT_FOUND", env.Error.Code)
	})

	t.Run("nearest", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/nearest?lat=51.0401&lon=13.7325&limit=2", nil)
		require.Equal(t, http.StatusOK, status)

		var list struct {
			Stops []domain.Stop `json:"stops"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list.Stops, 2)
		assert.Equal(t, "Hauptbahnhof", list.Stops[0].Name)
		require.NotNil(t, list.Stops[0].Distance)
	})

	t.Run("nearest without coordinates", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/nearest", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/nope", nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestServer_Departures(t *testing.T) {
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	tram := domain.StopEvent{Mode: domain.ModeTram, PublishedLineName: "3", DestinationText: "Coschütz",
		LineRef: "voe:11003: :H", ThisCall: domain.CallAtStop{TimetabledTime: base.Add(4 * time.Minute)}}
	bus := domain.StopEvent{Mode: domain.ModeBus, PublishedLineName: "66", DestinationText: "Lockwitz",
		LineRef: "voe:21066: :R", ThisCall: domain.CallAtStop{TimetabledTime: base.Add(time.Minute)}, Seq: 1}

	t.Run("filtered by mode", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.transit.On("FetchDepartures", mock.Anything, domain.DepartureQuery{StopGID: "de:14612:28", Limit: 40}).
			Return(&domain.DepartureResult{Events: []domain.StopEvent{tram, bus}}, nil)

		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28/departures?modes=tram", nil)
		require.Equal(t, http.StatusOK, status)

		var view struct {
			Events []domain.StopEvent `json:"events"`
			Total  int                `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Equal(t, 2, view.Total)
		require.Len(t, view.Events, 1)
		assert.Equal(t, "3", view.Events[0].PublishedLineName)
	})

	t.Run("explicit time", func(t *testing.T) {
		s := newTestServer(t, nil)
		at := time.Date(2030, 1, 2, 8, 30, 0, 0, time.UTC)
		s.transit.On("FetchDepartures", mock.Anything, mock.MatchedBy(func(q domain.DepartureQuery) bool {
			return q.Time.Equal(at) && q.Limit == 10
		})).Return(&domain.DepartureResult{Events: []domain.StopEvent{}}, nil)

		status, _ := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28/departures?time=2030-01-02T08:30:00Z&limit=10", nil)
		assert.Equal(t, http.StatusOK, status)
		s.transit.AssertExpectations(t)
	})

	t.Run("bad mode", func(t *testing.T) {
		s := newTestServer(t, nil)
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28/departures?modes=plane", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_TRANSPORT_MODE", env.Error.Code)
	})

	t.Run("bad time", func(t *testing.T) {
		s := newTestServer(t, nil)
		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28/departures?time=tomorrow", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "must be RFC3339", env.Error.Details["time"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.transit.On("FetchDepartures", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: status 503", domain.ErrUpstream))

		status, env := s.do(t, http.MethodGet, "/api/v1/stops/de:14612:28/departures", nil)
		assert.Equal(t, http.StatusBadGateway, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UPSTREAM_ERROR", env.Error.Code)
	})
}

func TestServer_BoardSession(t *testing.T) {
	s := newTestServer(t, nil)
	s.transit.On("FetchDepartures", mock.Anything, mock.Anything).
		Return(&domain.DepartureResult{Events: []domain.StopEvent{}}, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/boards", map[string]interface{}{"stop_id": "de:14612:5"})
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	path := "/api/v1/boards/" + created.ID
	require.Eventually(t, func() bool {
		status, env := s.do(t, http.MethodGet, path, nil)
		if status != http.StatusOK {
			return false
		}
		var view struct {
			Loaded bool `json:"loaded"`
		}
		return json.Unmarshal(env.Data, &view) == nil && view.Loaded
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = s.do(t, http.MethodPut, path, map[string]interface{}{"stop_id": "de:14612:13"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, path+"/refresh", nil)
	assert.Equal(t, http.StatusAccepted, status)

	status, _ = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, env = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)
}

func TestServer_BoardValidation(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/boards", map[string]interface{}{"stop_id": "Hauptbahnhof"})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	assert.Equal(t, "stopgid", env.Error.Details["StopGID"])

	status, env = s.do(t, http.MethodPost, "/api/v1/boards", map[string]interface{}{"stop_id": "de:14612:999"})
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STOP_NOT_FOUND", env.Error.Code)
}

func TestServer_Trip(t *testing.T) {
	s := newTestServer(t, nil)
	tripCode := 77
	event := domain.StopEvent{
		Kind: domain.StopEventKindTrip,
		Mode: domain.ModeTram,
		Transportation: &domain.Transportation{
			ID:       "voe:11004: :H:j25",
			Number:   "4",
			TripCode: &tripCode,
		},
		ThisCall: domain.CallAtStop{TimetabledTime: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)},
	}
	s.transit.On("FetchTripStopTimes", mock.Anything, mock.MatchedBy(func(q domain.TripQuery) bool {
		return q.LineID == "voe:11004: :H:j25" && q.TripCode == 77 && q.StopGID == "de:14612:28"
	})).Return([]domain.StopSequenceItem{{ID: "de:14612:28:1:1", Name: "Hauptbahnhof"}}, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/trips", map[string]interface{}{
		"stop_id": "de:14612:28",
		"event":   event,
	})
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	require.Eventually(t, func() bool {
		status, env := s.do(t, http.MethodGet, "/api/v1/trips/"+created.ID, nil)
		if status != http.StatusOK {
			return false
		}
		var view struct {
			Stops []json.RawMessage `json:"stops"`
		}
		return json.Unmarshal(env.Data, &view) == nil && len(view.Stops) == 1
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/trips/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/trips", map[string]interface{}{
		"stop_id": "de:14612:28",
		"event":   domain.StopEvent{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Favorites(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/favorites/33000037", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"stop_id":33000037,"favorite":true}`, string(env.Data))

	status, env = s.do(t, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Stops []domain.Stop `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Stops, 1)
	assert.Equal(t, "Postplatz", list.Stops[0].Name)

	status, env = s.do(t, http.MethodPost, "/api/v1/favorites/33000037/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"stop_id":33000037,"favorite":false}`, string(env.Data))

	status, _ = s.do(t, http.MethodPost, "/api/v1/favorites/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/favorites/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STOP_NOT_FOUND", env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/api/v1/favorites/default", nil)
	require.Equal(t, http.StatusOK, status)
	var stop domain.Stop
	require.NoError(t, json.Unmarshal(env.Data, &stop))
	assert.Equal(t, "de:14612:28", stop.GID)

	status, _ = s.do(t, http.MethodGet, "/api/v1/favorites/default?lat=51.05", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_ActivitiesDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	event := domain.StopEvent{
		Mode:              domain.ModeTram,
		PublishedLineName: "11",
		LineRef:           "voe:11011: :H",
		ThisCall:          domain.CallAtStop{TimetabledTime: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)},
	}
	status, env := s.do(t, http.MethodPost, "/api/v1/activities", map[string]interface{}{
		"stop_id": "de:14612:28",
		"event":   event,
	})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACTIVITIES_DISABLED", env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/api/v1/activities", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, _ = s.do(t, http.MethodDelete, "/api/v1/activities/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, map[string]handler.HealthCheck{
			"store": func(context.Context) error { return nil },
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		resp, err := s.server.App().Test(req, 5000)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("degraded", func(t *testing.T) {
		s := newTestServer(t, map[string]handler.HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		resp, err := s.server.App().Test(req, 5000)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}
