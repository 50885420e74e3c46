package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	repomocks "github.com/Sri-Rahul/linkanalysis/internal/repository/mocks"
	"github.com/Sri-Rahul/linkanalysis/internal/service/mocks"
)

type handlerFixture struct {
	links  *mocks.LinkService
	repo   *repomocks.LinkRepository
	events *repomocks.EventRepository
	router http.Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		links:  &mocks.LinkService{},
		repo:   &repomocks.LinkRepository{},
		events: &repomocks.EventRepository{},
	}
	engine := analytics.NewEngine(f.repo, f.events, "http://localhost:8080")
	handler := NewHandler(f.links, engine, "http://localhost:8080")
	f.router = NewRouter(handler, false)
	return f
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(v))
	return &body
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrLinkNotFound, http.StatusNotFound},
		{domain.ErrLinkGone, http.StatusGone},
		{domain.ErrAliasTaken, http.StatusConflict},
		{domain.ErrInvalidAlias, http.StatusBadRequest},
		{domain.ErrMissingDestination, http.StatusBadRequest},
		{domain.ErrInvalidDestination, http.StatusBadRequest},
		{domain.ErrInvalidExpiry, http.StatusBadRequest},
		{domain.ErrInvalidDimension, http.StatusBadRequest},
		{domain.ErrOwnerRequired, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFromError(tt.err), "error %v", tt.err)
	}
}

func TestHandler_CreateLink(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    any
		ownerHeader    string
		setupMocks     func(*mocks.LinkService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "successful creation",
			requestBody: domain.CreateLinkRequest{DestinationURL: "https://example.com"},
			setupMocks: func(m *mocks.LinkService) {
				m.On("CreateLink", mock.Anything, domain.CreateLinkRequest{DestinationURL: "https://example.com"}, (*string)(nil)).
					Return(&domain.Link{ID: 1, Code: "abc123", Destination: "https://example.com", Active: true, CreatedAt: now}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"short_url":"http://localhost:8080/abc123"`,
		},
		{
			name:        "owner header is forwarded",
			requestBody: domain.CreateLinkRequest{DestinationURL: "https://example.com"},
			ownerHeader: "alice",
			setupMocks: func(m *mocks.LinkService) {
				alice := "alice"
				m.On("CreateLink", mock.Anything, mock.AnythingOfType("domain.CreateLinkRequest"), &alice).
					Return(&domain.Link{ID: 1, Code: "abc123", Active: true, CreatedAt: now}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not json",
			setupMocks:     func(m *mocks.LinkService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON",
		},
		{
			name:        "missing destination",
			requestBody: domain.CreateLinkRequest{},
			setupMocks: func(m *mocks.LinkService) {
				m.On("CreateLink", mock.Anything, mock.AnythingOfType("domain.CreateLinkRequest"), (*string)(nil)).
					Return(nil, domain.ErrMissingDestination)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "alias taken",
			requestBody: domain.CreateLinkRequest{DestinationURL: "https://example.com", CustomAlias: "my-link"},
			setupMocks: func(m *mocks.LinkService) {
				m.On("CreateLink", mock.Anything, mock.AnythingOfType("domain.CreateLinkRequest"), (*string)(nil)).
					Return(nil, domain.ErrAliasTaken)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			tt.setupMocks(f.links)

			var body bytes.Buffer
			if jsonStr, ok := tt.requestBody.(string); ok {
				body.WriteString(jsonStr)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/urls", &body)
			req.Header.Set("Content-Type", "application/json")
			if tt.ownerHeader != "" {
				req.Header.Set("X-Owner-ID", tt.ownerHeader)
			}

			w := f.do(req)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			f.links.AssertExpectations(t)
		})
	}
}

func TestHandler_GetLink(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("GetLink", mock.Anything, "abc123").
		Return(&domain.Link{ID: 1, Code: "abc123", Destination: "https://example.com", Clicks: 7, Active: true}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/urls/abc123", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info domain.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "abc123", info.Code)
	assert.Equal(t, "http://localhost:8080/abc123", info.ShortURL)
	assert.Equal(t, int64(7), info.Clicks)
}

func TestHandler_GetLink_NotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("GetLink", mock.Anything, "nope").Return(nil, domain.ErrLinkNotFound)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/urls/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListLinks(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("ListLinks", mock.Anything, "alice").
		Return([]*domain.Link{{ID: 1, Code: "abc123", Active: true}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
	req.Header.Set("X-Owner-ID", "alice")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []domain.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "abc123", infos[0].Code)
}

func TestHandler_ListLinks_MissingOwner(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/urls", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.links.AssertNotCalled(t, "ListLinks", mock.Anything, mock.Anything)
}

func TestHandler_UpdateLink(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("UpdateLink", mock.Anything, "abc123", (*string)(nil), mock.AnythingOfType("domain.LinkUpdate")).
		Return(&domain.Link{ID: 1, Code: "abc123", Active: false}, nil)

	body := jsonBody(t, map[string]any{"active": false})
	req := httptest.NewRequest(http.MethodPatch, "/api/urls/abc123", body)

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var info domain.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.False(t, info.Active)
}

func TestHandler_DeleteLink(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("DeleteLink", mock.Anything, "abc123", (*string)(nil)).Return(nil)

	w := f.do(httptest.NewRequest(http.MethodDelete, "/api/urls/abc123", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_QRCode(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("GetLink", mock.Anything, "abc123").
		Return(&domain.Link{ID: 1, Code: "abc123", Active: true}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/urls/abc123/qr", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestHandler_QRCode_NotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("GetLink", mock.Anything, "nope").Return(nil, domain.ErrLinkNotFound)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/urls/nope/qr", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Redirect(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("Resolve", mock.Anything, "abc123", mock.AnythingOfType("domain.VisitContext")).
		Return("https://example.com", nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 Firefox/128.0")
	req.Header.Set("Referer", "https://news.ycombinator.com/")

	w := f.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))

	visit := f.links.Calls[0].Arguments.Get(2).(domain.VisitContext)
	assert.Equal(t, "Mozilla/5.0 Firefox/128.0", visit.UserAgent)
	assert.Equal(t, "https://news.ycombinator.com/", visit.Referrer)
}

func TestHandler_Redirect_ForwardedFor(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("Resolve", mock.Anything, "abc123", mock.AnythingOfType("domain.VisitContext")).
		Return("https://example.com", nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	w := f.do(req)
	require.Equal(t, http.StatusFound, w.Code)

	visit := f.links.Calls[0].Arguments.Get(2).(domain.VisitContext)
	assert.Equal(t, "203.0.113.7", visit.IPAddress)
}

func TestHandler_Redirect_NotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("Resolve", mock.Anything, "nope", mock.AnythingOfType("domain.VisitContext")).
		Return("", domain.ErrLinkNotFound)

	w := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Redirect_Gone(t *testing.T) {
	f := newHandlerFixture(t)
	f.links.On("Resolve", mock.Anything, "expired", mock.AnythingOfType("domain.VisitContext")).
		Return("", domain.ErrLinkGone)

	w := f.do(httptest.NewRequest(http.MethodGet, "/expired", nil))
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestHandler_Summary(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("ListLinks", mock.Anything, "alice").
		Return([]*domain.Link{{ID: 1, Code: "abc123", Clicks: 12, Active: true}}, nil)
	f.events.On("RecentEventsByOwner", mock.Anything, "alice", 10).Return([]*domain.VisitEvent{}, nil)
	f.events.On("DeviceTallyByOwner", mock.Anything, "alice").
		Return([]domain.CategoryCount{{Category: "desktop", Count: 12}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set("X-Owner-ID", "alice")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.AnalyticsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalURLs)
	assert.Equal(t, int64(12), summary.TotalClicks)
}

func TestHandler_Summary_MissingOwner(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ClicksOverTime(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("GetLink", mock.Anything, "abc123").Return(&domain.Link{ID: 7, Code: "abc123"}, nil)
	f.events.On("ClicksPerDay", mock.Anything, int64(7), mock.AnythingOfType("time.Time")).
		Return([]domain.SeriesPoint{{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Clicks: 3}}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/urls/abc123/clicks?window=week", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var series []domain.SeriesPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series, 1)
	assert.Equal(t, int64(3), series[0].Clicks)
}

func TestHandler_Breakdown_DefaultsToDevice(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("GetLink", mock.Anything, "abc123").Return(&domain.Link{ID: 7, Code: "abc123"}, nil)
	f.events.On("CountByDimension", mock.Anything, int64(7), domain.DimensionDevice).
		Return([]domain.CategoryCount{{Category: "desktop", Count: 5}}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/urls/abc123/breakdown", nil))
	require.Equal(t, http.StatusOK, w.Code)
	f.events.AssertExpectations(t)
}

func TestHandler_Breakdown_InvalidDimension(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/urls/abc123/breakdown?dimension=referrer", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Events(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("GetLink", mock.Anything, "abc123").Return(&domain.Link{ID: 7, Code: "abc123"}, nil)
	f.events.On("EventsByLink", mock.Anything, int64(7), 5).
		Return([]*domain.VisitEvent{{ID: "evt-1", LinkID: 7}}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/urls/abc123/events?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	f.events.AssertExpectations(t)
}

func TestHandler_Events_InvalidLimit(t *testing.T) {
	f := newHandlerFixture(t)

	for _, limit := range []string{"0", "-1", "abc"} {
		w := f.do(httptest.NewRequest(http.MethodGet, "/api/analytics/urls/abc123/events?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit %q", limit)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	f := newHandlerFixture(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/urls"},
		{http.MethodPut, "/api/urls/abc123"},
		{http.MethodPost, "/api/analytics/summary"},
		{http.MethodPost, "/api/analytics/urls/abc123/clicks"},
		{http.MethodPost, "/api/urls/abc123/qr"},
	}

	for _, tt := range tests {
		w := f.do(httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRouter_Health(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	f := newHandlerFixture(t)

	// A request through the middleware gives the counter vec a child to render
	f.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	w := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/urls", "/api/urls"},
		{"/api/urls/abc123", "/api/urls/{code}"},
		{"/api/urls/abc123/qr", "/api/urls/{code}/qr"},
		{"/api/analytics/summary", "/api/analytics/summary"},
		{"/api/analytics/urls/abc123/clicks", "/api/analytics/urls/{code}/clicks"},
		{"/metrics", "/metrics"},
		{"/health", "/health"},
		{"/abc123", "/{code}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, routeLabel(tt.path), "path %s", tt.path)
	}
}
