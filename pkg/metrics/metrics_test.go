package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGuard(t *testing.T) {
	before := testutil.ToFloat64(GuardDecisions.WithLabelValues("require_admin", "deny"))
	ObserveGuard("require_admin", false)
	after := testutil.ToFloat64(GuardDecisions.WithLabelValues("require_admin", "deny"))
	assert.Equal(t, before+1, after)
}

func TestObserveMapping(t *testing.T) {
	before := testutil.ToFloat64(MappingOperations.WithLabelValues("map_user_to_org_role", "conflict"))
	ObserveMapping("map_user_to_org_role", "conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(MappingOperations.WithLabelValues("map_user_to_org_role", "conflict")))
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Register()
	Register()

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/metrics", Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	ObserveGuard("require_authenticated", true)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "bezs_rbac_guard_decisions_total"))
	assert.True(t, strings.Contains(body, `bezs_http_request_duration_seconds_count{method="GET",pattern="/ping",status="200"}`))
}
