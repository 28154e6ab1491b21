package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		var captured int
		h := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.WriteHeader(http.StatusOK)
		}, "test")

		Convey("When it writes the status twice", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			captured = w.Code

			Convey("Then only the first status counts", func() {
				So(captured, ShouldEqual, http.StatusTeapot)
			})
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorType(200), ShouldEqual, "unknown")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(404), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestRouteOf(t *testing.T) {
	Convey("Given request paths", t, func() {
		So(routeOf("/matches/vol-1"), ShouldEqual, "/matches/{volunteerId}")
		So(routeOf("/matches/"), ShouldEqual, "/matches/{volunteerId}")
		So(routeOf("/healthz"), ShouldEqual, "/healthz")
	})
}
