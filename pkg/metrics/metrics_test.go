package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("school"),
				WithSubsystem("clubs"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.UpdateActivityCount(9)

			Convey("Then metric names and const labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() == "school_clubs_activities_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording signups by outcome", func() {
			m.RecordSignup("Chess Club", OutcomeOK)
			m.RecordSignup("Chess Club", OutcomeOK)
			m.RecordSignup("Chess Club", OutcomeFull)

			Convey("Then each outcome is counted separately", func() {
				So(testutil.ToFloat64(m.signups.WithLabelValues("Chess Club", OutcomeOK)), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.signups.WithLabelValues("Chess Club", OutcomeFull)), ShouldEqual, 1.0)
			})
		})

		Convey("When recording unregistrations", func() {
			m.RecordUnregister("Art Club", OutcomeNotRegistered)

			Convey("Then the counter increments", func() {
				So(testutil.ToFloat64(m.unregistrations.WithLabelValues("Art Club", OutcomeNotRegistered)), ShouldEqual, 1.0)
			})
		})

		Convey("When updating roster gauges", func() {
			m.UpdateRoster("Math Club", 3, 18)
			m.UpdateRoster("Math Club", 2, 18)

			Convey("Then the latest values win", func() {
				So(testutil.ToFloat64(m.participants.WithLabelValues("Math Club")), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.capacity.WithLabelValues("Math Club")), ShouldEqual, 18.0)
			})
		})

		Convey("When recording HTTP traffic and errors", func() {
			m.RecordHTTPRequest("signup", "POST", "200")
			m.RecordHTTPRequestDuration("signup", "POST", "200", 1.5)
			m.RecordErrorByEndpoint("signup", "POST", "client_error")
			m.RecordErrorByType("client_error", "medium")

			Convey("Then the exposition contains the series", func() {
				expected := `
# HELP mergington_activities_http_requests_total Total number of HTTP requests by endpoint and method
# TYPE mergington_activities_http_requests_total counter
mergington_activities_http_requests_total{endpoint="signup",method="POST",status_code="200"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "mergington_activities_http_requests_total")
				So(err, ShouldBeNil)
				So(testutil.ToFloat64(m.errorsByType.WithLabelValues("client_error", "medium")), ShouldEqual, 1.0)
			})
		})

		Convey("When recording latency and system metrics", func() {
			So(func() {
				m.RecordMutationLatency("signup", 0.02)
				m.UpdateSystemMemoryUsage(1 << 20)
				m.UpdateSystemGoroutineCount(12)
				m.RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When calling the package-level helpers", func() {
			So(func() {
				RecordSignup("Drama Club", OutcomeOK)
				RecordUnregister("Drama Club", OutcomeOK)
				UpdateRoster("Drama Club", 1, 20)
				UpdateActivityCount(9)
				RecordMutationLatency("unregister", 0.01)
				RecordHTTPRequest("activities", "GET", "200")
				RecordHTTPRequestDuration("activities", "GET", "200", 0.4)
				RecordErrorByEndpoint("activities", "GET", "not_found")
				RecordErrorByType("not_found", "medium")
				UpdateSystemMemoryUsage(2048)
				UpdateSystemGoroutineCount(5)
				RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				So(Global(), ShouldNotBeNil)
				So(testutil.ToFloat64(Global().participants.WithLabelValues("Drama Club")), ShouldEqual, 1.0)
				count, err := testutil.GatherAndCount(GetRegistry(), "mergington_activities_signups_total")
				So(err, ShouldBeNil)
				So(count, ShouldBeGreaterThan, 0)
			})
		})
	})
}
