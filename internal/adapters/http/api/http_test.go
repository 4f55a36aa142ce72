package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/mergington/internal/adapters/http/api"
	service "github.com/okian/mergington/internal/app"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// brokenDeps fails every call with an error the API does not know.
type brokenDeps struct{}

var errBackend = errors.New("backend unavailable")

func (brokenDeps) List(context.Context) (map[string]model.Activity, error) {
	return nil, errBackend
}

func (brokenDeps) Get(context.Context, string) (model.Activity, error) {
	return model.Activity{}, errBackend
}

func (brokenDeps) Signup(context.Context, string, string) (model.Confirmation, error) {
	return model.Confirmation{}, errBackend
}

func (brokenDeps) Unregister(context.Context, string, string) (model.Confirmation, error) {
	return model.Confirmation{}, errBackend
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func newMux(t *testing.T, seed ...model.Activity) (*http.ServeMux, *service.Service) {
	t.Helper()
	opts := []service.Option{
		service.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))),
	}
	if len(seed) > 0 {
		opts = append(opts, service.WithSeed(seed))
	}
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var body errorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func participants(mux http.Handler, name string) []string {
	w := do(mux, http.MethodGet, "/activities/"+url.PathEscape(name), "", "")
	var view types.ActivityView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	return view.Participants
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux(t)

		Convey("Then the health endpoint serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "mergington_activities")
		})

		Convey("Then the stats endpoint reports the registry", func() {
			w := do(mux, http.MethodGet, "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["activities"], ShouldEqual, 9.0)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Then a wrong method on a known path is 405", func() {
			So(do(mux, http.MethodGet, "/activities/Chess%20Club/signup", "", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/activities", "", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then every response carries a request ID", func() {
			w := do(mux, http.MethodGet, "/activities", "", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/activities", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})
	})
}

func TestActivitiesHandler_List(t *testing.T) {
	Convey("Given the default activities", t, func() {
		mux, _ := newMux(t)

		Convey("When listing activities", func() {
			w := do(mux, http.MethodGet, "/activities", "", "")

			Convey("Then every activity is returned keyed by name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var list map[string]types.ActivityView
				So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
				So(len(list), ShouldEqual, 9)
				chess := list["Chess Club"]
				So(chess.MaxParticipants, ShouldEqual, 12)
				So(chess.Participants, ShouldResemble, []string{"michael@mergington.edu", "daniel@mergington.edu"})
				So(chess.Schedule, ShouldNotBeEmpty)
			})
		})

		Convey("When getting one activity", func() {
			w := do(mux, http.MethodGet, "/activities/Chess%20Club", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var view types.ActivityView
			So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
			So(view.MaxParticipants, ShouldEqual, 12)
		})

		Convey("When getting an unknown activity", func() {
			w := do(mux, http.MethodGet, "/activities/Nonexistent%20Club", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w), ShouldResemble, errorBody{Code: "not_found", Message: "Activity not found", Detail: "Activity not found"})
		})

		Convey("When an activity has an empty roster", func() {
			empty, _ := newMux(t, model.Activity{Name: "Robotics", MaxParticipants: 3})
			w := do(empty, http.MethodGet, "/activities", "", "")

			Convey("Then participants is an empty array, not null", func() {
				So(w.Body.String(), ShouldContainSubstring, `"participants":[]`)
			})
		})
	})
}

func TestActivitiesHandler_Signup(t *testing.T) {
	Convey("Given the default activities", t, func() {
		mux, _ := newMux(t)

		Convey("When a new student signs up via query parameter", func() {
			w := do(mux, http.MethodPost, "/activities/Chess%20Club/signup?email=new@mergington.edu", "", "")

			Convey("Then the signup is confirmed and the roster grows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var msg types.Message
				So(json.Unmarshal(w.Body.Bytes(), &msg), ShouldBeNil)
				So(msg.Message, ShouldEqual, "Signed up new@mergington.edu for Chess Club")
				So(len(participants(mux, "Chess Club")), ShouldEqual, 3)
			})

			Convey("And signing up again in another case is rejected", func() {
				w := do(mux, http.MethodPost, "/activities/Chess%20Club/signup?email=NEW@mergington.edu", "", "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "already_registered")
				So(decodeError(w).Detail, ShouldEqual, "Student is already signed up")
				So(len(participants(mux, "Chess Club")), ShouldEqual, 3)
			})
		})

		Convey("When the email arrives in a JSON body", func() {
			w := do(mux, http.MethodPost, "/activities/Art%20Club/signup", "application/json", `{"email":"json@mergington.edu"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(participants(mux, "Art Club"), ShouldContain, "json@mergington.edu")
		})

		Convey("When the email arrives as a form field", func() {
			w := do(mux, http.MethodPost, "/activities/Art%20Club/signup", "application/x-www-form-urlencoded", "email=form%40mergington.edu")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(participants(mux, "Art Club"), ShouldContain, "form@mergington.edu")
		})

		Convey("When the JSON body is malformed", func() {
			w := do(mux, http.MethodPost, "/activities/Art%20Club/signup", "application/json", `{"email":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, "bad_request")
		})

		Convey("When the activity does not exist", func() {
			w := do(mux, http.MethodPost, "/activities/Nonexistent%20Club/signup?email=a@b.com", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "not_found")
		})

		Convey("When a malformed body targets an unknown activity", func() {
			w := do(mux, http.MethodPost, "/activities/Nonexistent%20Club/signup", "application/json", `{"email":`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "not_found")
		})

		Convey("When the email is malformed or missing", func() {
			w := do(mux, http.MethodPost, "/activities/Chess%20Club/signup?email=not-an-email", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, "invalid_email")

			w = do(mux, http.MethodPost, "/activities/Chess%20Club/signup", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, "invalid_email")
			So(len(participants(mux, "Chess Club")), ShouldEqual, 2)
		})

		Convey("When the activity is full", func() {
			small, _ := newMux(t, model.Activity{Name: "Tiny", MaxParticipants: 1, Participants: []string{"a@mergington.edu"}})
			w := do(small, http.MethodPost, "/activities/Tiny/signup?email=b@mergington.edu", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Message, ShouldEqual, "Activity is full")
		})
	})
}

func TestActivitiesHandler_Unregister(t *testing.T) {
	Convey("Given Chess Club with a new student", t, func() {
		mux, _ := newMux(t)
		So(do(mux, http.MethodPost, "/activities/Chess%20Club/signup?email=new@mergington.edu", "", "").Code, ShouldEqual, http.StatusOK)

		Convey("When unregistering with a JSON body", func() {
			w := do(mux, http.MethodDelete, "/activities/Chess%20Club/participants", "application/json", `{"email":"new@mergington.edu"}`)

			Convey("Then the roster returns to its original state", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var msg types.Message
				So(json.Unmarshal(w.Body.Bytes(), &msg), ShouldBeNil)
				So(msg.Message, ShouldEqual, "Unregistered new@mergington.edu from Chess Club")
				So(participants(mux, "Chess Club"), ShouldResemble, []string{"michael@mergington.edu", "daniel@mergington.edu"})
			})
		})

		Convey("When unregistering via the query string", func() {
			w := do(mux, http.MethodDelete, "/activities/Chess%20Club/participants?email=NEW@mergington.edu", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var msg types.Message
			So(json.Unmarshal(w.Body.Bytes(), &msg), ShouldBeNil)
			So(msg.Message, ShouldEqual, "Unregistered new@mergington.edu from Chess Club")
			So(len(participants(mux, "Chess Club")), ShouldEqual, 2)
		})

		Convey("When the student is not signed up", func() {
			w := do(mux, http.MethodDelete, "/activities/Chess%20Club/participants", "application/json", `{"email":"ghost@mergington.edu"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "not_registered")
			So(len(participants(mux, "Chess Club")), ShouldEqual, 3)
		})

		Convey("When the activity does not exist", func() {
			w := do(mux, http.MethodDelete, "/activities/Nonexistent%20Club/participants", "application/json", `{"email":"new@mergington.edu"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "not_found")
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodDelete, "/activities/Chess%20Club/participants", "application/json", `not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, "bad_request")
		})

		Convey("When the body is malformed and the activity is unknown", func() {
			w := do(mux, http.MethodDelete, "/activities/Nonexistent%20Club/participants", "application/json", `not json`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "not_found")
		})
	})
}

func TestActivitiesHandler_BackendErrors(t *testing.T) {
	Convey("Given dependencies that always fail", t, func() {
		mux := http.NewServeMux()
		api.NewServer(brokenDeps{}, &mockStatsProvider{stats: map[string]interface{}{}}).Register(context.Background(), mux)

		Convey("Then unknown errors surface as 500 without internals", func() {
			w := do(mux, http.MethodGet, "/activities", "", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decodeError(w)
			So(body.Code, ShouldEqual, "internal_error")
			So(body.Message, ShouldNotContainSubstring, "backend")
		})
	})
}

func TestActivitiesHandler_ConcurrentSignups(t *testing.T) {
	Convey("Given an activity with five free spots", t, func() {
		mux, _ := newMux(t, model.Activity{Name: "Robotics", MaxParticipants: 5})

		Convey("When forty students sign up at once", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			codes := map[int]int{}
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					email := url.QueryEscape(string(rune('a'+i%26)) + strings.Repeat("x", i/26) + "@mergington.edu")
					w := do(mux, http.MethodPost, "/activities/Robotics/signup?email="+email, "", "")
					mu.Lock()
					codes[w.Code]++
					mu.Unlock()
				}(i)
			}
			wg.Wait()

			Convey("Then exactly five succeed and the rest see a full activity", func() {
				So(codes[http.StatusOK], ShouldEqual, 5)
				So(codes[http.StatusBadRequest], ShouldEqual, 35)
				So(len(participants(mux, "Robotics")), ShouldEqual, 5)
			})
		})
	})
}

func TestWrapHelpers(t *testing.T) {
	Convey("Given the error helpers", t, func() {
		cause := errors.New("boom")

		Convey("Then WrapKind keeps both kind and cause matchable", func() {
			err := api.WrapKind("api.test", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: bad request: boom")
		})

		Convey("Then Wrap of nil is nil", func() {
			So(api.Wrap("api.test", nil), ShouldBeNil)
			So(api.NewKind("api.test", api.ErrInternal).Error(), ShouldEqual, "api.test: internal error")
		})
	})
}
