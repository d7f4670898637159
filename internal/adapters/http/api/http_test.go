package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pontoval/internal/adapters/http/api"
	"pontoval/internal/adapters/repository"
	"pontoval/internal/domain/convert"
	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"
	"pontoval/internal/domain/validate"

	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing. Conversion and validation use the real
// domain cores; the pipeline pieces are stubbed.
type mockDeps struct {
	converter *convert.Converter
	checker   *validate.Checker

	seen           map[string]bool
	enqueueSuccess bool
	enqueued       []model.Submission

	statuses map[string]types.SubmissionStatus
	recent   []types.SubmissionStatus
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		converter:      convert.New(),
		checker:        validate.NewChecker(),
		seen:           make(map[string]bool),
		enqueueSuccess: true,
		statuses:       make(map[string]types.SubmissionStatus),
	}
}

func (m *mockDeps) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDeps) Convert(ctx context.Context, raw string) convert.Result {
	return m.converter.ConvertString(raw)
}

func (m *mockDeps) ValidateContact(ctx context.Context, name, email, message string) []validate.FieldError {
	return m.checker.CheckAll(validate.ContactFields(name, email, message))
}

func (m *mockDeps) Enqueue(ctx context.Context, sub model.Submission) bool {
	if !m.enqueueSuccess {
		return false
	}
	m.enqueued = append(m.enqueued, sub)
	return true
}

func (m *mockDeps) SubmissionStatus(ctx context.Context, id string) (types.SubmissionStatus, error) {
	st, ok := m.statuses[id]
	if !ok {
		return types.SubmissionStatus{}, repository.ErrNotFound
	}
	return st, nil
}

func (m *mockDeps) RecentSubmissions(ctx context.Context, n int) ([]types.SubmissionStatus, error) {
	if n > len(m.recent) {
		return m.recent, nil
	}
	return m.recent[:n], nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestConvertEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When posting a valid point quantity", func() {
			rec := post(`{"points":"163.5"}`)

			Convey("Then the estimate succeeds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var result convert.Result
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.OK, ShouldBeTrue)
				So(result.Value, ShouldAlmostEqual, 1.0, 1e-9)
				So(result.Message, ShouldContainSubstring, "R$")
			})
		})

		Convey("When posting the quantity as a JSON number", func() {
			rec := post(`{"points":327}`)

			Convey("Then it is accepted as well", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var result convert.Result
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.OK, ShouldBeTrue)
				So(result.Value, ShouldAlmostEqual, 2.0, 1e-9)
			})
		})

		Convey("When posting an invalid quantity", func() {
			for _, body := range []string{`{"points":"0"}`, `{"points":"-5"}`, `{"points":"abc"}`, `{"points":""}`} {
				rec := post(body)

				So(rec.Code, ShouldEqual, http.StatusOK)
				var result convert.Result
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.OK, ShouldBeFalse)
				So(result.Message, ShouldNotBeEmpty)
			}
		})

		Convey("When posting malformed JSON", func() {
			rec := post(`{"points":`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/convert", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the route does not exist", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestContactEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		validBody := `{"name":"Ana Souza","email":"ana@example.com","message":"Gostaria de saber mais sobre o programa."}`

		Convey("When posting a valid submission", func() {
			rec := post(validBody)

			Convey("Then it is accepted with a receipt id", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var ack struct {
					Status    string `json:"status"`
					ID        string `json:"id"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.ID, ShouldNotBeEmpty)
				So(ack.Duplicate, ShouldBeFalse)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Email, ShouldEqual, "ana@example.com")
			})
		})

		Convey("When fields are invalid", func() {
			rec := post(`{"name":"","email":"abc","message":"hi"}`)

			Convey("Then every failing field is reported and nothing is enqueued", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var resp struct {
					Errors []validate.FieldError `json:"errors"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Errors, ShouldHaveLength, 3)
				So(deps.enqueued, ShouldBeEmpty)
			})
		})

		Convey("When the same submission id is posted twice", func() {
			body := `{"submission_id":"sub-1","name":"Ana","email":"ana@example.com","message":"Mensagem longa o suficiente."}`
			first := post(body)
			second := post(body)

			Convey("Then the second is answered as duplicate", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(second.Code, ShouldEqual, http.StatusOK)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(second.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "duplicate")
				So(ack.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueSuccess = false
			rec := post(`{"submission_id":"sub-2","name":"Ana","email":"ana@example.com","message":"Mensagem longa o suficiente."}`)

			Convey("Then backpressure is reported and the id rolled back", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.seen["sub-2"], ShouldBeFalse)
			})
		})

		Convey("When posting malformed JSON", func() {
			rec := post(`{"name":`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestSubmissionsEndpoints(t *testing.T) {
	Convey("Given the API routes with outbox data", t, func() {
		deps := newMockDeps()
		now := time.Now()
		delivered := now.Add(100 * time.Millisecond)
		deps.statuses["sub-1"] = types.SubmissionStatus{
			ID: "sub-1", Status: types.StatusDelivered, ReceivedAt: now, DeliveredAt: &delivered,
		}
		deps.recent = []types.SubmissionStatus{
			{ID: "sub-2", Status: types.StatusQueued, ReceivedAt: now},
			{ID: "sub-1", Status: types.StatusDelivered, ReceivedAt: now, DeliveredAt: &delivered},
		}
		mux := newTestMux(deps)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When fetching a known receipt", func() {
			rec := get("/submissions/sub-1")

			Convey("Then its status is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var st types.SubmissionStatus
				So(json.Unmarshal(rec.Body.Bytes(), &st), ShouldBeNil)
				So(st.Status, ShouldEqual, types.StatusDelivered)
				So(st.DeliveredAt, ShouldNotBeNil)
			})
		})

		Convey("When fetching an unknown receipt", func() {
			So(get("/submissions/missing").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the receipt id is malformed", func() {
			So(get("/submissions/a/b").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing recent submissions", func() {
			rec := get("/submissions?limit=1")

			Convey("Then the limit is honored", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var list []types.SubmissionStatus
				So(json.Unmarshal(rec.Body.Bytes(), &list), ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].ID, ShouldEqual, "sub-2")
			})
		})

		Convey("When the limit is invalid", func() {
			So(get("/submissions?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/submissions?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/submissions?limit=1000").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching stats", func() {
			rec := get("/stats")

			Convey("Then the stats JSON is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "started")
			})
		})
	})
}
