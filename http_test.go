package word2quiz

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/word2quiz/quizstore"
)

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/parse", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_Health(t *testing.T) {
	h := testService(t, nil).Handler()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("health: %d %s", rec.Code, rec.Body)
	}
}

func TestHTTP_SecurityHeaders(t *testing.T) {
	h := testService(t, nil).Handler()

	rec := serve(h, httptest.NewRequest(http.MethodHead, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("HEAD /health: %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers: %v", rec.Header())
	}
}

func TestHTTP_ParseTooLarge(t *testing.T) {
	h := testService(t, &Config{MaxFileSize: 16}).Handler()

	rec := serve(h, uploadRequest(t, "week.txt", sampleQuiz, nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: %d %s", rec.Code, rec.Body)
	}
}

func TestHTTP_Parse(t *testing.T) {
	h := testService(t, nil).Handler()

	rec := serve(h, uploadRequest(t, "week.txt", sampleQuiz, map[string]string{"expected_questions": "2"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("parse: %d %s", rec.Code, rec.Body)
	}
	var res struct {
		Title    string `json:"title"`
		Sections []struct {
			Name string `json:"name"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Title != "Filosofie" || len(res.Sections) != 2 {
		t.Errorf("result: %+v", res)
	}
}

func TestHTTP_ParseValidationError(t *testing.T) {
	h := testService(t, nil).Handler()

	rec := serve(h, uploadRequest(t, "week.txt", sampleQuiz, map[string]string{"expected_questions": "5"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d %s", rec.Code, rec.Body)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["kind"] != "incorrect number of questions" || body["section"] != "Week 1" {
		t.Errorf("body: %v", body)
	}
}

func TestHTTP_ParseBadRequests(t *testing.T) {
	h := testService(t, nil).Handler()

	if rec := serve(h, uploadRequest(t, "week.pdf", "x", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported format: %d", rec.Code)
	}
	if rec := serve(h, uploadRequest(t, "week.txt", sampleQuiz, map[string]string{"expected_questions": "-1"})); rec.Code != http.StatusBadRequest {
		t.Errorf("negative option: %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("plain"))
	if rec := serve(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("not multipart: %d", rec.Code)
	}
}

func TestHTTP_Classify(t *testing.T) {
	h := testService(t, nil).Handler()

	body := `{"paragraphs": ["Quiz: A", "1) Q?", "c) !x"], "normalize_fontsize": 11}`
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("classify: %d %s", rec.Code, rec.Body)
	}
	var resp struct {
		Lines []struct {
			Category string `json:"category"`
			Text     string `json:"text"`
		} `json:"lines"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Lines) != 3 || resp.Lines[2].Category != "answer" {
		t.Fatalf("lines: %+v", resp.Lines)
	}
	if !strings.Contains(resp.Lines[1].Text, "font-size:11pt") {
		t.Errorf("question not normalized: %q", resp.Lines[1].Text)
	}

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: %d", rec.Code)
	}
}

func TestHTTP_Runs(t *testing.T) {
	h := testService(t, nil).Handler()

	rec := serve(h, uploadRequest(t, "week.txt", sampleQuiz, map[string]string{"save": "true"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body)
	}
	var saved quizstore.Run
	json.Unmarshal(rec.Body.Bytes(), &saved)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	var list struct {
		Runs []quizstore.Run `json:"runs"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Runs) != 1 || list.Runs[0].Source != "week.txt" {
		t.Fatalf("runs: %s", rec.Body)
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/runs/"+saved.ID, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Jupiter") {
		t.Errorf("run: %d %s", rec.Code, rec.Body)
	}

	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id: %d", rec.Code)
	}

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/api/runs/"+saved.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/runs/"+saved.ID, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: %d", rec.Code)
	}
}
