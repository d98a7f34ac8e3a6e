package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fredoxntz/store-automation/service"
)

func newNaverRouter(completer service.Completer) *gin.Engine {
	dates := service.NewDateNormalizer(completer, 50, "MM/DD")
	h := NewNaverHandler(nil, dates, testConfig())

	router := gin.New()
	router.POST("/api/naver/cj/upload", h.UploadCJ)
	router.GET("/api/naver/cj/:id", h.GetWorkflow)
	router.POST("/api/naver/cj/:id/normalize-dates", h.NormalizeDates)
	router.PUT("/api/naver/cj/:id/dates", h.UpdateDates)
	router.POST("/api/naver/cj/:id/generate", h.GenerateCJ)
	router.DELETE("/api/naver/cj/:id", h.DeleteWorkflow)
	router.POST("/api/naver/bulk", h.Bulk)
	return router
}

// naverRawSheet builds a Naver raw export: a notice line, the header,
// then one data row per order number.
func naverRawSheet(t *testing.T, orderNos ...string) []byte {
	t.Helper()
	rows := [][]string{
		{"발주발송관리 목록"},
		{"상품주문번호", "수취인명", "수취인연락처1", "통합배송지", "배송메세지", "수량", "옵션관리코드", "옵션정보"},
	}
	for _, no := range orderNos {
		rows = append(rows, []string{
			no, "홍길동", "010-1234-5678", "서울시 강남구", "문앞", "1", "APPLE-5KG",
			"보내시는 분: 김철수 / 도착 희망 날짜: 9월 30일",
		})
	}
	return encodeSheet(t, rows)
}

func receiptSheet(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	rows := [][]string{{"고객주문번호", "운송장번호", "집화예정일자"}}
	for _, e := range entries {
		rows = append(rows, []string{e[0], e[1], "2026-09-01"})
	}
	return encodeSheet(t, rows)
}

func uploadNaverCJ(t *testing.T, router *gin.Engine, orderNos ...string) string {
	t.Helper()
	body, contentType := multipartUpload(t, map[string][]byte{"file": naverRawSheet(t, orderNos...)})
	req := httptest.NewRequest("POST", "/api/naver/cj/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatal("Expected workflow id in response")
	}
	return id
}

func TestNaverUploadCJ(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	body, contentType := multipartUpload(t, map[string][]byte{"file": naverRawSheet(t, "1001", "1002")})
	req := httptest.NewRequest("POST", "/api/naver/cj/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["state"] != "review" {
		t.Errorf("state = %v, want review", resp["state"])
	}
	if resp["count"] != float64(2) {
		t.Errorf("count = %v, want 2", resp["count"])
	}
}

func TestNaverUploadCJMissingFile(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	body, contentType := multipartUpload(t, map[string][]byte{})
	req := httptest.NewRequest("POST", "/api/naver/cj/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestNaverUploadCJMissingColumns(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	sheet := encodeSheet(t, [][]string{
		{"발주발송관리 목록"},
		{"상품주문번호", "수취인명"},
		{"1001", "홍길동"},
	})
	body, contentType := multipartUpload(t, map[string][]byte{"file": sheet})
	req := httptest.NewRequest("POST", "/api/naver/cj/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["missing_columns"] == nil {
		t.Error("Expected missing_columns in response")
	}
}

func TestNaverGetWorkflow(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})
	id := uploadNaverCJ(t, router, "1001")

	req := httptest.NewRequest("GET", "/api/naver/cj/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/naver/cj/missing-id", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestNaverNormalizeDates(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: `{"9월 30일": "09/30"}`})
	id := uploadNaverCJ(t, router, "1001")

	req := httptest.NewRequest("POST", "/api/naver/cj/"+id+"/normalize-dates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	rows, ok := resp["rows"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %v", resp["rows"])
	}
	row := rows[0].(map[string]any)
	if row["normalized_date"] != "09/30" {
		t.Errorf("normalized_date = %v, want 09/30", row["normalized_date"])
	}
	if resp["batches"] != float64(1) {
		t.Errorf("batches = %v, want 1", resp["batches"])
	}
	if resp["debug"] == nil {
		t.Error("Expected debug events in response")
	}
}

func TestNaverUpdateDates(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})
	id := uploadNaverCJ(t, router, "1001", "1002")

	edits, _ := json.Marshal(map[string]any{
		"edits": []map[string]any{{"row": 1, "date": "10/02"}},
	})
	req := httptest.NewRequest("PUT", "/api/naver/cj/"+id+"/dates", bytes.NewReader(edits))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	rows := resp["rows"].([]any)
	row := rows[1].(map[string]any)
	if row["normalized_date"] != "10/02" {
		t.Errorf("normalized_date = %v, want 10/02", row["normalized_date"])
	}
}

func TestNaverUpdateDatesRowOutOfRange(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})
	id := uploadNaverCJ(t, router, "1001")

	edits, _ := json.Marshal(map[string]any{
		"edits": []map[string]any{{"row": 5, "date": "10/02"}},
	})
	req := httptest.NewRequest("PUT", "/api/naver/cj/"+id+"/dates", bytes.NewReader(edits))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestNaverGenerateCJ(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: `{"9월 30일": "09/30"}`})
	id := uploadNaverCJ(t, router, "1001")

	req := httptest.NewRequest("POST", "/api/naver/cj/"+id+"/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	downloadID, _ := resp["download_id"].(string)
	if downloadID == "" {
		t.Fatal("Expected download_id in response")
	}
	if resp["state"] != "generate" {
		t.Errorf("state = %v, want generate", resp["state"])
	}

	d := service.GetStore().GetDownload(downloadID)
	if d == nil {
		t.Fatal("Expected download to be stored")
	}
	if d.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", d.RowCount)
	}

	table, err := service.DecodeTable(d.Data, "", 0)
	if err != nil {
		t.Fatalf("Failed to decode generated workbook: %v", err)
	}
	got := table.Rows[0]
	if got["품목명"] != "김철수드림 APPLE-5KG " {
		t.Errorf("품목명 = %q", got["품목명"])
	}
	if got["기본운임"] != "2200" {
		t.Errorf("기본운임 = %q, want 2200", got["기본운임"])
	}
	if got["보내는분성명"] != "과수원" {
		t.Errorf("보내는분성명 = %q, want 과수원", got["보내는분성명"])
	}
}

func TestNaverGenerateCJRequiresReviewState(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})
	id := uploadNaverCJ(t, router, "1001")

	req := httptest.NewRequest("POST", "/api/naver/cj/"+id+"/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// The workflow has left the review state; a second generate conflicts.
	req = httptest.NewRequest("POST", "/api/naver/cj/"+id+"/generate", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestNaverDeleteWorkflow(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})
	id := uploadNaverCJ(t, router, "1001")

	req := httptest.NewRequest("DELETE", "/api/naver/cj/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/naver/cj/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", w.Code)
	}
}

func TestNaverBulk(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	body, contentType := multipartUpload(t, map[string][]byte{
		"raw":     naverRawSheet(t, "1001", "1002"),
		"receipt": receiptSheet(t, [][2]string{{"1001", "6012345678"}, {"1002", "6012345679"}}),
	})
	req := httptest.NewRequest("POST", "/api/naver/bulk", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	downloadID, _ := resp["download_id"].(string)
	if downloadID == "" {
		t.Fatal("Expected download_id in response")
	}

	d := service.GetStore().GetDownload(downloadID)
	if d == nil {
		t.Fatal("Expected download to be stored")
	}
	table, err := service.DecodeTable(d.Data, "", 0)
	if err != nil {
		t.Fatalf("Failed to decode generated workbook: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.Len())
	}
	if table.Rows[0]["송장번호"] != "6012345678" {
		t.Errorf("송장번호 = %q, want 6012345678", table.Rows[0]["송장번호"])
	}
	if table.Rows[0]["택배사"] != "CJ 대한통운" {
		t.Errorf("택배사 = %q", table.Rows[0]["택배사"])
	}
}

func TestNaverBulkZeroMatches(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	body, contentType := multipartUpload(t, map[string][]byte{
		"raw":     naverRawSheet(t, "1001"),
		"receipt": receiptSheet(t, [][2]string{{"9999", "600"}}),
	})
	req := httptest.NewRequest("POST", "/api/naver/bulk", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	diag, ok := resp["diagnostics"].(map[string]any)
	if !ok {
		t.Fatal("Expected diagnostics in response")
	}
	if diag["filled_count"] != float64(0) {
		t.Errorf("filled_count = %v, want 0", diag["filled_count"])
	}
	if diag["raw_samples"] == nil {
		t.Error("Expected raw_samples in diagnostics")
	}
}

func TestNaverBulkMissingReceipt(t *testing.T) {
	router := newNaverRouter(&staticCompleter{reply: "{}"})

	body, contentType := multipartUpload(t, map[string][]byte{
		"raw": naverRawSheet(t, "1001"),
	})
	req := httptest.NewRequest("POST", "/api/naver/bulk", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
