package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fredoxntz/store-automation/model"
)

// Error markers substituted for a phrase when its batch could not be
// normalized. These are advisory values an operator corrects by hand
// during review, so they never abort the run.
const (
	dateErrEmptyResponse = "오류: 빈 응답"
	dateErrNotJSON       = "오류: JSON 출력 아님"
)

// ProgressFunc is called after each batch with (completed, total).
type ProgressFunc func(batch, total int)

// DebugFunc receives structured log events: "info", "unique_dates",
// "batch_start", "batch_result".
type DebugFunc func(event string, data any)

// DateNormalizer canonicalizes free-text arrival-date phrases through a
// completion API, in fixed-size batches so one request never carries an
// unbounded phrase list.
type DateNormalizer struct {
	completer  Completer
	batchSize  int
	dateFormat string
}

func NewDateNormalizer(completer Completer, batchSize int, dateFormat string) *DateNormalizer {
	if batchSize <= 0 {
		batchSize = 50
	}
	if dateFormat == "" {
		dateFormat = "MM/DD"
	}
	return &DateNormalizer{
		completer:  completer,
		batchSize:  batchSize,
		dateFormat: dateFormat,
	}
}

// NormalizeAll maps every phrase to a canonical date string or an error
// marker. The returned mapping always covers every input phrase; a
// failed batch degrades to per-phrase error markers instead of
// propagating. Callbacks are optional side channels and may be nil.
func (n *DateNormalizer) NormalizeAll(ctx context.Context, phrases []string, progress ProgressFunc, debug DebugFunc) map[string]string {
	mapping := make(map[string]string, len(phrases))
	if len(phrases) == 0 {
		return mapping
	}

	if debug != nil {
		debug("info", fmt.Sprintf("추출된 유니크 날짜: %d개", len(phrases)))
		sample := phrases
		if len(sample) > 10 {
			sample = sample[:10]
		}
		debug("unique_dates", sample)
	}

	totalBatches := (len(phrases) + n.batchSize - 1) / n.batchSize
	for i := 0; i < totalBatches; i++ {
		start := i * n.batchSize
		end := start + n.batchSize
		if end > len(phrases) {
			end = len(phrases)
		}
		batch := phrases[start:end]

		if debug != nil {
			debug("batch_start", fmt.Sprintf("배치 %d/%d - %d개 날짜 처리 중...", i+1, totalBatches, len(batch)))
		}

		batchMapping := n.normalizeBatch(ctx, batch)

		if debug != nil {
			debug("batch_result", map[string]any{"batch_idx": i + 1, "mapping": batchMapping})
		}

		for k, v := range batchMapping {
			mapping[k] = v
		}

		if progress != nil {
			progress(i+1, totalBatches)
		}
	}

	return mapping
}

// NormalizeIntermediate fills the NormalizedDate field on every row
// from the raw date phrases, deduplicating phrases before the external
// calls. Rows whose phrase produced no mapping entry stay empty.
func (n *DateNormalizer) NormalizeIntermediate(ctx context.Context, rows []model.IntermediateRow, progress ProgressFunc, debug DebugFunc) {
	seen := make(map[string]bool)
	var unique []string
	for _, row := range rows {
		if row.RawDate == "" || seen[row.RawDate] {
			continue
		}
		seen[row.RawDate] = true
		unique = append(unique, row.RawDate)
	}
	if len(unique) == 0 {
		return
	}

	mapping := n.NormalizeAll(ctx, unique, progress, debug)
	for i := range rows {
		if v, ok := mapping[rows[i].RawDate]; ok {
			rows[i].NormalizedDate = v
		}
	}
}

// normalizeBatch issues one completion request for a batch. Every
// failure mode maps each phrase in the batch to an error marker so the
// cumulative mapping stays total.
func (n *DateNormalizer) normalizeBatch(ctx context.Context, batch []string) map[string]string {
	phrasesJSON, err := json.Marshal(batch)
	if err != nil {
		return markAll(batch, "오류: "+err.Error())
	}

	reply, err := n.completer.Complete(ctx, n.buildPrompt(string(phrasesJSON)))
	if err != nil {
		return markAll(batch, "오류: "+err.Error())
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return markAll(batch, dateErrEmptyResponse)
	}

	reply = stripCodeFence(reply)

	candidate, ok := extractJSONObject(reply)
	if !ok {
		return markAll(batch, dateErrNotJSON)
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(candidate), &mapping); err != nil {
		return markAll(batch, "오류: JSON 파싱 실패: "+candidate)
	}

	return mapping
}

func (n *DateNormalizer) buildPrompt(phrasesJSON string) string {
	return fmt.Sprintf(`다음 JSON 배열의 각 날짜 텍스트를 %[1]s 형식으로 변환해주세요.
날짜 정보가 불확실하다고 판단될때는 문자열 그대로 반환해주세요.
요일 정보가 있는 경우 요일을 제거하고 날짜만 남기세요.
연도가 포함된 날짜도 월/일만 남기세요.
명확한 날짜가 아닌경우는 변환하지 말고 그대로 다시 변환결과에 넣어주세요.

결국 최종 날짜 변환 형태는 %[1]s 입니다. 꼭 이 형식으로 변환해주세요.

입력: %[2]s

출력은 반드시 "원본": "변환결과" 형태의 JSON 객체로만 답변하세요. 설명은 하지 마세요.
예시: {"9월30일": "09/30", "10/1": "10/01", "최대한 빨리": "최대한 빨리"}`, n.dateFormat, phrasesJSON)
}

func markAll(batch []string, marker string) map[string]string {
	m := make(map[string]string, len(batch))
	for _, phrase := range batch {
		m[phrase] = marker
	}
	return m
}

// stripCodeFence removes a surrounding markdown fence and its language
// tag, which some models insist on adding around JSON.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) >= 2 {
		s = parts[1]
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first greedy {...} span in the text.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return strings.TrimSpace(s[start : end+1]), true
}
