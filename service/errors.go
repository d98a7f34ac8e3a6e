package service

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports required input columns missing from an
// uploaded table. The message lists the missing column names verbatim
// so the operator can fix the export.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("누락된 필수 컬럼: %s", strings.Join(e.Missing, ", "))
}

// ErrNoMatches means the reconciliation filled no tracking numbers.
// This almost always indicates the wrong receipt file was supplied, so
// the caller must discard the result instead of shipping an all-empty
// tracking column.
var ErrNoMatches = errors.New("주문번호 매칭 결과가 0건입니다")

// ErrDecryptFailed means a protected workbook could not be opened with
// the supplied password.
var ErrDecryptFailed = errors.New("파일 복호화에 실패했습니다")

// ErrMissingKeyColumn means neither the preferred nor the fallback
// order-number column exists on the receipt file.
var ErrMissingKeyColumn = errors.New("접수내역에 고객주문번호/주문번호 컬럼이 없습니다")
