package service

import (
	"github.com/fredoxntz/store-automation/model"
)

// Receipt/detail export column names shared by both marketplaces. The
// carrier writes "고객주문번호" when the order was submitted by file and
// "주문번호" for some other intake paths, so the key column is resolved
// per file.
const (
	colReceiptCustomerOrderNo = "고객주문번호"
	colReceiptOrderNo         = "주문번호"
	colReceiptTracking        = "운송장번호"
	colReceiptPickupDate      = "집화예정일자"
)

// KeySample pairs an original cell with its normalized join key, kept
// in diagnostics so an operator can see why keys did or did not match.
type KeySample struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Tracking   string `json:"tracking,omitempty"`
}

// MatchDiagnostics reports how a reconciliation went. It is returned
// alongside the output table so a zero-match outcome can be explained
// to the operator instead of silently producing an empty file.
type MatchDiagnostics struct {
	RawCount         int         `json:"raw_count"`
	ReceiptCount     int         `json:"receipt_count"`
	KeyColumn        string      `json:"key_column"`
	MatchedCount     int         `json:"matched_count"`
	FilledCount      int         `json:"filled_count"`
	TotalCount       int         `json:"total_count"`
	RawSamples       []KeySample `json:"raw_samples,omitempty"`
	ReceiptSamples   []KeySample `json:"receipt_samples,omitempty"`
	UnmatchedKeys    []string    `json:"unmatched_keys,omitempty"`
	UnmatchedCount   int         `json:"unmatched_count,omitempty"`
	ReceiptKeySample []string    `json:"receipt_key_sample,omitempty"`
}

// receiptKeyColumn picks the join key column on the receipt side,
// preferring the customer order number.
func receiptKeyColumn(receipt *model.Table) (string, error) {
	if receipt.HasColumn(colReceiptCustomerOrderNo) {
		return colReceiptCustomerOrderNo, nil
	}
	if receipt.HasColumn(colReceiptOrderNo) {
		return colReceiptOrderNo, nil
	}
	return "", ErrMissingKeyColumn
}

// indexReceipt builds a first-wins index of receipt rows by normalized
// key. The carrier should not emit duplicate keys; if it does, the
// first row wins so a raw row never fans out into several output rows.
func indexReceipt(receipt *model.Table, keyCol string) map[string]model.Row {
	index := make(map[string]model.Row, receipt.Len())
	for _, row := range receipt.Rows {
		key := NormalizeOrderKey(row[keyCol])
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = row
		}
	}
	return index
}

func sampleKeys(index map[string]model.Row, limit int) []string {
	keys := make([]string, 0, limit)
	for k := range index {
		keys = append(keys, k)
		if len(keys) == limit {
			break
		}
	}
	return keys
}
