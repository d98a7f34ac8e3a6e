package model

import (
	"time"
)

// Workflow is one upload → review → generate session for the Naver CJ
// order flow. The intermediate rows are owned by the workflow and are
// mutated in place during the review step.
type Workflow struct {
	ID           string            `json:"id"`
	Shop         string            `json:"shop"`
	State        string            `json:"state"` // upload, review, generate
	Username     string            `json:"username"`
	Intermediate []IntermediateRow `json:"intermediate,omitempty"`
	DownloadID   string            `json:"download_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Workflow state constants
const (
	StateUpload   = "upload"
	StateReview   = "review"
	StateGenerate = "generate"
)

// Shop labels used in object names and filenames
const (
	ShopNaver   = "naver"
	ShopCoupang = "coupang"
)

// IntermediateRow is one Naver order line after the option-description
// string has been split into its structured fields. NormalizedDate
// starts empty and is filled by the date normalizer or by a manual edit
// during review.
type IntermediateRow struct {
	OrderNo        string `json:"order_no"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Address        string `json:"address"`
	Message        string `json:"message"`
	Quantity       string `json:"quantity"`
	OptionCode     string `json:"option_code"`
	SenderName     string `json:"sender_name"`
	RawDate        string `json:"raw_date"`
	NormalizedDate string `json:"normalized_date"`
	GiftOption     string `json:"gift_option"`
	WrapOption     string `json:"wrap_option"`
}

// Download is a generated spreadsheet held for the caller to fetch.
type Download struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	RowCount    int       `json:"row_count"`
	ArchiveURL  string    `json:"archive_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// XLSXContentType is the MIME type for generated spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
