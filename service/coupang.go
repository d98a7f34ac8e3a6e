package service

import (
	"github.com/fredoxntz/store-automation/model"
)

// Coupang raw export column names used by the builders.
const (
	colCoupangOrderNo    = "주문번호"
	colCoupangRecipient  = "수취인이름"
	colCoupangPhone      = "수취인전화번호"
	colCoupangAddress    = "수취인 주소"
	colCoupangMessage    = "배송메세지"
	colCoupangQty        = "구매수(수량)"
	colCoupangBuyer      = "구매자"
	colCoupangProdCode   = "업체상품코드"
	coupangCarrierName   = "CJ대한통운"
)

var coupangRequiredColumns = []string{
	colCoupangRecipient,
	colCoupangPhone,
	colCoupangAddress,
	colCoupangMessage,
	colCoupangQty,
	colCoupangBuyer,
	colCoupangProdCode,
	colCoupangOrderNo,
}

// coupangBulkFallbackColumns is the marketplace portal's bulk-upload
// header as of the last sync; the reference file overrides it when the
// portal changes.
var coupangBulkFallbackColumns = []string{
	"번호",
	"묶음배송번호",
	"주문번호",
	"택배사",
	"운송장번호",
	"분리배송 Y/N",
	"분리배송 출고예정일",
	"주문시 출고예정일",
	"출고일(발송일)",
	"주문일",
	"등록상품명",
	"등록옵션명",
	"노출상품명(옵션명)",
	"노출상품ID",
	"옵션ID",
	"최초등록옵션명",
	"업체상품코드",
	"바코드",
	"결제액",
	"배송비구분",
	"배송비",
	"도서산간 추가배송비",
	"구매수(수량)",
	"옵션판매가(판매단가)",
	"구매자",
	"구매자전화번호",
	"수취인이름",
	"수취인전화번호",
	"우편번호",
	"수취인 주소",
	"배송메세지",
	"상품별 추가메시지",
	"주문자 추가메시지",
	"배송완료일",
	"구매확정일자",
	"개인통관번호(PCCC)",
	"통관용구매자전화번호",
	"기타",
	"결제위치",
}

// BuildCoupangOrderForm maps a raw Coupang export into the CJ order
// schema. Coupang's export carries the buyer name at the top level, so
// the item label uses it directly.
func BuildCoupangOrderForm(raw *model.Table, sender SenderDefaults) (*model.Table, error) {
	t := raw.TrimColumns()
	if missing := t.MissingColumns(coupangRequiredColumns); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	out := model.NewTable(cjOrderColumns)
	for _, row := range t.Rows {
		qty := ParseQuantity(row[colCoupangQty])
		out.Append(cjOrderRow(
			sender,
			qty,
			NormalizeOrderID(row[colCoupangOrderNo]),
			row[colCoupangBuyer]+"드림 "+row[colCoupangProdCode],
			row[colCoupangRecipient],
			row[colCoupangPhone],
			row[colCoupangAddress],
			row[colCoupangMessage],
		))
	}
	return out, nil
}

// ReconcileCoupangBulk left-joins a raw Coupang export against the
// carrier receipt export and fills the wide bulk-upload schema. Columns
// not explicitly computed pass through from the like-named raw column
// when present, else default to empty. Coupang identifiers do not
// suffer the internal-whitespace corruption Naver's do, so the plain
// normalizer is the join key here.
func ReconcileCoupangBulk(raw, receipt *model.Table, outputColumns []string) (*model.Table, *MatchDiagnostics, error) {
	raw = raw.TrimColumns()
	receipt = receipt.TrimColumns()

	if !raw.HasColumn(colCoupangOrderNo) {
		return nil, nil, &ValidationError{Missing: []string{colCoupangOrderNo}}
	}
	keyCol, err := receiptKeyColumn(receipt)
	if err != nil {
		return nil, nil, err
	}
	index := indexReceipt(receipt, keyCol)

	diag := &MatchDiagnostics{
		RawCount:     raw.Len(),
		ReceiptCount: receipt.Len(),
		KeyColumn:    keyCol,
	}

	if len(outputColumns) == 0 {
		outputColumns = coupangBulkFallbackColumns
	}

	out := model.NewTable(outputColumns)
	var unmatched []string
	for _, row := range raw.Rows {
		key := NormalizeOrderID(row[colCoupangOrderNo])

		tracking := ""
		pickupDate := ""
		if entry, ok := index[key]; ok && key != "" {
			diag.MatchedCount++
			tracking = entry[colReceiptTracking]
			pickupDate = entry[colReceiptPickupDate]
		} else {
			unmatched = append(unmatched, key)
		}
		if tracking == "" {
			tracking = row[colReceiptTracking]
		}
		tracking = NormalizeOrderID(tracking)
		if tracking != "" {
			diag.FilledCount++
		}

		out.Append(coupangBulkRow(row, raw, key, tracking, pickupDate, outputColumns))
	}
	diag.TotalCount = out.Len()

	if diag.MatchedCount < diag.RawCount {
		if len(unmatched) > 10 {
			unmatched = unmatched[:10]
		}
		diag.UnmatchedKeys = unmatched
		diag.UnmatchedCount = diag.RawCount - diag.MatchedCount
		diag.ReceiptKeySample = sampleKeys(index, 10)
	}

	if diag.MatchedCount == 0 || diag.FilledCount == 0 {
		return out, diag, ErrNoMatches
	}
	return out, diag, nil
}

// coupangBulkRow fills one output row: computed columns first, then
// pass-through of like-named raw columns, with the two legacy header
// aliases the portal has used across revisions.
func coupangBulkRow(row model.Row, raw *model.Table, key, tracking, pickupDate string, outputColumns []string) model.Row {
	passthrough := func(col string) string {
		if raw.HasColumn(col) {
			return row[col]
		}
		return ""
	}

	out := make(model.Row, len(outputColumns))
	for _, col := range outputColumns {
		switch col {
		case "주문번호":
			out[col] = key
		case "택배사":
			out[col] = coupangCarrierName
		case "운송장번호":
			out[col] = tracking
		case "출고일(발송일)":
			out[col] = pickupDate
		case "최초등록옵션명":
			if raw.HasColumn(col) {
				out[col] = row[col]
			} else {
				out[col] = passthrough("최초등록등록상품명/옵션명")
			}
		case "통관용구매자전화번호":
			if raw.HasColumn("통관용수취인전화번호") {
				out[col] = row["통관용수취인전화번호"]
			} else {
				out[col] = passthrough(col)
			}
		default:
			out[col] = passthrough(col)
		}
	}
	return out
}
