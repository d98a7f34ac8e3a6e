package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fredoxntz/store-automation/model"
)

// Naver raw export column names.
const (
	colNaverOrderNo    = "상품주문번호"
	colNaverRecipient  = "수취인명"
	colNaverPhone      = "수취인연락처1"
	colNaverAddress    = "통합배송지"
	colNaverMessage    = "배송메세지"
	colNaverQty        = "수량"
	colNaverOptionCode = "옵션관리코드"
	colNaverOptionInfo = "옵션정보"
)

// CJ order-submission schema. The carrier's intake rejects files whose
// columns deviate from this order.
var cjOrderColumns = []string{
	"보내는분성명",
	"보내는분전화번호",
	"보내는분주소(전체,분할)",
	"운임구분",
	"박스타입",
	"기본운임",
	"고객주문번호",
	"품목명",
	"수량",
	"수취인이름",
	"수취인전화번호",
	"수취인 주소",
	"배송메세지",
}

// Fixed CJ order constants.
const (
	cjFeeType        = "신용"
	cjBoxType        = "극소"
	cjFeePerUnit     = 2200
	naverCarrierName = "CJ 대한통운"
	defaultShipping  = "택배"
	senderFallback   = "OOO"
)

var naverBulkFallbackColumns = []string{"상품주문번호", "배송방법", "택배사", "송장번호"}

var naverRequiredColumns = []string{
	colNaverRecipient,
	colNaverPhone,
	colNaverAddress,
	colNaverMessage,
	colNaverQty,
	colNaverOptionCode,
	colNaverOrderNo,
}

// BuildNaverIntermediate validates a raw Naver export and splits each
// option-description cell into the structured intermediate rows the
// review step edits. NormalizedDate starts empty.
func BuildNaverIntermediate(raw *model.Table) ([]model.IntermediateRow, error) {
	t := raw.TrimColumns()

	required := append([]string{}, naverRequiredColumns...)
	required = append(required, colNaverOptionInfo)
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	rows := make([]model.IntermediateRow, 0, t.Len())
	for _, row := range t.Rows {
		opts := ParseOptionInfo(row[colNaverOptionInfo])
		rows = append(rows, model.IntermediateRow{
			OrderNo:        row[colNaverOrderNo],
			RecipientName:  row[colNaverRecipient],
			RecipientPhone: row[colNaverPhone],
			Address:        row[colNaverAddress],
			Message:        row[colNaverMessage],
			Quantity:       row[colNaverQty],
			OptionCode:     row[colNaverOptionCode],
			SenderName:     opts.SenderName,
			RawDate:        opts.RawDate,
			GiftOption:     opts.GiftOption,
			WrapOption:     opts.WrapOption,
		})
	}
	return rows, nil
}

// BuildNaverOrderForm maps a raw Naver export straight into the CJ
// order schema, without the option-parsing workflow. The consumer-level
// export carries no sender name, so the item label uses a fixed
// placeholder.
func BuildNaverOrderForm(raw *model.Table, sender SenderDefaults) (*model.Table, error) {
	t := raw.TrimColumns()
	if missing := t.MissingColumns(naverRequiredColumns); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	out := model.NewTable(cjOrderColumns)
	for _, row := range t.Rows {
		qty := ParseQuantity(row[colNaverQty])
		out.Append(cjOrderRow(
			sender,
			qty,
			NormalizeOrderID(row[colNaverOrderNo]),
			senderFallback+"드림 "+row[colNaverOptionCode],
			row[colNaverRecipient],
			row[colNaverPhone],
			row[colNaverAddress],
			row[colNaverMessage],
		))
	}
	return out, nil
}

// GenerateNaverOrders assembles the final CJ order file from reviewed
// intermediate rows: one file for all dates, ordered so rows with an
// unclear delivery date surface at the top for operator review, then by
// (month, day), ties broken by product code. The item label carries the
// canonical date as a trailing token so warehouse staff can group
// same-day shipments inside the combined file.
func GenerateNaverOrders(rows []model.IntermediateRow, sender SenderDefaults) *model.Table {
	sorted := make([]model.IntermediateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessIntermediate(sorted[i], sorted[j])
	})

	out := model.NewTable(cjOrderColumns)
	for _, row := range sorted {
		qty := ParseQuantity(row.Quantity)
		senderName := row.SenderName
		if senderName == "" {
			senderName = senderFallback
		}
		label := senderName + "드림 " + row.OptionCode + " " + row.NormalizedDate
		out.Append(cjOrderRow(
			sender,
			qty,
			row.OrderNo,
			label,
			row.RecipientName,
			row.RecipientPhone,
			row.Address,
			row.Message,
		))
	}
	return out
}

func cjOrderRow(sender SenderDefaults, qty int, orderNo, label, recipient, phone, address, message string) model.Row {
	return model.Row{
		"보내는분성명":        sender.Name,
		"보내는분전화번호":     sender.Phone,
		"보내는분주소(전체,분할)": sender.Address,
		"운임구분":          cjFeeType,
		"박스타입":          cjBoxType,
		"기본운임":          strconv.Itoa(qty * cjFeePerUnit),
		"고객주문번호":        orderNo,
		"품목명":           label,
		"수량":            strconv.Itoa(qty),
		"수취인이름":         recipient,
		"수취인전화번호":       phone,
		"수취인 주소":        address,
		"배송메세지":         message,
	}
}

// validDateRe accepts the canonical M/D shape; parseSortDate still
// range-checks the parts, so "13/40" lands in the unclear bucket at
// the top of the file with the other unreviewable dates.
var validDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)

func lessIntermediate(a, b model.IntermediateRow) bool {
	am, ad, aValid := parseSortDate(a.NormalizedDate)
	bm, bd, bValid := parseSortDate(b.NormalizedDate)

	if aValid != bValid {
		return !aValid // unclear dates first
	}
	if !aValid {
		ar := strings.TrimSpace(a.NormalizedDate)
		br := strings.TrimSpace(b.NormalizedDate)
		if ar != br {
			return ar < br
		}
		return strings.TrimSpace(a.OptionCode) < strings.TrimSpace(b.OptionCode)
	}
	if am != bm {
		return am < bm
	}
	if ad != bd {
		return ad < bd
	}
	return strings.TrimSpace(a.OptionCode) < strings.TrimSpace(b.OptionCode)
}

func parseSortDate(s string) (month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if !validDateRe.MatchString(s) {
		return 0, 0, false
	}
	parts := strings.SplitN(s, "/", 2)
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, false
	}
	return month, day, true
}

// ReconcileNaverBulk left-joins a raw Naver export against the carrier
// receipt export and fills the marketplace bulk-upload schema. Every
// raw row is preserved; unmatched rows carry an empty tracking number.
// A receipt-side tracking number overrides any value already on the raw
// row. Returns ErrNoMatches (with diagnostics still populated) when the
// join matches nothing or fills no tracking numbers at all.
func ReconcileNaverBulk(raw, receipt *model.Table, outputColumns []string) (*model.Table, *MatchDiagnostics, error) {
	raw = raw.TrimColumns()
	receipt = receipt.TrimColumns()

	if !raw.HasColumn(colNaverOrderNo) {
		return nil, nil, &ValidationError{Missing: []string{colNaverOrderNo}}
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
	for i, row := range raw.Rows {
		if i == 5 {
			break
		}
		diag.RawSamples = append(diag.RawSamples, KeySample{
			Original:   row[colNaverOrderNo],
			Normalized: NormalizeOrderKey(row[colNaverOrderNo]),
		})
	}
	for i, row := range receipt.Rows {
		if i == 5 {
			break
		}
		diag.ReceiptSamples = append(diag.ReceiptSamples, KeySample{
			Original:   row[keyCol],
			Normalized: NormalizeOrderKey(row[keyCol]),
			Tracking:   row[colReceiptTracking],
		})
	}

	if len(outputColumns) == 0 {
		outputColumns = naverBulkFallbackColumns
	}

	shippingUsable := raw.ColumnUsable("배송방법")

	out := model.NewTable(outputColumns)
	seen := make(map[string]bool, raw.Len())
	var unmatched []string
	for _, row := range raw.Rows {
		key := NormalizeOrderKey(row[colNaverOrderNo])

		tracking := ""
		if entry, ok := index[key]; ok && key != "" {
			diag.MatchedCount++
			tracking = entry[colReceiptTracking]
		} else {
			unmatched = append(unmatched, key)
		}
		if tracking == "" {
			// Fall back to a tracking number already on the raw row.
			if v, ok := row.Get(colReceiptTracking); ok {
				tracking = v
			} else if v, ok := row.Get("송장번호"); ok {
				tracking = v
			}
		}
		tracking = NormalizeOrderKey(tracking)
		if tracking != "" {
			diag.FilledCount++
		}

		shipping := defaultShipping
		if shippingUsable {
			shipping = row["배송방법"]
		}

		// The marketplace rejects duplicate identifier rows, keep the
		// first occurrence only.
		if seen[key] {
			continue
		}
		seen[key] = true

		out.Append(model.Row{
			"상품주문번호": key,
			"배송방법":   shipping,
			"택배사":    naverCarrierName,
			"송장번호":   tracking,
		})
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
