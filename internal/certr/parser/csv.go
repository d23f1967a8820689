package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ethereum/go-ethereum/common"
)

// Required column headers for a batch upload, matching the CSV template.
const (
	ColRecipientAddress = "recipient_address"
	ColRecipientName    = "recipient_name"
	ColProgram          = "program"
	ColIssueDate        = "issue_date"
)

const dateLayout = "2006-01-02"

// Template returns the CSV template handed to operators.
func Template() string {
	return strings.Join([]string{
		"recipient_address,recipient_name,program,issue_date",
		"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1,John Doe,Full Stack Web3 Internship,2024-01-15",
		"0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199,Jane Smith,Smart Contract Development Internship,2024-01-20",
	}, "\n")
}

// ParseCSV decodes a batch upload into validated certificate requests.
//
// Validation is all-or-nothing: row errors accumulate across the whole file
// and fail the batch together as a *ValidationError, a validated set larger
// than MaxBatchSize fails with ErrBatchTooLarge, and input with no data rows
// fails with ErrEmptyBatch. Request order follows input order.
func ParseCSV(r io.Reader) ([]CertificateRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyBatch
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var (
		requests []CertificateRequest
		rowErrs  []RowError
		rowNum   int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		req, errs := validateRow(rowNum, record, cols)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		requests = append(requests, req)
	}

	if rowNum == 0 {
		return nil, ErrEmptyBatch
	}
	if len(rowErrs) > 0 {
		return nil, &ValidationError{Rows: rowErrs}
	}
	if len(requests) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	return requests, nil
}

// mapHeader resolves required column positions. Header matching is
// case-insensitive and order-free; a UTF-8 BOM on the first cell is ignored.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[name] = i
	}

	var missing []string
	for _, want := range []string{ColRecipientAddress, ColRecipientName, ColProgram, ColIssueDate} {
		if _, ok := cols[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func validateRow(rowNum int, record []string, cols map[string]int) (CertificateRequest, []RowError) {
	var errs []RowError

	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	missing := func(name, value string) bool {
		if value == "" {
			errs = append(errs, RowError{Row: rowNum, Field: name, Reason: "missing value"})
			return true
		}
		return false
	}

	addr := field(ColRecipientAddress)
	name := field(ColRecipientName)
	program := field(ColProgram)
	date := field(ColIssueDate)

	if !missing(ColRecipientAddress, addr) {
		if !common.IsHexAddress(addr) {
			errs = append(errs, RowError{Row: rowNum, Field: ColRecipientAddress, Reason: fmt.Sprintf("invalid address %q", addr)})
		} else {
			addr = strings.ToLower(common.HexToAddress(addr).Hex())
		}
	}
	missing(ColRecipientName, name)
	missing(ColProgram, program)
	if !missing(ColIssueDate, date) {
		normalized, err := normalizeDate(date)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Field: ColIssueDate, Reason: fmt.Sprintf("unparseable date %q", date)})
		} else {
			date = normalized
		}
	}

	if len(errs) > 0 {
		return CertificateRequest{}, errs
	}
	return CertificateRequest{
		RecipientAddress: addr,
		RecipientName:    name,
		Program:          program,
		IssueDate:        date,
	}, nil
}

// NewRequest validates a single request outside the CSV path, applying the
// same field rules and normalization as batch rows.
func NewRequest(address, name, program, date string) (CertificateRequest, error) {
	cols := map[string]int{
		ColRecipientAddress: 0,
		ColRecipientName:    1,
		ColProgram:          2,
		ColIssueDate:        3,
	}
	req, errs := validateRow(1, []string{address, name, program, date}, cols)
	if len(errs) > 0 {
		return CertificateRequest{}, &ValidationError{Rows: errs}
	}
	return req, nil
}

// normalizeDate accepts YYYY-MM-DD directly and falls back to a best-effort
// parse for looser operator input, always returning the canonical layout.
func normalizeDate(value string) (string, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.Format(dateLayout), nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}
