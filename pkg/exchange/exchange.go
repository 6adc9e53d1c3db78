package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/billfold/billfold/internal/utils"
	"github.com/billfold/billfold/pkg/bill"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	ExportFileName  = "bills_export.csv"
	importCSVName   = "bills_import.csv"
	importTextName  = "bills_import.txt"
	backupLayout    = "20060102_150405"
	backupNameShape = "bills_backup_%s.json"
)

var ErrPermission = errors.New("export directory is not accessible")
var ErrNoImportFile = errors.New("no valid import files found")

// header is the fixed column contract of the exchange files.
var header = []string{"Name", "Amount", "Paid", "Due", "Category", "Frequency"}

// requiredFields must appear in an import header; Frequency is optional and
// defaults to Custom.
var requiredFields = []string{"Name", "Amount", "Paid", "Due", "Category"}

// BillStore is the slice of the bill service the merger needs.
type BillStore interface {
	List(ctx context.Context) []bill.Bill
	// ImportAppend appends validated bills with no de-duplication: importing
	// the same file twice doubles the bills. Known limitation, preserved.
	ImportAppend(ctx context.Context, bills []bill.Bill) error
}

// DocumentExporter copies the persisted document for backups.
type DocumentExporter interface {
	ExportTo(path string) error
}

// ImportResult reports what an import run did.
type ImportResult struct {
	Imported int
	Skipped  int
	Sources  []string
}

type Service struct {
	bills    BillStore
	document DocumentExporter
	dirs     []string
	clock    utils.Clock
}

func NewService(bills BillStore, document DocumentExporter, dirs []string, clock utils.Clock) *Service {
	return &Service{bills: bills, document: document, dirs: dirs, clock: clock}
}

// Export writes the whole collection as one CSV row per bill to a fixed-name
// file in the first writable candidate directory, fully overwriting any
// previous export.
func (s *Service) Export(ctx context.Context) (string, error) {
	dir, err := s.firstWritableDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFileName)

	f, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return "", fmt.Errorf("%w: %v", ErrPermission, err)
		}
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}
	for _, b := range s.bills.List(ctx) {
		row := []string{
			b.Name,
			strconv.FormatFloat(b.Amount, 'f', -1, 64),
			strconv.FormatBool(b.Paid),
			b.Due.String(),
			string(b.Category),
			string(b.Frequency),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}

	log.Infof("exported bills to %s", path)
	return path, nil
}

// Import reads bills from the fixed-name import files, trying the CSV name
// then the plain-text fallback in the first candidate directory that holds
// either. Each row is validated independently; invalid rows are skipped with
// a warning and never abort the batch.
func (s *Service) Import(ctx context.Context) (ImportResult, error) {
	dir, found := s.firstDirWithImportFile()
	if !found {
		return ImportResult{}, ErrNoImportFile
	}

	var result ImportResult
	var imported []bill.Bill
	for _, name := range []string{importCSVName, importTextName} {
		path := filepath.Join(dir, name)
		rows, err := readRows(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			if os.IsPermission(err) {
				return ImportResult{}, fmt.Errorf("%w: %v", ErrPermission, err)
			}
			log.Warnf("failed to read %s: %v", path, err)
			continue
		}

		for _, row := range rows {
			b, err := rowToBill(row)
			if err != nil {
				log.Warnf("skipped invalid bill %q: %v", row["Name"], err)
				result.Skipped++
				continue
			}
			imported = append(imported, b)
			result.Imported++
		}
		result.Sources = append(result.Sources, path)
	}

	if len(result.Sources) == 0 {
		return ImportResult{}, ErrNoImportFile
	}
	if err := s.bills.ImportAppend(ctx, imported); err != nil {
		return ImportResult{}, err
	}
	log.Infof("imported %d bills (%d skipped) from %v", result.Imported, result.Skipped, result.Sources)
	return result, nil
}

// Backup copies the persisted document to a timestamped file in the first
// writable candidate directory.
func (s *Service) Backup(ctx context.Context) (string, error) {
	dir, err := s.firstWritableDir()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf(backupNameShape, s.clock.Now().Format(backupLayout))
	path := filepath.Join(dir, name)
	if err := s.document.ExportTo(path); err != nil {
		return "", fmt.Errorf("failed to back up document: %w", err)
	}
	log.Infof("backup created at %s", path)
	return path, nil
}

func (s *Service) firstWritableDir() (string, error) {
	for _, dir := range s.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Debugf("exchange: cannot create %s: %v", dir, err)
			continue
		}
		return dir, nil
	}
	return "", ErrPermission
}

func (s *Service) firstDirWithImportFile() (string, bool) {
	for _, dir := range s.dirs {
		for _, name := range []string{importCSVName, importTextName} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, true
			}
		}
	}
	return "", false
}

// readRows parses an import file into header-keyed rows. CSV files go
// through encoding/csv; the .txt fallback is plain comma-split lines with
// the same header contract and no quoting.
func readRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records [][]string
	if strings.HasSuffix(path, ".csv") {
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		records, err = reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("malformed CSV: %w", err)
		}
	} else {
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			records = append(records, strings.Split(line, ","))
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	head := records[0]
	for _, field := range requiredFields {
		if !contains(head, field) {
			return nil, fmt.Errorf("invalid headers in %s", path)
		}
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(head))
		for i, col := range head {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowToBill validates one import row with the same rules as the store load.
// Unknown categories normalize to Other; a missing frequency defaults to
// Custom.
func rowToBill(row map[string]string) (bill.Bill, error) {
	for _, field := range requiredFields {
		if _, ok := row[field]; !ok {
			return bill.Bill{}, fmt.Errorf("missing field %s", field)
		}
	}

	due, err := bill.ParseDate(row["Due"])
	if err != nil {
		return bill.Bill{}, err
	}
	amount, err := strconv.ParseFloat(row["Amount"], 64)
	if err != nil || amount <= 0 {
		return bill.Bill{}, fmt.Errorf("%w: amount must be a positive number", bill.ErrValidation)
	}

	frequency := bill.Custom
	if f := row["Frequency"]; f != "" {
		parsed, err := bill.ParseFrequency(f)
		if err != nil {
			return bill.Bill{}, err
		}
		frequency = parsed
	}

	b := bill.Bill{
		ID:        uuid.NewString(),
		Name:      row["Name"],
		Amount:    amount,
		Due:       due,
		Paid:      strings.ToLower(row["Paid"]) == "true",
		Category:  bill.NormalizeCategory(row["Category"]),
		Frequency: frequency,
	}
	if err := b.Validate(); err != nil {
		return bill.Bill{}, err
	}
	return b, nil
}

func contains(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
