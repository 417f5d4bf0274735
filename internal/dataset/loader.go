package dataset

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ecom-insights/internal/config"
	"ecom-insights/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10

	minCustomerAge = 18
	maxCustomerAge = 120
	minRating      = 1.0
	maxRating      = 5.0

	// revenue must equal price*quantity; parsed floats get this much slack.
	revenueTolerance = 0.01

	dateLayout = "2006-01-02"
)

// expectedHeader is the required CSV column order. Lines are split on commas
// for speed, so the header is verified up front instead of mapped per row.
var expectedHeader = []string{
	"transaction_id", "product_name", "category", "price", "quantity",
	"customer_age", "customer_rating", "revenue", "purchase_date",
}

type Loader struct {
	csvPath      string
	cacheDir     string
	cacheEnabled bool
	logger       *slog.Logger
}

func NewLoader(cfg config.DatasetConfig, logger *slog.Logger) *Loader {
	return &Loader{
		csvPath:      cfg.CSVFile,
		cacheDir:     cfg.CacheDir,
		cacheEnabled: cfg.CacheEnabled,
		logger:       logger,
	}
}

// Load parses the CSV into a fresh snapshot. Rows that fail validation are
// excluded and counted, never silently dropped into aggregates.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	fileInfo, err := os.Stat(l.csvPath)
	if err != nil {
		return nil, fmt.Errorf("stat csv: %w", err)
	}

	if l.cacheEnabled {
		if cached, err := l.loadCache(fileInfo.ModTime()); err == nil {
			l.logger.Info("loaded dataset from cache",
				"records", len(cached.Records),
				"excluded", cached.Excluded)
			return l.newSnapshot(cached.Records, cached.Excluded), nil
		}
	}

	start := time.Now()
	l.logger.Info("processing CSV file", "filename", l.csvPath)

	records, excluded, err := l.streamParseCSV(ctx)
	if err != nil {
		return nil, fmt.Errorf("process csv: %w", err)
	}

	if l.cacheEnabled {
		if err := l.saveCache(records, excluded, fileInfo.ModTime()); err != nil {
			l.logger.Warn("failed to save cache", "error", err)
		}
	}

	duration := time.Since(start)
	l.logger.Info("csv processing complete",
		"records", len(records),
		"excluded", excluded,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))

	return l.newSnapshot(records, excluded), nil
}

func (l *Loader) newSnapshot(records []models.Transaction, excluded int64) *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		Records:  records,
		Excluded: excluded,
		LoadedAt: time.Now().UTC(),
	}
}

func (l *Loader) streamParseCSV(ctx context.Context) ([]models.Transaction, int64, error) {
	file, err := os.Open(l.csvPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("empty file")
	}
	if err := checkHeader(scanner.Text()); err != nil {
		return nil, 0, err
	}

	var (
		records  []models.Transaction
		excluded int64
	)

	batch := make([]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		parsed, bad, err := l.parseBatch(ctx, batch)
		if err != nil {
			return err
		}
		records = append(records, parsed...)
		excluded += bad
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		batch = append(batch, scanner.Text())

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, 0, err
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan error: %w", err)
	}

	if len(records) == 0 {
		l.logger.Warn("no valid records in csv", "filename", l.csvPath, "excluded", excluded)
	}

	return records, excluded, nil
}

// parseBatch fans the batch out across workers. Each worker writes only its
// own index, so file order survives into the snapshot; later rows win ties
// (representative price selection depends on that).
func (l *Loader) parseBatch(ctx context.Context, batch []string) ([]models.Transaction, int64, error) {
	type parsedRow struct {
		tx models.Transaction
		ok bool
	}

	results := make([]parsedRow, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tx, err := parseTransaction(strings.Split(line, ","))
			if err != nil {
				l.logger.Debug("excluding malformed row", "error", err)
				return nil
			}

			results[i] = parsedRow{tx: tx, ok: true}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	parsed := make([]models.Transaction, 0, len(batch))
	var excluded int64
	for _, row := range results {
		if !row.ok {
			excluded++
			continue
		}
		parsed = append(parsed, row.tx)
	}

	return parsed, excluded, nil
}

func checkHeader(line string) error {
	fields := strings.Split(line, ",")
	if len(fields) != len(expectedHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(fields), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if strings.TrimSpace(fields[i]) != want {
			return fmt.Errorf("header column %d is %q, want %q", i, strings.TrimSpace(fields[i]), want)
		}
	}
	return nil
}

func parseTransaction(record []string) (models.Transaction, error) {
	if len(record) != len(expectedHeader) {
		return models.Transaction{}, fmt.Errorf("row has %d columns, want %d", len(record), len(expectedHeader))
	}

	id := strings.TrimSpace(record[0])
	if id == "" {
		return models.Transaction{}, fmt.Errorf("empty transaction_id")
	}

	productName := strings.TrimSpace(record[1])
	if productName == "" {
		return models.Transaction{}, fmt.Errorf("empty product_name")
	}

	category := strings.TrimSpace(record[2])
	if category == "" {
		return models.Transaction{}, fmt.Errorf("empty category")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("price: %w", err)
	}
	if price <= 0 {
		return models.Transaction{}, fmt.Errorf("price %v not positive", price)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity <= 0 {
		return models.Transaction{}, fmt.Errorf("quantity %d not positive", quantity)
	}

	age, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("customer_age: %w", err)
	}
	if age < minCustomerAge || age > maxCustomerAge {
		return models.Transaction{}, fmt.Errorf("customer_age %d out of range", age)
	}

	// A blank rating is a legitimate absence, not a malformed row.
	var rating *float64
	if raw := strings.TrimSpace(record[6]); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("customer_rating: %w", err)
		}
		if value < minRating || value > maxRating {
			return models.Transaction{}, fmt.Errorf("customer_rating %v out of range", value)
		}
		rating = &value
	}

	revenue, err := strconv.ParseFloat(strings.TrimSpace(record[7]), 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("revenue: %w", err)
	}
	if math.Abs(revenue-price*float64(quantity)) > revenueTolerance {
		return models.Transaction{}, fmt.Errorf("revenue %v does not match price*quantity", revenue)
	}

	purchaseDate, err := time.Parse(dateLayout, strings.TrimSpace(record[8]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("purchase_date: %w", err)
	}

	return models.Transaction{
		TransactionID:  id,
		ProductName:    productName,
		Category:       category,
		Price:          price,
		Quantity:       quantity,
		Revenue:        revenue,
		CustomerAge:    age,
		CustomerRating: rating,
		PurchaseDate:   purchaseDate,
	}, nil
}
