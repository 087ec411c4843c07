// Command customer-import bulk-loads customers from gzipped CSV exports
// (name,email per line). Files are scanned concurrently; duplicate emails
// across files are resolved first-wins, and emails already registered are
// left untouched via ON CONFLICT DO NOTHING.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/repository"
)

const insertCustomerSQL = `INSERT INTO customers (id, name, email)
	VALUES ($1, $2, $3)
	ON CONFLICT (email) DO NOTHING`

const insertBatchSize = 1_000

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz customer exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("customer import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("customer import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files in %s", dataDir)
	}

	slog.Info("scanning export files", slog.Int("files", len(files)))

	customers, err := scanFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "scan export files")
	}

	slog.Info("unique customers found", slog.Int("count", len(customers)))

	if len(customers) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeCustomers(ctx, pool, customers)
}

// scanFiles reads all export files concurrently and merges them into one
// email -> name map. The first occurrence of an email wins.
func scanFiles(ctx context.Context, files []string) (map[string]string, error) {
	var (
		mu     sync.Mutex
		merged = make(map[string]string)
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		g.Go(func() error {
			found, err := scanFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "scan %s", path)
			}

			mu.Lock()
			for email, name := range found {
				if _, ok := merged[email]; !ok {
					merged[email] = name
				}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

// scanFile parses one gzipped CSV export. Lines that do not split into
// exactly name,email or carry an empty email are skipped.
func scanFile(ctx context.Context, path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	found := make(map[string]string)
	scanner := bufio.NewScanner(gz)
	var line int
	for scanner.Scan() {
		line++
		if line%100_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		name, email, ok := strings.Cut(scanner.Text(), ",")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if _, seen := found[email]; !seen {
			found[email] = name
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return found, nil
}

// writeCustomers inserts the merged customers in batches.
func writeCustomers(ctx context.Context, pool *pgxpool.Pool, customers map[string]string) error {
	batch := &pgx.Batch{}
	var total int

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "send batch")
		}
		total += batch.Len()
		batch = &pgx.Batch{}
		return nil
	}

	for email, name := range customers {
		batch.Queue(insertCustomerSQL, uuid.New().String(), name, email)
		if batch.Len() >= insertBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("customers written", slog.Int("count", total))
	return nil
}
