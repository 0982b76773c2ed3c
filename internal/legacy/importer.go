// Package legacy imports complaints from the previous SIPelan installation,
// which kept its data in SQL Server. The import is a one-shot command run
// before go-live, not a running integration: it reads the old tables,
// normalizes their free-form status strings and writes complaints with a
// reconstructed history through the regular repository.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Importer reads the legacy SQL Server database
type Importer struct {
	db         *sql.DB
	repo       domain.Repository
	categories domain.CategoryRepository
}

// NewImporter opens the legacy database and prepares an importer
func NewImporter(dsn string, repo domain.Repository, categories domain.CategoryRepository) (*Importer, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	db.SetMaxOpenConns(4)

	return &Importer{db: db, repo: repo, categories: categories}, nil
}

// Close closes the legacy database connection
func (i *Importer) Close() error {
	return i.db.Close()
}

// legacyRow mirrors the old pengaduan table
type legacyRow struct {
	Kode         string
	Judul        string
	Isi          string
	NamaPelapor  sql.NullString
	EmailPelapor sql.NullString
	TelpPelapor  sql.NullString
	Anonim       bool
	Lokasi       sql.NullString
	Kategori     string
	Status       string
	TglLapor     time.Time
	TglUpdate    sql.NullTime
}

// Result summarizes an import run
type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Run imports all legacy complaints. Rows whose status cannot be
// normalized or whose category is unknown are skipped and logged, never
// guessed at.
func (i *Importer) Run(ctx context.Context) (*Result, error) {
	if err := i.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach legacy database: %w", err)
	}

	categories, err := i.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT kode, judul, isi, nama_pelapor, email_pelapor, telp_pelapor,
			anonim, lokasi, kategori, status, tgl_lapor, tgl_update
		FROM dbo.pengaduan
		ORDER BY tgl_lapor`)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy complaints: %w", err)
	}
	defer rows.Close()

	result := &Result{}
	for rows.Next() {
		var row legacyRow
		err := rows.Scan(
			&row.Kode, &row.Judul, &row.Isi,
			&row.NamaPelapor, &row.EmailPelapor, &row.TelpPelapor,
			&row.Anonim, &row.Lokasi, &row.Kategori, &row.Status,
			&row.TglLapor, &row.TglUpdate,
		)
		if err != nil {
			return result, fmt.Errorf("failed to scan legacy row: %w", err)
		}

		switch err := i.importRow(ctx, &row, categories); {
		case err == nil:
			result.Imported++
		case errSkip(err):
			log.Printf("legacy import skipping %s: %v", row.Kode, err)
			result.Skipped++
		default:
			log.Printf("legacy import failed on %s: %v", row.Kode, err)
			result.Failed++
		}
	}

	return result, rows.Err()
}

type skipError struct{ reason string }

func (e *skipError) Error() string { return e.reason }

func errSkip(err error) bool {
	_, ok := err.(*skipError)
	return ok
}

func (i *Importer) categoryIndex(ctx context.Context) (map[string]types.ID, error) {
	cats, err := i.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	index := make(map[string]types.ID, len(cats))
	for _, cat := range cats {
		index[cat.Name] = cat.ID
	}
	return index, nil
}

func (i *Importer) importRow(ctx context.Context, row *legacyRow, categories map[string]types.ID) error {
	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return &skipError{reason: fmt.Sprintf("unknown status %q", row.Status)}
	}

	categoryID, ok := categories[row.Kategori]
	if !ok {
		return &skipError{reason: fmt.Sprintf("unknown category %q", row.Kategori)}
	}

	exists, err := i.repo.CodeExists(ctx, row.Kode)
	if err != nil {
		return err
	}
	if exists {
		return &skipError{reason: "already imported"}
	}

	c, err := domain.NewComplaint(categoryID, row.Judul, row.Isi, domain.Reporter{
		Name:  row.NamaPelapor.String,
		Email: row.EmailPelapor.String,
		Phone: row.TelpPelapor.String,
	}, row.Anonim)
	if err != nil {
		return &skipError{reason: err.Error()}
	}

	c.Code = row.Kode
	c.Location = row.Lokasi.String
	c.Status = status
	c.CreatedAt = row.TglLapor
	c.UpdatedAt = row.TglLapor
	if row.TglUpdate.Valid {
		c.UpdatedAt = row.TglUpdate.Time
	}

	// The old system kept no history log. Reconstruct a single imported
	// entry at the original submission time plus a marker for the
	// migrated status.
	c.History = []domain.StatusEntry{
		{
			ID:          types.NewID(),
			ComplaintID: c.ID,
			Status:      domain.StatusSubmitted,
			Note:        "Diimpor dari sistem lama",
			ActorRole:   domain.ActorSystem,
			CreatedAt:   row.TglLapor,
		},
	}
	if status != domain.StatusSubmitted {
		c.History = append(c.History, domain.StatusEntry{
			ID:          types.NewID(),
			ComplaintID: c.ID,
			Status:      status,
			Note:        "Status dimigrasikan dari sistem lama",
			ActorRole:   domain.ActorSystem,
			CreatedAt:   c.UpdatedAt,
		})
	}

	return i.repo.Save(ctx, c)
}
