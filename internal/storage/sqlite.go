// Package storage persists payroll history, PTO balances and the audit
// trail in SQLite. It is the storage collaborator of the calculation core:
// the core itself never performs I/O, the batch driver resolves prior
// state here before a run and saves outcomes after it.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgerline/monacopay/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store wraps the SQLite database. Monetary values are stored as exact
// decimal strings, never floats.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payslips (
		company      TEXT NOT NULL,
		matricule    TEXT NOT NULL,
		period_index INTEGER NOT NULL, -- year*12 + month-1, for range scans
		period       TEXT NOT NULL,
		gross        TEXT NOT NULL,
		net          TEXT NOT NULL,
		result_json  TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (company, matricule, period_index)
	);
	CREATE INDEX IF NOT EXISTS idx_payslips_employee
		ON payslips (company, matricule, period_index DESC);

	CREATE TABLE IF NOT EXISTS pto_balances (
		company      TEXT NOT NULL,
		matricule    TEXT NOT NULL,
		period_index INTEGER NOT NULL,
		balance_json TEXT NOT NULL,
		PRIMARY KEY (company, matricule, period_index)
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ts         TEXT NOT NULL,
		company    TEXT NOT NULL,
		matricule  TEXT NOT NULL,
		period     TEXT NOT NULL,
		field      TEXT NOT NULL,
		old_value  TEXT NOT NULL,
		new_value  TEXT NOT NULL,
		reason     TEXT NOT NULL,
		confidence REAL NOT NULL,
		automatic  INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func periodIndex(p domain.Period) int {
	return p.Year*12 + p.Month - 1
}

// SavePayslip upserts one calculation result. Re-running a period replaces
// the previous result; the audit log keeps the paper trail.
func (s *Store) SavePayslip(company string, res *domain.PayslipResult) error {
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode payslip: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO payslips (company, matricule, period_index, period, gross, net, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company, matricule, period_index) DO UPDATE SET
			period = excluded.period,
			gross = excluded.gross,
			net = excluded.net,
			result_json = excluded.result_json`,
		company, res.Matricule, periodIndex(res.Period), res.Period.String(),
		res.Gross.String(), res.Net.String(), string(blob))
	if err != nil {
		return fmt.Errorf("failed to save payslip %s/%s: %w", res.Matricule, res.Period, err)
	}

	balance, err := json.Marshal(res.PTO)
	if err != nil {
		return fmt.Errorf("failed to encode balance: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO pto_balances (company, matricule, period_index, balance_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (company, matricule, period_index) DO UPDATE SET
			balance_json = excluded.balance_json`,
		company, res.Matricule, periodIndex(res.Period), string(balance))
	if err != nil {
		return fmt.Errorf("failed to save balance %s/%s: %w", res.Matricule, res.Period, err)
	}
	return nil
}

// GrossHistory returns up to limit prior gross values for an employee,
// strictly before the given period, oldest first. An employee with no
// history returns an empty slice.
func (s *Store) GrossHistory(company, matricule string, before domain.Period, limit int) ([]decimal.Decimal, error) {
	rows, err := s.db.Query(`
		SELECT gross FROM payslips
		WHERE company = ? AND matricule = ? AND period_index < ?
		ORDER BY period_index DESC LIMIT ?`,
		company, matricule, periodIndex(before), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query gross history: %w", err)
	}
	defer rows.Close()

	var newestFirst []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan gross: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt gross value %q: %w", raw, err)
		}
		newestFirst = append(newestFirst, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]decimal.Decimal, len(newestFirst))
	for i, d := range newestFirst {
		out[len(newestFirst)-1-i] = d
	}
	return out, nil
}

// PriorBalance returns the most recent PTO balance strictly before the
// given period, or nil when the employee has none on record.
func (s *Store) PriorBalance(company, matricule string, before domain.Period) (*domain.PTOBalance, error) {
	var blob string
	err := s.db.QueryRow(`
		SELECT balance_json FROM pto_balances
		WHERE company = ? AND matricule = ? AND period_index < ?
		ORDER BY period_index DESC LIMIT 1`,
		company, matricule, periodIndex(before)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}

	var b domain.PTOBalance
	if err := json.Unmarshal([]byte(blob), &b); err != nil {
		return nil, fmt.Errorf("corrupt balance record: %w", err)
	}
	return &b, nil
}

// SaveAudit appends agent audit entries. The log is append-only.
func (s *Store) SaveAudit(company string, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO audit_log (ts, company, matricule, period, field, old_value, new_value, reason, confidence, automatic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		auto := 0
		if e.Automatic {
			auto = 1
		}
		if _, err := stmt.Exec(e.Timestamp.Format("2006-01-02T15:04:05Z"), company, e.Matricule,
			e.Period.String(), e.Field, e.Old.String(), e.New.String(), e.Reason, e.Confidence, auto); err != nil {
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}
	}
	return tx.Commit()
}
