package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
)

// SQLiteStore persists to a single SQLite database file. Amounts are stored
// as TEXT to keep decimal values exact, and dates as YYYY-MM-DD strings so
// they sort and compare lexically.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and brings its
// schema up to date.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Records() ([]models.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, amount, category, description, occurred_on, is_recurring, frequency
		FROM records ORDER BY occurred_on, id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			r                models.Record
			amount, occurred string
			recurring        int
			frequency        string
		)
		if err := rows.Scan(&r.ID, &r.Kind, &amount, &r.Category, &r.Description, &occurred, &recurring, &frequency); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("record %s amount %q: %w", r.ID, amount, err)
		}
		if r.OccurredOn, err = calendar.Parse(occurred); err != nil {
			return nil, fmt.Errorf("record %s date: %w", r.ID, err)
		}
		r.IsRecurring = recurring != 0
		r.Frequency = calendar.Frequency(frequency)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) AddRecords(records []models.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (id, kind, amount, category, description, occurred_on, is_recurring, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		recurring := 0
		if r.IsRecurring {
			recurring = 1
		}
		if _, err := stmt.Exec(r.ID, string(r.Kind), r.Amount.String(), r.Category,
			r.Description, r.OccurredOn.String(), recurring, string(r.Frequency)); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RemoveRecords(ids []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for _, id := range ids {
		res, err := tx.Exec("DELETE FROM records WHERE id = ?", id)
		if err != nil {
			return 0, fmt.Errorf("delete record %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *SQLiteStore) Subscriptions() ([]models.Subscription, error) {
	rows, err := s.db.Query(`
		SELECT id, name, amount, frequency, start_date, end_date, category, is_active, auto_generate, last_billed
		FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var (
			sub             models.Subscription
			amount, start   string
			end, lastBilled sql.NullString
			active, autoGen int
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &amount, &sub.Frequency, &start,
			&end, &sub.Category, &active, &autoGen, &lastBilled); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if sub.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("subscription %s amount %q: %w", sub.ID, amount, err)
		}
		if sub.StartDate, err = calendar.Parse(start); err != nil {
			return nil, fmt.Errorf("subscription %s start date: %w", sub.ID, err)
		}
		if end.Valid {
			d, err := calendar.Parse(end.String)
			if err != nil {
				return nil, fmt.Errorf("subscription %s end date: %w", sub.ID, err)
			}
			sub.EndDate = &d
		}
		if lastBilled.Valid {
			d, err := calendar.Parse(lastBilled.String)
			if err != nil {
				return nil, fmt.Errorf("subscription %s last billed: %w", sub.ID, err)
			}
			sub.LastBilled = &d
		}
		sub.IsActive = active != 0
		sub.AutoGenerate = autoGen != 0
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) SaveSubscription(sub models.Subscription) error {
	var end, lastBilled any
	if sub.EndDate != nil {
		end = sub.EndDate.String()
	}
	if sub.LastBilled != nil {
		lastBilled = sub.LastBilled.String()
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO subscriptions
			(id, name, amount, frequency, start_date, end_date, category, is_active, auto_generate, last_billed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Amount.String(), string(sub.Frequency), sub.StartDate.String(),
		end, sub.Category, boolToInt(sub.IsActive), boolToInt(sub.AutoGenerate), lastBilled)
	if err != nil {
		return fmt.Errorf("save subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Assets() ([]models.Asset, error) {
	rows, err := s.db.Query("SELECT id, name, category, current_value FROM assets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var (
			a     models.Asset
			value string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &value); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.CurrentValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("asset %s value %q: %w", a.ID, value, err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *SQLiteStore) SaveAsset(asset models.Asset) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO assets (id, name, category, current_value)
		VALUES (?, ?, ?, ?)`,
		asset.ID, asset.Name, asset.Category, asset.CurrentValue.String())
	if err != nil {
		return fmt.Errorf("save asset %s: %w", asset.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Liabilities() ([]models.Liability, error) {
	rows, err := s.db.Query(`
		SELECT id, name, category, current_balance, interest_rate, minimum_payment
		FROM liabilities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query liabilities: %w", err)
	}
	defer rows.Close()

	var liabilities []models.Liability
	for rows.Next() {
		var (
			l       models.Liability
			balance string
			rate    sql.NullFloat64
			payment sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Category, &balance, &rate, &payment); err != nil {
			return nil, fmt.Errorf("scan liability: %w", err)
		}
		if l.CurrentBalance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("liability %s balance %q: %w", l.ID, balance, err)
		}
		if rate.Valid {
			r := rate.Float64
			l.InterestRate = &r
		}
		if payment.Valid {
			p, err := decimal.NewFromString(payment.String)
			if err != nil {
				return nil, fmt.Errorf("liability %s minimum payment %q: %w", l.ID, payment.String, err)
			}
			l.MinimumPayment = &p
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, rows.Err()
}

func (s *SQLiteStore) SaveLiability(liability models.Liability) error {
	var rate, payment any
	if liability.InterestRate != nil {
		rate = *liability.InterestRate
	}
	if liability.MinimumPayment != nil {
		payment = liability.MinimumPayment.String()
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO liabilities (id, name, category, current_balance, interest_rate, minimum_payment)
		VALUES (?, ?, ?, ?, ?, ?)`,
		liability.ID, liability.Name, liability.Category, liability.CurrentBalance.String(), rate, payment)
	if err != nil {
		return fmt.Errorf("save liability %s: %w", liability.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Snapshots() ([]models.NetWorthSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT date, total_assets, total_liabilities, net_worth, asset_breakdown, liability_breakdown
		FROM snapshots ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.NetWorthSnapshot
	for rows.Next() {
		var (
			snap                           models.NetWorthSnapshot
			date, assets, liabilities, net string
			assetJSON, liabilityJSON       []byte
		)
		if err := rows.Scan(&date, &assets, &liabilities, &net, &assetJSON, &liabilityJSON); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if snap.Date, err = calendar.Parse(date); err != nil {
			return nil, fmt.Errorf("snapshot date: %w", err)
		}
		if snap.TotalAssets, err = decimal.NewFromString(assets); err != nil {
			return nil, fmt.Errorf("snapshot %s assets: %w", date, err)
		}
		if snap.TotalLiabilities, err = decimal.NewFromString(liabilities); err != nil {
			return nil, fmt.Errorf("snapshot %s liabilities: %w", date, err)
		}
		if snap.NetWorth, err = decimal.NewFromString(net); err != nil {
			return nil, fmt.Errorf("snapshot %s net worth: %w", date, err)
		}
		if err := json.Unmarshal(assetJSON, &snap.AssetBreakdown); err != nil {
			return nil, fmt.Errorf("snapshot %s asset breakdown: %w", date, err)
		}
		if err := json.Unmarshal(liabilityJSON, &snap.LiabilityBreakdown); err != nil {
			return nil, fmt.Errorf("snapshot %s liability breakdown: %w", date, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SaveSnapshot inserts or replaces by date. The delta against the previous
// snapshot is derived at computation time and never persisted.
func (s *SQLiteStore) SaveSnapshot(snap models.NetWorthSnapshot) error {
	assetJSON, err := json.Marshal(snap.AssetBreakdown)
	if err != nil {
		return fmt.Errorf("marshal asset breakdown: %w", err)
	}
	liabilityJSON, err := json.Marshal(snap.LiabilityBreakdown)
	if err != nil {
		return fmt.Errorf("marshal liability breakdown: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO snapshots
			(date, total_assets, total_liabilities, net_worth, asset_breakdown, liability_breakdown)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Date.String(), snap.TotalAssets.String(), snap.TotalLiabilities.String(),
		snap.NetWorth.String(), string(assetJSON), string(liabilityJSON))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Date, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
