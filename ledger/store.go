package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store wraps the SQLite database holding the ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and
// applies the schema. Transactions start with BEGIN IMMEDIATE so
// concurrent writers serialize up front instead of failing at commit.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser inserts a new user with the given starting cash balance
// and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (User, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, cash, created_at)
		VALUES (?, ?, ?, ?)`,
		username, passwordHash, startingCash.String(), now,
	)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return User{}, fmt.Errorf("%q: %w", username, ErrDuplicateUser)
		}
		return User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Cash:         startingCash,
		CreatedAt:    now,
	}, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, cash, created_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByName returns the user with the given username.
func (s *Store) GetUserByName(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, cash, created_at
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u    User
		cash string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &cash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	u.Cash, err = decimal.NewFromString(cash)
	if err != nil {
		return User{}, fmt.Errorf("bad cash value for user %d: %w", u.ID, err)
	}
	return u, nil
}

// GetHolding returns the user's position in symbol, or ErrNoHolding.
func (s *Store) GetHolding(ctx context.Context, userID int64, symbol string) (Holding, error) {
	var h Holding
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, symbol, shares
		FROM holdings WHERE user_id = ? AND symbol = ?`,
		userID, symbol,
	).Scan(&h.UserID, &h.Symbol, &h.Shares)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Holding{}, fmt.Errorf("%q: %w", symbol, ErrNoHolding)
		}
		return Holding{}, err
	}
	return h, nil
}

// ListHoldings returns all of the user's positions ordered by symbol.
func (s *Store) ListHoldings(ctx context.Context, userID int64) ([]Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, symbol, shares
		FROM holdings WHERE user_id = ?
		ORDER BY symbol ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holding
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Shares); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListHistory returns every history entry for the user in insertion
// order. ULID ids make that a plain ORDER BY id.
func (s *Store) ListHistory(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, symbol, shares, price, total_value, balance_before, balance_after, created_at
		FROM history WHERE user_id = ?
		ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanHistory(rows *sql.Rows) (HistoryEntry, error) {
	var (
		e                           HistoryEntry
		price, total, before, after string
	)
	err := rows.Scan(&e.ID, &e.UserID, &e.Side, &e.Symbol, &e.Shares,
		&price, &total, &before, &after, &e.CreatedAt)
	if err != nil {
		return HistoryEntry{}, err
	}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{price, &e.Price},
		{total, &e.TotalValue},
		{before, &e.BalanceBefore},
		{after, &e.BalanceAfter},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return HistoryEntry{}, fmt.Errorf("bad money value in history %s: %w", e.ID, err)
		}
		*f.dst = d
	}
	return e, nil
}
