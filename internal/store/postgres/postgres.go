package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a connection, bootstraps the schema and returns a store over it.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users       { return &users{db: s.db} }
func (s *pgStore) Visits() store.Visits     { return &visits{db: s.db} }
func (s *pgStore) Receipts() store.Receipts { return &receipts{db: s.db} }
func (s *pgStore) Issues() store.Issues     { return &issues{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset truncates every table. Test support only.
func (s *pgStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE users, visits, receipts, issues`)
	return err
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            display_name TEXT,
            role TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            status TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS visits (
            visit_id TEXT PRIMARY KEY,
            visit_date TEXT NOT NULL,
            person TEXT NOT NULL,
            department TEXT,
            designation TEXT,
            project TEXT NOT NULL,
            entry_time TEXT,
            out_time TEXT,
            duration_raw TEXT,
            duration_seconds INTEGER NOT NULL DEFAULT 0,
            improper BOOLEAN NOT NULL DEFAULT FALSE,
            source TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS visits_date_idx ON visits(visit_date)`,
		`CREATE TABLE IF NOT EXISTS receipts (
            receipt_id TEXT PRIMARY KEY,
            project TEXT NOT NULL,
            mrf_number TEXT NOT NULL,
            supplier TEXT,
            material TEXT NOT NULL,
            quantity TEXT,
            unit TEXT,
            received_date TEXT NOT NULL,
            received_time TEXT,
            creation_time TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS receipts_date_idx ON receipts(received_date)`,
		`CREATE TABLE IF NOT EXISTS issues (
            issue_id TEXT PRIMARY KEY,
            project TEXT NOT NULL,
            description TEXT NOT NULL,
            photos JSONB,
            comments JSONB,
            status TEXT NOT NULL,
            category TEXT,
            priority TEXT,
            summary TEXT,
            creation_time TIMESTAMPTZ NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.UserActive
	}
	out.CreationTime = time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, role, password_hash, status, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, out.UserID, out.Email, out.DisplayName, out.Role, out.PasswordHash, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const userCols = `user_id, email, display_name, role, password_hash, status, creation_time`

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE user_id=$1`, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (u *users) List(ctx context.Context) ([]*model.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY creation_time`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.User
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (u *users) Update(ctx context.Context, m *model.User) (*model.User, error) {
	res, err := u.db.ExecContext(ctx, `
        UPDATE users SET display_name=$1, role=$2, password_hash=$3, status=$4 WHERE user_id=$5
    `, m.DisplayName, m.Role, m.PasswordHash, m.Status, m.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return u.Get(ctx, m.UserID)
}

func (u *users) Count(ctx context.Context) (int, error) {
	var n int
	err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row rowScanner) (*model.User, error) {
	var m model.User
	var displayName sql.NullString
	if err := row.Scan(&m.UserID, &m.Email, &displayName, &m.Role, &m.PasswordHash, &m.Status, &m.CreationTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	m.DisplayName = displayName.String
	return &m, nil
}

// --- Visits ---

type visits struct{ db *sql.DB }

const visitCols = `visit_id, visit_date, person, department, designation, project, entry_time, out_time, duration_raw, duration_seconds, improper, source, creation_time`

func (v *visits) CreateBatch(ctx context.Context, vs []*model.Visit) ([]*model.Visit, error) {
	tx, err := v.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	out := make([]*model.Visit, 0, len(vs))
	for _, in := range vs {
		rec := *in
		if rec.VisitID == "" {
			rec.VisitID = uuid.New().String()
		}
		rec.CreationTime = now
		_, err := tx.ExecContext(ctx, `
            INSERT INTO visits (visit_id, visit_date, person, department, designation, project,
                entry_time, out_time, duration_raw, duration_seconds, improper, source, creation_time)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        `, rec.VisitID, rec.Date, rec.Person, rec.Department, rec.Designation, rec.Project,
			rec.EntryTime, rec.OutTime, rec.DurationRaw, rec.DurationSeconds, rec.Improper, rec.Source, rec.CreationTime)
		if err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *visits) GetByID(ctx context.Context, visitID string) (*model.Visit, error) {
	row := v.db.QueryRowContext(ctx, `SELECT `+visitCols+` FROM visits WHERE visit_id=$1`, visitID)
	return scanVisit(row)
}

func (v *visits) List(ctx context.Context, req model.ListVisitsRequest) ([]*model.Visit, error) {
	q := `SELECT ` + visitCols + ` FROM visits WHERE 1=1`
	var args []any
	n := 0
	arg := func(val any) string {
		n++
		args = append(args, val)
		return fmt.Sprintf("$%d", n)
	}
	if req.From != "" {
		q += ` AND visit_date >= ` + arg(req.From)
	}
	if req.To != "" {
		q += ` AND visit_date <= ` + arg(req.To)
	}
	if req.Project != "" {
		q += ` AND LOWER(TRIM(project)) = LOWER(TRIM(` + arg(req.Project) + `))`
	}
	if req.Person != "" {
		q += ` AND LOWER(TRIM(person)) = LOWER(TRIM(` + arg(req.Person) + `))`
	}
	q += ` ORDER BY visit_date DESC, creation_time DESC`

	rows, err := v.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Visit
	for rows.Next() {
		m, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (v *visits) DeleteAll(ctx context.Context) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM visits`)
	return err
}

func scanVisit(row rowScanner) (*model.Visit, error) {
	var m model.Visit
	var dept, desg, entry, out, raw sql.NullString
	if err := row.Scan(&m.VisitID, &m.Date, &m.Person, &dept, &desg, &m.Project,
		&entry, &out, &raw, &m.DurationSeconds, &m.Improper, &m.Source, &m.CreationTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	m.Department, m.Designation = dept.String, desg.String
	m.EntryTime, m.OutTime, m.DurationRaw = entry.String, out.String, raw.String
	return &m, nil
}

// --- Receipts ---

type receipts struct{ db *sql.DB }

const receiptCols = `receipt_id, project, mrf_number, supplier, material, quantity, unit, received_date, received_time, creation_time`

func (r *receipts) CreateBatch(ctx context.Context, rs []*model.Receipt) ([]*model.Receipt, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	out := make([]*model.Receipt, 0, len(rs))
	for _, in := range rs {
		rec := *in
		if rec.ReceiptID == "" {
			rec.ReceiptID = uuid.New().String()
		}
		rec.CreationTime = now
		_, err := tx.ExecContext(ctx, `
            INSERT INTO receipts (receipt_id, project, mrf_number, supplier, material, quantity, unit, received_date, received_time, creation_time)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        `, rec.ReceiptID, rec.Project, rec.MRFNumber, rec.Supplier, rec.Material,
			rec.Quantity, rec.Unit, rec.ReceivedDate, rec.ReceivedTime, rec.CreationTime)
		if err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *receipts) List(ctx context.Context, req model.ListReceiptsRequest) ([]*model.Receipt, error) {
	q := `SELECT ` + receiptCols + ` FROM receipts WHERE 1=1`
	var args []any
	n := 0
	arg := func(val any) string {
		n++
		args = append(args, val)
		return fmt.Sprintf("$%d", n)
	}
	if req.From != "" {
		q += ` AND received_date >= ` + arg(req.From)
	}
	if req.To != "" {
		q += ` AND received_date <= ` + arg(req.To)
	}
	if req.Project != "" {
		q += ` AND LOWER(TRIM(project)) = LOWER(TRIM(` + arg(req.Project) + `))`
	}
	q += ` ORDER BY received_date DESC, creation_time DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Receipt
	for rows.Next() {
		var m model.Receipt
		var supplier, qty, unit, rtime sql.NullString
		if err := rows.Scan(&m.ReceiptID, &m.Project, &m.MRFNumber, &supplier, &m.Material,
			&qty, &unit, &m.ReceivedDate, &rtime, &m.CreationTime); err != nil {
			return nil, err
		}
		m.Supplier, m.Quantity, m.Unit, m.ReceivedTime = supplier.String, qty.String, unit.String, rtime.String
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *receipts) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM receipts`)
	return err
}

// --- Issues ---

type issues struct{ db *sql.DB }

const issueCols = `issue_id, project, description, photos, comments, status, category, priority, summary, creation_time`

func (i *issues) Create(ctx context.Context, in *model.Issue) (*model.Issue, error) {
	rec := *in
	if rec.IssueID == "" {
		rec.IssueID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = model.IssueOpen
	}
	rec.CreationTime = time.Now().UTC()

	photosJSON, _ := json.Marshal(rec.Photos)
	commentsJSON, _ := json.Marshal(rec.Comments)
	var cat, pri, sum *string
	if rec.Analysis != nil {
		cat, pri, sum = &rec.Analysis.Category, &rec.Analysis.Priority, &rec.Analysis.Summary
	}
	_, err := i.db.ExecContext(ctx, `
        INSERT INTO issues (issue_id, project, description, photos, comments, status, category, priority, summary, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, rec.IssueID, rec.Project, rec.Description, string(photosJSON), string(commentsJSON),
		rec.Status, cat, pri, sum, rec.CreationTime)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i *issues) GetByID(ctx context.Context, issueID string) (*model.Issue, error) {
	row := i.db.QueryRowContext(ctx, `SELECT `+issueCols+` FROM issues WHERE issue_id=$1`, issueID)
	return scanIssue(row)
}

func (i *issues) List(ctx context.Context) ([]*model.Issue, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT `+issueCols+` FROM issues ORDER BY creation_time DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Issue
	for rows.Next() {
		m, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (i *issues) AddComment(ctx context.Context, issueID string, c model.Comment) (*model.Issue, error) {
	cur, err := i.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	c.CreationTime = time.Now().UTC()
	cur.Comments = append(cur.Comments, c)
	commentsJSON, _ := json.Marshal(cur.Comments)
	if _, err := i.db.ExecContext(ctx, `UPDATE issues SET comments=$1 WHERE issue_id=$2`, string(commentsJSON), issueID); err != nil {
		return nil, err
	}
	return cur, nil
}

func (i *issues) SetAnalysis(ctx context.Context, issueID string, a *model.Analysis) (*model.Issue, error) {
	var cat, pri, sum *string
	if a != nil {
		cat, pri, sum = &a.Category, &a.Priority, &a.Summary
	}
	res, err := i.db.ExecContext(ctx, `UPDATE issues SET category=$1, priority=$2, summary=$3 WHERE issue_id=$4`, cat, pri, sum, issueID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return i.GetByID(ctx, issueID)
}

func (i *issues) SetStatus(ctx context.Context, issueID, status string) (*model.Issue, error) {
	res, err := i.db.ExecContext(ctx, `UPDATE issues SET status=$1 WHERE issue_id=$2`, status, issueID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return i.GetByID(ctx, issueID)
}

func (i *issues) Delete(ctx context.Context, issueID string) error {
	res, err := i.db.ExecContext(ctx, `DELETE FROM issues WHERE issue_id=$1`, issueID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanIssue(row rowScanner) (*model.Issue, error) {
	var m model.Issue
	var photosJSON, commentsJSON, cat, pri, sum sql.NullString
	if err := row.Scan(&m.IssueID, &m.Project, &m.Description, &photosJSON, &commentsJSON,
		&m.Status, &cat, &pri, &sum, &m.CreationTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if photosJSON.Valid && photosJSON.String != "" {
		_ = json.Unmarshal([]byte(photosJSON.String), &m.Photos)
	}
	if commentsJSON.Valid && commentsJSON.String != "" {
		_ = json.Unmarshal([]byte(commentsJSON.String), &m.Comments)
	}
	if cat.Valid && pri.Valid && sum.Valid {
		m.Analysis = &model.Analysis{Category: cat.String, Priority: pri.String, Summary: sum.String}
	}
	return &m, nil
}
