package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/store"
)

// New opens (or creates) a SQLite database file, bootstraps the schema and
// returns a store over it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB allows wiring with an existing connection (used by tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users       { return &users{db: s.db} }
func (s *sqliteStore) Visits() store.Visits     { return &visits{db: s.db} }
func (s *sqliteStore) Receipts() store.Receipts { return &receipts{db: s.db} }
func (s *sqliteStore) Issues() store.Issues     { return &issues{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

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
	_, err := u.db.ExecContext(ctx, `INSERT INTO Users (UserId, Email, DisplayName, Role, PasswordHash, Status, CreationTime) VALUES (?,?,?,?,?,?,?)`,
		out.UserID, out.Email, out.DisplayName, out.Role, out.PasswordHash, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT UserId, Email, DisplayName, Role, PasswordHash, Status, CreationTime FROM Users WHERE UserId = ?`, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT UserId, Email, DisplayName, Role, PasswordHash, Status, CreationTime FROM Users WHERE Email = ?`, email)
	return scanUser(row)
}

func (u *users) List(ctx context.Context) ([]*model.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT UserId, Email, DisplayName, Role, PasswordHash, Status, CreationTime FROM Users ORDER BY CreationTime`)
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
	res, err := u.db.ExecContext(ctx, `UPDATE Users SET DisplayName = ?, Role = ?, PasswordHash = ?, Status = ? WHERE UserId = ?`,
		m.DisplayName, m.Role, m.PasswordHash, m.Status, m.UserID)
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
	err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users`).Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...any) error }

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

func (v *visits) CreateBatch(ctx context.Context, vs []*model.Visit) ([]*model.Visit, error) {
	tx, err := v.db.BeginTx(ctx, nil)
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
		_, err := tx.ExecContext(ctx, `INSERT INTO Visits (
            VisitId, VisitDate, Person, Department, Designation, Project,
            EntryTime, OutTime, DurationRaw, DurationSeconds, Improper, Source, CreationTime)
            VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			rec.VisitID, rec.Date, rec.Person, rec.Department, rec.Designation, rec.Project,
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
	row := v.db.QueryRowContext(ctx, `SELECT `+visitCols+` FROM Visits WHERE VisitId = ?`, visitID)
	return scanVisit(row)
}

const visitCols = `VisitId, VisitDate, Person, Department, Designation, Project, EntryTime, OutTime, DurationRaw, DurationSeconds, Improper, Source, CreationTime`

func (v *visits) List(ctx context.Context, req model.ListVisitsRequest) ([]*model.Visit, error) {
	q := `SELECT ` + visitCols + ` FROM Visits WHERE 1=1`
	var args []any
	if req.From != "" {
		q += ` AND VisitDate >= ?`
		args = append(args, req.From)
	}
	if req.To != "" {
		q += ` AND VisitDate <= ?`
		args = append(args, req.To)
	}
	if req.Project != "" {
		q += ` AND LOWER(TRIM(Project)) = LOWER(TRIM(?))`
		args = append(args, req.Project)
	}
	if req.Person != "" {
		q += ` AND LOWER(TRIM(Person)) = LOWER(TRIM(?))`
		args = append(args, req.Person)
	}
	q += ` ORDER BY VisitDate DESC, CreationTime DESC`

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
	_, err := v.db.ExecContext(ctx, `DELETE FROM Visits`)
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

func (r *receipts) CreateBatch(ctx context.Context, rs []*model.Receipt) ([]*model.Receipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
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
		_, err := tx.ExecContext(ctx, `INSERT INTO Receipts (
            ReceiptId, Project, MrfNumber, Supplier, Material, Quantity, Unit, ReceivedDate, ReceivedTime, CreationTime)
            VALUES (?,?,?,?,?,?,?,?,?,?)`,
			rec.ReceiptID, rec.Project, rec.MRFNumber, rec.Supplier, rec.Material,
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
	q := `SELECT ReceiptId, Project, MrfNumber, Supplier, Material, Quantity, Unit, ReceivedDate, ReceivedTime, CreationTime FROM Receipts WHERE 1=1`
	var args []any
	if req.From != "" {
		q += ` AND ReceivedDate >= ?`
		args = append(args, req.From)
	}
	if req.To != "" {
		q += ` AND ReceivedDate <= ?`
		args = append(args, req.To)
	}
	if req.Project != "" {
		q += ` AND LOWER(TRIM(Project)) = LOWER(TRIM(?))`
		args = append(args, req.Project)
	}
	q += ` ORDER BY ReceivedDate DESC, CreationTime DESC`

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
	_, err := r.db.ExecContext(ctx, `DELETE FROM Receipts`)
	return err
}

// --- Issues ---

type issues struct{ db *sql.DB }

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
	_, err := i.db.ExecContext(ctx, `INSERT INTO Issues (
        IssueId, Project, Description, Photos, Comments, Status, Category, Priority, Summary, CreationTime)
        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.IssueID, rec.Project, rec.Description, string(photosJSON), string(commentsJSON),
		rec.Status, cat, pri, sum, rec.CreationTime)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const issueCols = `IssueId, Project, Description, Photos, Comments, Status, Category, Priority, Summary, CreationTime`

func (i *issues) GetByID(ctx context.Context, issueID string) (*model.Issue, error) {
	row := i.db.QueryRowContext(ctx, `SELECT `+issueCols+` FROM Issues WHERE IssueId = ?`, issueID)
	return scanIssue(row)
}

func (i *issues) List(ctx context.Context) ([]*model.Issue, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT `+issueCols+` FROM Issues ORDER BY CreationTime DESC`)
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
	if _, err := i.db.ExecContext(ctx, `UPDATE Issues SET Comments = ? WHERE IssueId = ?`, string(commentsJSON), issueID); err != nil {
		return nil, err
	}
	return cur, nil
}

func (i *issues) SetAnalysis(ctx context.Context, issueID string, a *model.Analysis) (*model.Issue, error) {
	var cat, pri, sum *string
	if a != nil {
		cat, pri, sum = &a.Category, &a.Priority, &a.Summary
	}
	res, err := i.db.ExecContext(ctx, `UPDATE Issues SET Category = ?, Priority = ?, Summary = ? WHERE IssueId = ?`, cat, pri, sum, issueID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return i.GetByID(ctx, issueID)
}

func (i *issues) SetStatus(ctx context.Context, issueID, status string) (*model.Issue, error) {
	res, err := i.db.ExecContext(ctx, `UPDATE Issues SET Status = ? WHERE IssueId = ?`, status, issueID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return i.GetByID(ctx, issueID)
}

func (i *issues) Delete(ctx context.Context, issueID string) error {
	res, err := i.db.ExecContext(ctx, `DELETE FROM Issues WHERE IssueId = ?`, issueID)
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
	var photosJSON, commentsJSON sql.NullString
	var cat, pri, sum sql.NullString
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
