package model

import "time"

// User represents an account in the system. Passwords are stored only as
// bcrypt hashes; PasswordHash is never serialized.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreationTime time.Time `json:"creationTime"`
}

// Visit is a single logged entry/exit event by a person at a project site.
// Date is ISO YYYY-MM-DD; EntryTime/OutTime are wall-clock HH:MM or HH:MM:SS.
// DurationRaw carries the H:M:S string as received; DurationSeconds is its
// parsed value, zero when the string is malformed, in which case Improper is
// set and the row is reported in a separate bucket instead of folded into
// duration totals.
type Visit struct {
	VisitID         string    `json:"visitId"`
	Date            string    `json:"date"`
	Person          string    `json:"person"`
	Department      string    `json:"department,omitempty"`
	Designation     string    `json:"designation,omitempty"`
	Project         string    `json:"project"`
	EntryTime       string    `json:"entryTime,omitempty"`
	OutTime         string    `json:"outTime,omitempty"`
	DurationRaw     string    `json:"duration,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	Improper        bool      `json:"improper"`
	Source          string    `json:"source"`
	CreationTime    time.Time `json:"creationTime"`
}

// Receipt is a logged delivery of construction material to a project site.
type Receipt struct {
	ReceiptID    string    `json:"receiptId"`
	Project      string    `json:"project"`
	MRFNumber    string    `json:"mrfNumber"`
	Supplier     string    `json:"supplier,omitempty"`
	Material     string    `json:"material"`
	Quantity     string    `json:"quantity,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	ReceivedDate string    `json:"receivedDate"`
	ReceivedTime string    `json:"receivedTime,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Photo is an inline image attached to an issue.
type Photo struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// Analysis is the classification produced for an issue. It is set as a
// unit: an issue either has a full analysis or none.
type Analysis struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Summary  string `json:"summary"`
}

// Comment is a free-text note on an issue.
type Comment struct {
	Author       string    `json:"author"`
	Text         string    `json:"text"`
	CreationTime time.Time `json:"creationTime"`
}

// Issue is a reported site problem with optional photos and AI analysis.
type Issue struct {
	IssueID      string    `json:"issueId"`
	Project      string    `json:"project"`
	Description  string    `json:"description"`
	Photos       []Photo   `json:"photos,omitempty"`
	Comments     []Comment `json:"comments,omitempty"`
	Status       string    `json:"status"`
	Analysis     *Analysis `json:"analysis,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// ListVisitsRequest captures filters used when listing visits.
type ListVisitsRequest struct {
	From    string
	To      string
	Project string
	Person  string
}

// ListReceiptsRequest captures filters used when listing receipts.
type ListReceiptsRequest struct {
	From    string
	To      string
	Project string
}

// User statuses.
const (
	UserActive   = "ACTIVE"
	UserInactive = "INACTIVE"
)

// Issue statuses.
const (
	IssueOpen   = "OPEN"
	IssueClosed = "CLOSED"
)

// Visit sources.
const (
	SourceImport = "import"
	SourceManual = "manual"
)
