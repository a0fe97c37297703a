package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/insights"
	"github.com/sitewise/sitewise-server/internal/services"
	"github.com/sitewise/sitewise-server/internal/store/sqlite"
)

type testEnv struct {
	server   *httptest.Server
	upstream *httptest.Server
	users    *services.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	// Fake generateContent upstream returning a fixed classification.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner, _ := json.Marshal(map[string]string{
			"category": "Safety",
			"priority": "High",
			"summary":  "Guardrail missing on level 3.",
		})
		_ = json.NewEncoder(w).Encode(insights.GenerateResponse{Text: string(inner)})
	}))
	t.Cleanup(upstream.Close)

	tokens := auth.NewTokenIssuer("api-test-secret", time.Hour)
	ic := insights.New(upstream.URL, "", "gemini-2.5-flash", 5*time.Second)
	log := zerolog.Nop()

	users := services.NewUserService(st, tokens)
	deps := Deps{
		Users:    users,
		Visits:   services.NewVisitService(st, nil),
		Receipts: services.NewReceiptService(st),
		Issues:   services.NewIssueService(st, ic, log),
		Reports:  services.NewReportService(st, nil),
		Tokens:   tokens,
		Insights: ic,
	}
	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)

	return &testEnv{server: server, upstream: upstream, users: users}
}

func (e *testEnv) createUser(t *testing.T, email, role, password string) {
	t.Helper()
	_, err := e.users.CreateUser(t.Context(), email, "", role, password)
	require.NoError(t, err)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(e.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func (e *testEnv) do(t *testing.T, token, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

const apiVisitCSV = `Sl No,Date,Visitor Name,Department,Designation,Visited Project Name,Entry Time,Out Time,Duration,Formula
1,5-Mar-24,Alice,Projects,Engineer,Tower A,09:00,10:30,1:30:00,
2,6-Mar-24,Bob,Projects,Engineer,Tower B,14:00,15:00,1:00:00,
`

const apiReceiptCSV = `Sl No,Project,MRF Number,Supplier,Material Name,Quantity,Unit,Receiving Date,Receiving Time
1,Tower A,MRF-1,Acme,Cement,100,bag,5-Mar-24,09:30
`

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@test.local", auth.RoleAdmin, "changeme")
	token := env.login(t, "admin@test.local", "changeme")

	resp := env.do(t, token, http.MethodGet, "/api/auth/me", nil, "")
	var out struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Capabilities []string `json:"capabilities"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "admin@test.local", out.User.Email)
	assert.Equal(t, auth.RoleAdmin, out.User.Role)
	assert.NotEmpty(t, out.Capabilities)
}

func TestLoginBadPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@test.local", auth.RoleAdmin, "changeme")

	body, _ := json.Marshal(map[string]string{"email": "admin@test.local", "password": "nope"})
	resp, err := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/api/visits")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestViewerCannotImport(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "viewer@test.local", auth.RoleViewer, "pw123456")
	token := env.login(t, "viewer@test.local", "pw123456")

	resp := env.do(t, token, http.MethodPost, "/api/visits/import", strings.NewReader(apiVisitCSV), "text/csv")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVisitImportListExport(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	resp := env.do(t, token, http.MethodPost, "/api/visits/import", strings.NewReader(apiVisitCSV), "text/csv")
	var imported struct {
		Imported int `json:"imported"`
	}
	decode(t, resp, &imported)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, imported.Imported)

	resp = env.do(t, token, http.MethodGet, "/api/visits?person=alice", nil, "")
	var listed struct {
		Count  int `json:"count"`
		Visits []struct {
			Date    string `json:"date"`
			Project string `json:"project"`
		} `json:"visits"`
	}
	decode(t, resp, &listed)
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, "2024-03-05", listed.Visits[0].Date)

	resp = env.do(t, token, http.MethodGet, "/api/visits/export", nil, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Tower A")
}

func TestVisitImportBadRowRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	bad := strings.Replace(apiVisitCSV, "Alice", "", 1)
	resp := env.do(t, token, http.MethodPost, "/api/visits/import", strings.NewReader(bad), "text/csv")
	var errOut struct {
		Message string `json:"message"`
	}
	decode(t, resp, &errOut)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errOut.Message, "row 2")

	resp = env.do(t, token, http.MethodGet, "/api/visits", nil, "")
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 0, listed.Count)
}

func TestDeliveryCoverageReport(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	resp := env.do(t, token, http.MethodPost, "/api/visits/import", strings.NewReader(apiVisitCSV), "text/csv")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = env.do(t, token, http.MethodPost, "/api/receipts/import", strings.NewReader(apiReceiptCSV), "text/csv")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, token, http.MethodGet, "/api/reports/delivery-coverage", nil, "")
	var cov struct {
		Total int `json:"total"`
		Found int `json:"found"`
	}
	decode(t, resp, &cov)
	assert.Equal(t, 1, cov.Total)
	assert.Equal(t, 1, cov.Found)

	resp = env.do(t, token, http.MethodGet, "/api/reports/delivery-coverage/export?format=xlsx", nil, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
}

func TestIssueLifecycleWithAnalysis(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	body, _ := json.Marshal(map[string]interface{}{
		"project":     "Tower A",
		"description": "guardrail missing on level 3",
	})
	resp := env.do(t, token, http.MethodPost, "/api/issues", bytes.NewReader(body), "application/json")
	var created struct {
		IssueID string `json:"issueId"`
		Status  string `json:"status"`
	}
	decode(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "OPEN", created.Status)

	resp = env.do(t, token, http.MethodPost, fmt.Sprintf("/api/issues/%s/analyze", created.IssueID), nil, "")
	var analyzed struct {
		Analysis *struct {
			Category string `json:"category"`
			Priority string `json:"priority"`
		} `json:"analysis"`
	}
	decode(t, resp, &analyzed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, analyzed.Analysis)
	assert.Equal(t, "Safety", analyzed.Analysis.Category)

	cbody, _ := json.Marshal(map[string]string{"text": "contractor notified"})
	resp = env.do(t, token, http.MethodPost, fmt.Sprintf("/api/issues/%s/comments", created.IssueID), bytes.NewReader(cbody), "application/json")
	var withComment struct {
		Comments []struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		} `json:"comments"`
	}
	decode(t, resp, &withComment)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "contractor notified", withComment.Comments[0].Text)
	assert.Equal(t, "mgr@test.local", withComment.Comments[0].Author)

	sbody, _ := json.Marshal(map[string]string{"status": "CLOSED"})
	resp = env.do(t, token, http.MethodPut, fmt.Sprintf("/api/issues/%s/status", created.IssueID), bytes.NewReader(sbody), "application/json")
	var closed struct {
		Status string `json:"status"`
	}
	decode(t, resp, &closed)
	assert.Equal(t, "CLOSED", closed.Status)
}

func TestGenerateProxy(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	body, _ := json.Marshal(insights.GenerateRequest{
		Parts: []insights.Part{{Text: "describe this site"}},
	})
	resp := env.do(t, token, http.MethodPost, "/api/gemini/generateContent", bytes.NewReader(body), "application/json")
	var out insights.GenerateResponse
	decode(t, resp, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.Text)
}

func TestCreateReceiptManually(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")
	token := env.login(t, "mgr@test.local", "pw123456")

	body, _ := json.Marshal(map[string]string{
		"project":      "Tower C",
		"mrfNumber":    "MRF-7",
		"material":     "Blocks",
		"receivedDate": "7-Mar-24",
		"receivedTime": "08:45",
	})
	resp := env.do(t, token, http.MethodPost, "/api/receipts", bytes.NewReader(body), "application/json")
	var created struct {
		ReceiptID    string `json:"receiptId"`
		ReceivedDate string `json:"receivedDate"`
	}
	decode(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ReceiptID)
	assert.Equal(t, "2024-03-07", created.ReceivedDate)

	resp = env.do(t, token, http.MethodGet, "/api/receipts?project=tower+c", nil, "")
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 1, listed.Count)
}

func TestDeleteUserDeactivates(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@test.local", auth.RoleAdmin, "changeme")
	adminToken := env.login(t, "admin@test.local", "changeme")

	body, _ := json.Marshal(map[string]string{
		"email": "temp@test.local", "role": auth.RoleViewer, "password": "pw123456",
	})
	resp := env.do(t, adminToken, http.MethodPost, "/api/users", bytes.NewReader(body), "application/json")
	var created struct {
		UserID string `json:"userId"`
	}
	decode(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Deactivation must survive as a status flip, not a row deletion.
	resp = env.do(t, adminToken, http.MethodDelete, "/api/users/"+created.UserID, nil, "")
	var deactivated struct {
		Status string `json:"status"`
	}
	decode(t, resp, &deactivated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INACTIVE", deactivated.Status)

	resp = env.do(t, adminToken, http.MethodGet, "/api/users/"+created.UserID, nil, "")
	var fetched struct {
		Status string `json:"status"`
	}
	decode(t, resp, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INACTIVE", fetched.Status)

	// And the deactivated account cannot log in.
	lbody, _ := json.Marshal(map[string]string{"email": "temp@test.local", "password": "pw123456"})
	lresp, err := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(lbody))
	require.NoError(t, err)
	defer lresp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, lresp.StatusCode)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@test.local", auth.RoleAdmin, "changeme")
	env.createUser(t, "mgr@test.local", auth.RoleManager, "pw123456")

	mgrToken := env.login(t, "mgr@test.local", "pw123456")
	body, _ := json.Marshal(map[string]string{
		"email": "new@test.local", "role": auth.RoleViewer, "password": "pw123456",
	})
	resp := env.do(t, mgrToken, http.MethodPost, "/api/users", bytes.NewReader(body), "application/json")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := env.login(t, "admin@test.local", "changeme")
	resp = env.do(t, adminToken, http.MethodPost, "/api/users", bytes.NewReader(body), "application/json")
	var created struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	decode(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, auth.RoleViewer, created.Role)
}
