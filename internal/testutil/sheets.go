package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// FakeSheets is an in-memory stand-in for the Sheets REST API and the
// OAuth2 token endpoint. Serve it with httptest.NewServer and point the
// client at server.URL + "/v4".
type FakeSheets struct {
	mu      sync.Mutex
	titles  []string
	grids   map[string][][]any
	size    map[string]int
	Tokens  int
	Auth    []string
	Appends int
	Clears  int
	// FailPath makes any request whose path contains it return FailStatus.
	FailPath   string
	FailStatus int
}

// DefaultGridRows is the row count of a new worksheet.
const DefaultGridRows = 1000

// NewFakeSheets creates a spreadsheet with the given worksheet titles.
func NewFakeSheets(titles ...string) *FakeSheets {
	f := &FakeSheets{grids: make(map[string][][]any), size: make(map[string]int)}
	for _, t := range titles {
		f.titles = append(f.titles, t)
		f.grids[t] = nil
		f.size[t] = DefaultGridRows
	}
	return f
}

// GridRows returns the number of rows in a worksheet's grid, blank or not.
func (f *FakeSheets) GridRows(title string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size[title]
}

// SetRows replaces the full contents of a worksheet, header included.
func (f *FakeSheets) SetRows(title string, rows [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grids[title] = rows
}

// Rows returns a copy of a worksheet's contents, header included.
func (f *FakeSheets) Rows(title string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, len(f.grids[title]))
	copy(out, f.grids[title])
	return out
}

// AuthHeaders returns the Authorization headers of every API request so far.
func (f *FakeSheets) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Auth...)
}

// Counts returns how many tokens, clears and appends were served.
func (f *FakeSheets) Counts() (tokens, clears, appends int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Tokens, f.Clears, f.Appends
}

// ServeHTTP implements http.Handler
func (f *FakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if f.FailPath != "" && strings.Contains(r.URL.Path, f.FailPath) {
		w.WriteHeader(f.FailStatus)
		w.Write([]byte(`{"error":{"message":"injected failure"}}`))
		return
	}

	if r.URL.Path == "/token" {
		f.Tokens++
		w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
		return
	}

	f.Auth = append(f.Auth, r.Header.Get("Authorization"))

	rest, ok := strings.CutPrefix(r.URL.Path, "/v4/spreadsheets/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, rng, hasRange := strings.Cut(rest, "/values/")
	if !hasRange {
		f.writeMetadata(w)
		return
	}

	switch {
	case strings.HasSuffix(rng, ":clear"):
		title := sheetTitle(strings.TrimSuffix(rng, ":clear"))
		if len(f.grids[title]) > 1 {
			f.grids[title] = f.grids[title][:1]
		}
		f.Clears++
		w.Write([]byte(`{}`))
	case strings.HasSuffix(rng, ":append"):
		title := sheetTitle(strings.TrimSuffix(rng, ":append"))
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("insertDataOption") {
		case "INSERT_ROWS":
			f.size[title] += len(body.Values)
		default:
			f.size[title] = max(f.size[title], len(f.grids[title])+len(body.Values))
		}
		f.grids[title] = append(f.grids[title], body.Values...)
		f.Appends++
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		title := sheetTitle(rng)
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Values) != 1 {
			http.Error(w, "bad header body", http.StatusBadRequest)
			return
		}
		if len(f.grids[title]) == 0 {
			f.grids[title] = [][]any{body.Values[0]}
		} else {
			f.grids[title][0] = body.Values[0]
		}
		w.Write([]byte(`{}`))
	default:
		title := sheetTitle(rng)
		resp := map[string]any{"range": rng}
		if g := f.grids[title]; len(g) > 0 && len(g[0]) > 0 {
			resp["values"] = [][]any{g[0]}
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func (f *FakeSheets) writeMetadata(w http.ResponseWriter) {
	type props struct {
		SheetID int64  `json:"sheetId"`
		Title   string `json:"title"`
	}
	type sheet struct {
		Properties props `json:"properties"`
	}
	var sheets []sheet
	for i, t := range f.titles {
		sheets = append(sheets, sheet{Properties: props{SheetID: int64(i), Title: t}})
	}
	json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
}

// sheetTitle extracts the worksheet title from an A1 range like 'My ''Sheet'''!A1.
func sheetTitle(rng string) string {
	title, _, _ := strings.Cut(rng, "!")
	if strings.HasPrefix(title, "'") && strings.HasSuffix(title, "'") && len(title) >= 2 {
		title = strings.ReplaceAll(title[1:len(title)-1], "''", "'")
	}
	return title
}

// ServiceAccountB64 returns a base64-encoded service-account JSON document
// with a freshly generated RSA key and the given token endpoint.
func ServiceAccountB64(t *testing.T, tokenURI string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(ServiceAccountJSON(t, tokenURI))
}

// ServiceAccountJSON returns a service-account JSON document with a freshly
// generated RSA key and the given token endpoint.
func ServiceAccountJSON(t *testing.T, tokenURI string) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	doc, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"client_email":   "ratesync@test-project.iam.gserviceaccount.com",
		"private_key_id": "test-key-id",
		"private_key":    string(keyPEM),
		"token_uri":      tokenURI,
	})
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	return doc
}
