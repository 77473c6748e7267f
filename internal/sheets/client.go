package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"resty.dev/v3"

	"ratesync/internal/pipeline"
	"ratesync/internal/ratelimit"
)

// Table is one worksheet of a spreadsheet.
type Table struct {
	ID    int64
	Title string
}

// Backend is the row-storage surface the Publisher needs.
type Backend interface {
	Tables(ctx context.Context) ([]Table, error)
	Header(ctx context.Context, table Table) ([]string, error)
	WriteHeader(ctx context.Context, table Table, header []string) error
	ClearRows(ctx context.Context, table Table) error
	AppendRows(ctx context.Context, table Table, rows [][]any) error
}

type spreadsheetResponse struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

// Client talks to one spreadsheet through the Sheets REST API.
type Client struct {
	client        *resty.Client
	spreadsheetID string
	tokens        oauth2.TokenSource
}

// NewClient creates a Client for spreadsheetID authorised by tokens.
func NewClient(baseURL, spreadsheetID string, tokens oauth2.TokenSource) *Client {
	return &Client{
		client:        NewHTTPClient(baseURL),
		spreadsheetID: spreadsheetID,
		tokens:        tokens,
	}
}

// Tables lists the worksheets in spreadsheet order.
func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var result spreadsheetResponse
	resp, err := req.
		SetQueryParam("fields", "sheets.properties(sheetId,title)").
		SetResult(&result).
		Get("/spreadsheets/{id}")
	if err := check(resp, err, "list tables"); err != nil {
		return nil, err
	}

	tables := make([]Table, 0, len(result.Sheets))
	for _, s := range result.Sheets {
		tables = append(tables, Table{ID: s.Properties.SheetID, Title: s.Properties.Title})
	}
	return tables, nil
}

// Header returns the first row of table, empty if the row is blank.
func (c *Client) Header(ctx context.Context, table Table) ([]string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var result valueRange
	resp, err := req.
		SetPathParam("range", a1(table.Title, "1:1")).
		SetResult(&result).
		Get("/spreadsheets/{id}/values/{range}")
	if err := check(resp, err, "read header"); err != nil {
		return nil, err
	}

	if len(result.Values) == 0 {
		return nil, nil
	}
	header := make([]string, 0, len(result.Values[0]))
	for _, v := range result.Values[0] {
		header = append(header, fmt.Sprint(v))
	}
	return header, nil
}

// WriteHeader overwrites the first row of table.
func (c *Client) WriteHeader(ctx context.Context, table Table, header []string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}

	rng := a1(table.Title, "A1")
	resp, err := req.
		SetPathParam("range", rng).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(valueRange{Range: rng, MajorDimension: "ROWS", Values: [][]any{row}}).
		Put("/spreadsheets/{id}/values/{range}")
	return check(resp, err, "write header")
}

// ClearRows clears every row below the header.
func (c *Client) ClearRows(ctx context.Context, table Table) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("range", a1(table.Title, "A2:ZZ")).
		SetBody(struct{}{}).
		Post("/spreadsheets/{id}/values/{range}:clear")
	return check(resp, err, "clear rows")
}

// AppendRows writes rows after the last non-empty row in one request. Rows
// left blank by ClearRows are overwritten, so the grid only grows when the
// batch is larger than any before it.
func (c *Client) AppendRows(ctx context.Context, table Table, rows [][]any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("range", a1(table.Title, "A1")).
		SetQueryParam("valueInputOption", "RAW").
		SetQueryParam("insertDataOption", "OVERWRITE").
		SetBody(valueRange{MajorDimension: "ROWS", Values: rows}).
		Post("/spreadsheets/{id}/values/{range}:append")
	return check(resp, err, "append rows")
}

// request waits for quota, attaches a bearer token and scopes the request
// to the spreadsheet.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APISheets); err != nil {
		return nil, err
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return nil, pipeline.NewPublicationError("sheets: authenticate service account", err)
	}

	return c.client.R().
		SetContext(ctx).
		SetAuthToken(tok.AccessToken).
		SetPathParam("id", c.spreadsheetID), nil
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return pipeline.NewNetworkError(fmt.Errorf("sheets: %s: %w", op, err))
	}
	if !resp.IsSuccess() {
		perr := pipeline.ClassifyHTTPError(resp.StatusCode())
		perr.Message = fmt.Sprintf("sheets: %s: %s", op, perr.Message)
		return perr
	}
	return nil
}

// a1 builds an A1-notation range on a sheet, quoting the title.
func a1(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}
