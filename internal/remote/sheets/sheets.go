// Package sheets backs the remote store with a Google spreadsheet: one
// sheet per record kind, one row per record, the record id in column A.
// Deleted rows are cleared rather than removed so row numbers of later
// records stay stable.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	goalsSheet    string
	txnsSheet     string
	catsSheet     string
	now           func() time.Time
}

var _ remote.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Sheet names default to "Goals",
// "Transactions", "Categories".
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	goals := envOr("GOOGLE_GOALS_SHEET_NAME", "Goals")
	txns := envOr("GOOGLE_TRANSACTIONS_SHEET_NAME", "Transactions")
	cats := envOr("GOOGLE_CATEGORIES_SHEET_NAME", "Categories")

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		goalsSheet:    goals,
		txnsSheet:     txns,
		catsSheet:     cats,
		now:           time.Now,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

const (
	goalCols        = "A:M"
	transactionCols = "A:I"
	categoryCols    = "A:H"
)

func (c *Client) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := c.readRows(ctx, c.goalsSheet, goalCols)
	if err != nil {
		return nil, err
	}
	var out []core.Goal
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			continue
		}
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *Client) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row, _, err := c.findRow(ctx, c.goalsSheet, goalCols, id)
	if err != nil {
		return core.Goal{}, err
	}
	return goalFromRow(row)
}

func (c *Client) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = c.now().UTC()
	g.UpdatedAt = g.CreatedAt
	if err := c.appendRow(ctx, c.goalsSheet, goalCols, goalToRow(g)); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (c *Client) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	_, rowNum, err := c.findRow(ctx, c.goalsSheet, goalCols, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	g.UpdatedAt = c.now().UTC()
	if err := c.updateRow(ctx, c.goalsSheet, "M", rowNum, goalToRow(g)); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.clearRowByID(ctx, c.goalsSheet, goalCols, "M", id)
}

func (c *Client) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, c.txnsSheet, transactionCols)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			continue
		}
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, _, err := c.findRow(ctx, c.txnsSheet, transactionCols, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return transactionFromRow(row)
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = c.now().UTC()
	t.UpdatedAt = t.CreatedAt
	if err := c.appendRow(ctx, c.txnsSheet, transactionCols, transactionToRow(t)); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	_, rowNum, err := c.findRow(ctx, c.txnsSheet, transactionCols, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.UpdatedAt = c.now().UTC()
	if err := c.updateRow(ctx, c.txnsSheet, "I", rowNum, transactionToRow(t)); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.clearRowByID(ctx, c.txnsSheet, transactionCols, "I", id)
}

func (c *Client) ListCategories(ctx context.Context, filter remote.CategoryFilter) ([]core.Category, error) {
	rows, err := c.readRows(ctx, c.catsSheet, categoryCols)
	if err != nil {
		return nil, err
	}
	var out []core.Category
	for _, row := range rows {
		cat, err := categoryFromRow(row)
		if err != nil {
			continue
		}
		if filter.Kind != nil && cat.Kind != *filter.Kind {
			continue
		}
		if filter.UserDefined != nil && cat.UserDefined != *filter.UserDefined {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row, _, err := c.findRow(ctx, c.catsSheet, categoryCols, id)
	if err != nil {
		return core.Category{}, err
	}
	return categoryFromRow(row)
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	cat.CreatedAt = c.now().UTC()
	cat.UpdatedAt = cat.CreatedAt
	if err := c.appendRow(ctx, c.catsSheet, categoryCols, categoryToRow(cat)); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	row, rowNum, err := c.findRow(ctx, c.catsSheet, categoryCols, cat.ID)
	if err != nil {
		return core.Category{}, err
	}
	prev, err := categoryFromRow(row)
	if err != nil {
		return core.Category{}, err
	}
	if cat.Kind != prev.Kind {
		return core.Category{}, remote.ErrImmutableKind
	}
	cat.UpdatedAt = c.now().UTC()
	if err := c.updateRow(ctx, c.catsSheet, "H", rowNum, categoryToRow(cat)); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.clearRowByID(ctx, c.catsSheet, categoryCols, "H", id)
}

// readRows returns all non-empty data rows, skipping the header and any
// cleared rows.
func (c *Client) readRows(ctx context.Context, sheet, cols string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out [][]any
	for i, row := range resp.Values {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 || strings.TrimSpace(fmt.Sprint(row[0])) == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// findRow locates the 1-based sheet row holding the record id.
func (c *Client) findRow(ctx context.Context, sheet, cols, id string) ([]any, int, error) {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return row, i + 1, nil
		}
	}
	return nil, 0, remote.ErrNotFound
}

func (c *Client) appendRow(ctx context.Context, sheet, cols string, values []any) error {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
	}
	nextRow := len(resp.Values) + 1

	lastCol := cols[strings.IndexByte(cols, ':')+1:]
	dataRange := fmt.Sprintf("%s!A%d:%s%d", sheet, nextRow, lastCol, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", dataRange, err)
	}
	return nil
}

func (c *Client) updateRow(ctx context.Context, sheet, lastCol string, rowNum int, values []any) error {
	dataRange := fmt.Sprintf("%s!A%d:%s%d", sheet, rowNum, lastCol, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", dataRange, err)
	}
	return nil
}

func (c *Client) clearRowByID(ctx context.Context, sheet, cols, lastCol, id string) error {
	_, rowNum, err := c.findRow(ctx, sheet, cols, id)
	if err != nil {
		return err
	}
	dataRange := fmt.Sprintf("%s!A%d:%s%d", sheet, rowNum, lastCol, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, dataRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dataRange, err)
	}
	return nil
}

func goalToRow(g core.Goal) []any {
	return []any{
		g.ID, g.OwnerID, g.Name,
		g.TargetAmount.String(), g.CurrentAmount.String(),
		g.StartDate.UTC().Format(time.RFC3339Nano), string(g.Status),
		g.Icon.Family, g.Icon.Name, g.Color, g.Description,
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
		g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func goalFromRow(row []any) (core.Goal, error) {
	cols := toStrings(row, 13)
	var (
		g   core.Goal
		err error
	)
	g.ID, g.OwnerID, g.Name = cols[0], cols[1], cols[2]
	if g.TargetAmount, err = decimal.NewFromString(cols[3]); err != nil {
		return core.Goal{}, fmt.Errorf("parse target amount: %w", err)
	}
	if g.CurrentAmount, err = decimal.NewFromString(cols[4]); err != nil {
		return core.Goal{}, fmt.Errorf("parse current amount: %w", err)
	}
	if g.StartDate, err = core.ParseDate(cols[5]); err != nil {
		return core.Goal{}, err
	}
	g.Status = core.GoalStatus(cols[6])
	g.Icon = core.Icon{Family: cols[7], Name: cols[8]}
	g.Color, g.Description = cols[9], cols[10]
	g.CreatedAt, _ = core.ParseDate(cols[11])
	g.UpdatedAt, _ = core.ParseDate(cols[12])
	return g, nil
}

func transactionToRow(t core.Transaction) []any {
	return []any{
		t.ID, t.OwnerID, t.Amount.String(), string(t.Type), t.CategoryID,
		t.Date.UTC().Format(time.RFC3339Nano), t.Description,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func transactionFromRow(row []any) (core.Transaction, error) {
	cols := toStrings(row, 9)
	var (
		t   core.Transaction
		err error
	)
	t.ID, t.OwnerID = cols[0], cols[1]
	if t.Amount, err = decimal.NewFromString(cols[2]); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	t.Type = core.TransactionType(cols[3])
	t.CategoryID = cols[4]
	if t.Date, err = core.ParseDate(cols[5]); err != nil {
		return core.Transaction{}, err
	}
	t.Description = cols[6]
	t.CreatedAt, _ = core.ParseDate(cols[7])
	t.UpdatedAt, _ = core.ParseDate(cols[8])
	return t, nil
}

func categoryToRow(c core.Category) []any {
	return []any{
		c.ID, c.Name, c.Icon.Family, c.Icon.Name, string(c.Kind),
		fmt.Sprint(c.UserDefined),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func categoryFromRow(row []any) (core.Category, error) {
	cols := toStrings(row, 8)
	c := core.Category{
		ID:          cols[0],
		Name:        cols[1],
		Icon:        core.Icon{Family: cols[2], Name: cols[3]},
		Kind:        core.CategoryKind(cols[4]),
		UserDefined: cols[5] == "true" || cols[5] == "TRUE" || cols[5] == "1",
	}
	if c.ID == "" || c.Name == "" {
		return core.Category{}, errors.New("empty category row")
	}
	c.CreatedAt, _ = core.ParseDate(cols[6])
	c.UpdatedAt, _ = core.ParseDate(cols[7])
	return c, nil
}

func toStrings(in []any, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(in); i++ {
		out[i] = strings.TrimSpace(fmt.Sprint(in[i]))
	}
	return out
}
