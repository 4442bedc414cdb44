package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/nimsdash/authgate/internal/core/domain"
)

// Expected header columns of the users tab. user_group is optional and
// defaults to 0 when the column or cell is absent.
var requiredColumns = []string{"user_id", "username", "password", "user_level"}

// SheetsUserDirectory implements domain.UserDirectory over a Google Sheets
// tab. The first row is the header; columns are matched case-insensitively
// and may appear in any order. Every lookup re-reads the tab, so results
// always reflect the latest sheet state.
type SheetsUserDirectory struct {
	svc       *sheets.Service
	sheetID   string
	sheetName string
}

// NewSheetsUserDirectory creates a directory reading the named tab of the
// given spreadsheet. credentialsFile may be empty, in which case application
// default credentials are used.
func NewSheetsUserDirectory(ctx context.Context, sheetID, sheetName, credentialsFile string) (*SheetsUserDirectory, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetsUserDirectory{svc: svc, sheetID: sheetID, sheetName: sheetName}, nil
}

// Ping verifies the users tab exists and is readable. A missing tab is a
// configuration error and should fail startup.
func (d *SheetsUserDirectory) Ping(ctx context.Context) error {
	if _, err := d.readTab(ctx); err != nil {
		return err
	}
	return nil
}

// FindUserByUsername reads the whole tab and returns the first
// case-insensitive match.
func (d *SheetsUserDirectory) FindUserByUsername(ctx context.Context, username string) (*domain.UserRecord, error) {
	values, err := d.readTab(ctx)
	if err != nil {
		return nil, err
	}
	return matchUserRow(values, username)
}

func (d *SheetsUserDirectory) readTab(ctx context.Context) ([][]interface{}, error) {
	resp, err := d.svc.Spreadsheets.Values.Get(d.sheetID, d.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read tab %q of spreadsheet %s: %w", d.sheetName, d.sheetID, err)
	}
	return resp.Values, nil
}

// matchUserRow scans header-plus-data rows for the first case-insensitive
// username match. Duplicate usernames resolve to the earliest row.
func matchUserRow(values [][]interface{}, username string) (*domain.UserRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(values[0]))
	for i, h := range values[0] {
		idx[strings.ToLower(strings.TrimSpace(cellString(h)))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("users tab missing column %q", col)
		}
	}

	want := strings.ToLower(strings.TrimSpace(username))
	for _, row := range values[1:] {
		uname := strings.TrimSpace(cell(row, idx["username"]))
		if uname == "" || strings.ToLower(uname) != want {
			continue
		}

		rec := &domain.UserRecord{
			UserID:    cell(row, idx["user_id"]),
			Username:  uname,
			Password:  cell(row, idx["password"]),
			UserLevel: cellInt(row, idx["user_level"], 0),
		}
		if gi, ok := idx["user_group"]; ok {
			rec.UserGroup = cellInt(row, gi, 0)
		}
		return rec, nil
	}

	return nil, nil
}

func cell(row []interface{}, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return cellString(row[i])
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Unformatted numeric cells arrive as float64.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func cellInt(row []interface{}, i, def int) int {
	s := strings.TrimSpace(cell(row, i))
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}
