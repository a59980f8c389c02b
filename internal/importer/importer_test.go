package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

func parseFixture(t *testing.T, name string) *model.RecordSet {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	defer f.Close()

	p := &StatementParser{}
	rs, err := p.Parse(f)
	require.NoError(t, err)
	return rs
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-24,99", "-24.99"},
		{"1 475,01", "1475.01"},
		{"1\u00a0475,01", "1475.01"},
		{"1\u202f000", "1000"},
		{"1 000", "1000"},
		{"0", "0"},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		require.NoError(t, err, "ParseNumber(%q)", tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "ParseNumber(%q) = %s", tt.in, got)
	}
}

func TestParseNumber_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "12.50", "03/01/2024", "1,2,3"} {
		_, err := ParseNumber(in)
		assert.Error(t, err, "ParseNumber(%q)", in)
	}
}

func TestStatementParser_Parse(t *testing.T) {
	rs := parseFixture(t, "statement_jan.csv")
	require.Equal(t, 4, rs.Len())
	assert.Contains(t, rs.Columns(), "accountBalance")

	amount, ok := rs.Get(0, "amount").AsNumber()
	require.True(t, ok)
	assert.Equal(t, "-24.99", amount.StringFixed(2))

	balance, ok := rs.Get(1, "accountBalance").AsNumber()
	require.True(t, ok)
	assert.Equal(t, "3975.01", balance.StringFixed(2))

	// Dates stay text until normalization.
	dv, ok := rs.Get(0, "dateVal").AsText()
	require.True(t, ok)
	assert.Equal(t, "03/01/2024", dv)

	assert.Equal(t, "CB AMAZON MKT PAYMENTS", rs.Get(0, "label").String())
	assert.True(t, rs.Get(0, "comment").IsEmpty())
}

func TestStatementParser_MixedColumnStaysText(t *testing.T) {
	data := "label;ref\nA;12\nB;x1\nC;\n"
	p := &StatementParser{}
	rs, err := p.Parse(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, model.KindText, rs.Get(0, "ref").Kind())
	assert.Equal(t, model.KindText, rs.Get(1, "ref").Kind())
	assert.True(t, rs.Get(2, "ref").IsEmpty())
}

func TestStatementParser_StripsBOM(t *testing.T) {
	p := &StatementParser{}
	rs, err := p.Parse(strings.NewReader("\ufeffdateVal;amount\n01/01/2024;1,5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dateVal", "amount"}, rs.Columns())
}

func TestStatementParser_HeaderOnly(t *testing.T) {
	p := &StatementParser{}
	rs, err := p.Parse(strings.NewReader("dateVal;amount\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestStatementParser_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"too many":   "a;b\n1;2;3\n",
		"long later": "a;b\n1;2\n1;2;3\n",
		"dup header": "a;a\n1;2\n",
		"blank head": "a;\n1;2\n",
	}
	for name, data := range tests {
		p := &StatementParser{}
		_, err := p.Parse(strings.NewReader(data))
		assert.Error(t, err, name)
	}
}

func TestStatementParser_PadsShortRows(t *testing.T) {
	p := &StatementParser{}
	rs, err := p.Parse(strings.NewReader("dateVal;label;amount;comment\n03/01/2024;X;-1,00\n04/01/2024;Y;-2,00;note\n"))
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	assert.True(t, rs.Get(0, "comment").IsEmpty())
	assert.Equal(t, "note", rs.Get(1, "comment").String())
	amount, ok := rs.Get(0, "amount").AsNumber()
	require.True(t, ok)
	assert.Equal(t, "-1.00", amount.StringFixed(2))
}

func TestStatementParser_StrayQuoteInLabel(t *testing.T) {
	p := &StatementParser{}
	rs, err := p.Parse(strings.NewReader("dateVal;label;amount\n03/01/2024;CB LE \"PETIT\" CAFE;-1,00\n"))
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "CB LE \"PETIT\" CAFE", rs.Get(0, "label").String())
	assert.Equal(t, model.KindNumber, rs.Get(0, "amount").Kind())
}

func TestMerge_UnionsColumns(t *testing.T) {
	a := model.NewRecordSet("label", "amount")
	require.NoError(t, a.Append(model.Record{model.Text("x"), model.Int(1)}))
	b := model.NewRecordSet("amount", "category")
	require.NoError(t, b.Append(model.Record{model.Int(2), model.Text("food")}))

	merged := Merge(a, b)
	assert.Equal(t, []string{"label", "amount", "category"}, merged.Columns())
	require.Equal(t, 2, merged.Len())
	assert.True(t, merged.Get(0, "category").IsEmpty())
	assert.True(t, merged.Get(1, "label").IsEmpty())
	assert.Equal(t, "2", merged.Get(1, "amount").String())
	assert.Equal(t, "food", merged.Get(1, "category").String())
}

func TestLoad_OrderAndOverlap(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata")
	files := []FileInfo{
		{Name: "statement_jan.csv", Path: filepath.Join(dir, "statement_jan.csv")},
		{Name: "statement_feb.csv", Path: filepath.Join(dir, "statement_feb.csv")},
	}
	rs, err := Load(&StatementParser{}, files)
	require.NoError(t, err)
	assert.Equal(t, 8, rs.Len())
	assert.Equal(t, "CB AMAZON MKT PAYMENTS", rs.Get(0, "label").String())
	assert.Equal(t, "CB Amazon Prime", rs.Get(7, "label").String())

	// The two exports overlap by two rows.
	assert.Equal(t, 2, rs.Dedupe())
}

func TestLoad_UnreadableSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2;3\n"), 0o644))

	_, err := Load(&StatementParser{}, []FileInfo{{Name: "bad.csv", Path: path}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing bad.csv")
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OTHER.CSV"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	names := []string{files[0].Name, files[1].Name}
	assert.ElementsMatch(t, []string{"bank.csv", "OTHER.CSV"}, names)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_IgnoresSubdirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
