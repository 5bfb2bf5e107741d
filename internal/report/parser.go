// Package report extracts structured records from markdown performance
// reports. The reports are pipe-table markdown with four known sections:
// Performance Metrics, Trade Log, Monthly Performance, and Quality
// Distribution, optionally preceded by a metadata block of "- Key: Value"
// bullets. Malformed rows are skipped with a warning; a report without a
// trade log cannot drive the dashboard and is rejected outright.
package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/core"
)

const dateLayout = "2006-01-02"

var (
	headingRe  = regexp.MustCompile(`^#{1,3}\s+(.+?)\s*$`)
	metadataRe = regexp.MustCompile(`^[-*]\s+([^:]+):\s+(.+)$`)
	monthRe    = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
	numberRe   = regexp.MustCompile(`-?\d+(\.\d+)?`)
	intRe      = regexp.MustCompile(`\d+`)
)

// Parser turns a markdown performance report into core.ReportData.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads an entire markdown report. It returns ErrParseFailed when the
// document contains no usable trade log.
func (p *Parser) Parse(r io.Reader) (*core.ReportData, error) {
	data := &core.ReportData{
		Metrics:  make(map[string]float64),
		Metadata: make(map[string]string),
	}

	section := ""
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			if strings.HasPrefix(line, "# ") && data.Metadata["title"] == "" {
				data.Metadata["title"] = m[1]
				continue
			}
			section = normalizeSection(m[1])
			continue
		}

		if cells, ok := tableRow(line); ok {
			p.consumeRow(data, section, cells, lineNo)
			continue
		}

		if m := metadataRe.FindStringSubmatch(line); m != nil && section == "" {
			data.Metadata[strings.ToLower(strings.TrimSpace(m[1]))] = strings.TrimSpace(m[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, core.WrapError(core.ErrParseFailed, err)
	}

	if len(data.Trades) == 0 {
		return nil, core.WrapError(core.ErrParseFailed,
			fmt.Errorf("report has no trade log"))
	}
	return data, nil
}

// ParseString is a convenience wrapper over Parse.
func (p *Parser) ParseString(s string) (*core.ReportData, error) {
	return p.Parse(strings.NewReader(s))
}

func normalizeSection(h string) string {
	h = strings.ToLower(h)
	switch {
	case strings.Contains(h, "metric"):
		return "metrics"
	case strings.Contains(h, "trade"):
		return "trades"
	case strings.Contains(h, "monthly"):
		return "monthly"
	case strings.Contains(h, "quality"):
		return "quality"
	default:
		return ""
	}
}

// tableRow splits a markdown pipe-table line into trimmed cells, reporting
// false for non-table lines and for the |---|---| separator row.
func tableRow(line string) ([]string, bool) {
	if !strings.HasPrefix(line, "|") {
		return nil, false
	}
	raw := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, len(raw))
	separator := true
	for i, c := range raw {
		cells[i] = strings.TrimSpace(c)
		if strings.Trim(cells[i], "-: ") != "" {
			separator = false
		}
	}
	if separator {
		return nil, false
	}
	return cells, true
}

func (p *Parser) consumeRow(data *core.ReportData, section string, cells []string, lineNo int) {
	var err error
	switch section {
	case "metrics":
		err = parseMetricRow(data, cells)
	case "trades":
		var tr core.TradeRecord
		if tr, err = parseTradeRow(cells); err == nil {
			data.Trades = append(data.Trades, tr)
		}
	case "monthly":
		var ma core.MonthlyAggregate
		if ma, err = parseMonthlyRow(cells); err == nil {
			data.Monthly = append(data.Monthly, ma)
		}
	case "quality":
		var qb core.QualityBucket
		if qb, err = parseQualityRow(cells); err == nil {
			data.Quality = append(data.Quality, qb)
		}
	default:
		return
	}
	if err == errHeaderRow {
		return
	}
	if err != nil {
		p.logger.Warn("skipping malformed report row",
			zap.String("section", section),
			zap.Int("line", lineNo),
			zap.Error(err))
	}
}

func parseMetricRow(data *core.ReportData, cells []string) error {
	if len(cells) < 2 {
		return fmt.Errorf("metric row has %d cells", len(cells))
	}
	if isHeaderCell(cells[0], "metric") {
		return nil
	}
	v, err := parseNumber(cells[1])
	if err != nil {
		return fmt.Errorf("metric %q: %w", cells[0], err)
	}
	data.Metrics[strings.ToLower(cells[0])] = v
	return nil
}

// Trade log columns: Rank | Ticker | Strategy | Entry | Exit | Return | Duration | Quality
func parseTradeRow(cells []string) (core.TradeRecord, error) {
	var tr core.TradeRecord
	if len(cells) < 8 {
		return tr, fmt.Errorf("trade row has %d cells, want 8", len(cells))
	}
	if isHeaderCell(cells[0], "rank") {
		return tr, errHeaderRow
	}

	rank, err := strconv.Atoi(cells[0])
	if err != nil || rank <= 0 {
		return tr, fmt.Errorf("bad rank %q", cells[0])
	}
	entry, err := time.Parse(dateLayout, cells[3])
	if err != nil {
		return tr, fmt.Errorf("bad entry date %q", cells[3])
	}
	exit, err := time.Parse(dateLayout, cells[4])
	if err != nil {
		return tr, fmt.Errorf("bad exit date %q", cells[4])
	}
	ret, err := parseNumber(cells[5])
	if err != nil {
		return tr, fmt.Errorf("bad return %q", cells[5])
	}
	dur, err := parseDays(cells[6])
	if err != nil {
		return tr, fmt.Errorf("bad duration %q", cells[6])
	}

	tr = core.TradeRecord{
		Rank:         rank,
		Ticker:       cells[1],
		Strategy:     cells[2],
		EntryDate:    entry,
		ExitDate:     exit,
		ReturnPct:    ret,
		DurationDays: dur,
		Quality:      core.ParseQuality(cells[7]),
	}
	return tr, nil
}

// Monthly columns: Month | Trades | Win Rate | Avg Return | Market Context
func parseMonthlyRow(cells []string) (core.MonthlyAggregate, error) {
	var ma core.MonthlyAggregate
	if len(cells) < 5 {
		return ma, fmt.Errorf("monthly row has %d cells, want 5", len(cells))
	}
	if isHeaderCell(cells[0], "month") {
		return ma, errHeaderRow
	}

	m := monthRe.FindStringSubmatch(cells[0])
	if m == nil {
		return ma, fmt.Errorf("bad month %q", cells[0])
	}
	year, _ := strconv.Atoi(m[2])
	closed, err := strconv.Atoi(cells[1])
	if err != nil {
		return ma, fmt.Errorf("bad trade count %q", cells[1])
	}
	winRate, err := parseNumber(cells[2])
	if err != nil {
		return ma, fmt.Errorf("bad win rate %q", cells[2])
	}
	avgReturn, err := parseNumber(cells[3])
	if err != nil {
		return ma, fmt.Errorf("bad avg return %q", cells[3])
	}

	ma = core.MonthlyAggregate{
		Month:         m[1],
		Year:          year,
		TradesClosed:  closed,
		WinRate:       winRate,
		AverageReturn: avgReturn,
		MarketContext: cells[4],
	}
	return ma, nil
}

// Quality columns: Quality | Count | Percentage | Win Rate | Avg Return
func parseQualityRow(cells []string) (core.QualityBucket, error) {
	var qb core.QualityBucket
	if len(cells) < 5 {
		return qb, fmt.Errorf("quality row has %d cells, want 5", len(cells))
	}
	if isHeaderCell(cells[0], "quality") {
		return qb, errHeaderRow
	}

	count, err := strconv.Atoi(cells[1])
	if err != nil {
		return qb, fmt.Errorf("bad count %q", cells[1])
	}
	pct, err := parseNumber(cells[2])
	if err != nil {
		return qb, fmt.Errorf("bad percentage %q", cells[2])
	}
	winRate, err := parseNumber(cells[3])
	if err != nil {
		return qb, fmt.Errorf("bad win rate %q", cells[3])
	}
	avgReturn, err := parseNumber(cells[4])
	if err != nil {
		return qb, fmt.Errorf("bad avg return %q", cells[4])
	}

	qb = core.QualityBucket{
		Category:      core.ParseQuality(cells[0]),
		Count:         count,
		Percentage:    pct,
		WinRate:       winRate,
		AverageReturn: avgReturn,
	}
	return qb, nil
}

var errHeaderRow = fmt.Errorf("header row")

// isHeaderCell reports whether the first cell of a row repeats the column
// name, i.e. the row is the table header rather than data.
func isHeaderCell(cell, name string) bool {
	return strings.EqualFold(cell, name) || strings.EqualFold(cell, name+"s")
}

// parseNumber extracts the first signed decimal from a cell, tolerating
// "%" suffixes and "+" signs.
func parseNumber(cell string) (float64, error) {
	cell = strings.ReplaceAll(cell, "+", "")
	cell = strings.ReplaceAll(cell, ",", "")
	m := numberRe.FindString(cell)
	if m == "" {
		return 0, fmt.Errorf("no number in %q", cell)
	}
	return strconv.ParseFloat(m, 64)
}

func parseDays(cell string) (int, error) {
	m := intRe.FindString(cell)
	if m == "" {
		return 0, fmt.Errorf("no day count in %q", cell)
	}
	d, err := strconv.Atoi(m)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("bad day count %q", cell)
	}
	return d, nil
}
