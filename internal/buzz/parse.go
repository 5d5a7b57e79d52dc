package buzz

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Columns located in the buzz table, matched fuzzily against header text.
var requiredHeaders = []string{"player", "add", "drop"}

// ParseRows parses Buzz Index HTML into player rows. Yahoo reshuffles this
// page occasionally, so the table is located by its header labels rather
// than by position: the first table whose header row contains player, add,
// and drop columns wins. No such table parses to zero rows.
func ParseRows(r io.Reader) ([]PlayerRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var rows []PlayerRow
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headerCells := table.Find("thead tr").First().Find("th, td")
		headerInBody := false
		if headerCells.Length() == 0 {
			// Some pages use the first body row as the header.
			headerCells = table.Find("tbody tr").First().Find("th, td")
			headerInBody = true
		}

		cols := columnIndexes(headerCells)
		if cols == nil {
			return true // keep looking
		}

		table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
			if headerInBody && i == 0 {
				return
			}
			if row, ok := parseRow(tr, cols); ok {
				rows = append(rows, row)
			}
		})
		return false
	})
	return rows, nil
}

// columnIndexes maps required header labels to cell indexes, or nil when a
// required label is missing. Matching is case-insensitive substring.
func columnIndexes(headerCells *goquery.Selection) map[string]int {
	labels := make([]string, 0, headerCells.Length())
	headerCells.Each(func(_ int, cell *goquery.Selection) {
		labels = append(labels, strings.ToLower(strings.TrimSpace(cell.Text())))
	})

	cols := make(map[string]int, len(requiredHeaders))
	for _, want := range requiredHeaders {
		found := -1
		for i, label := range labels {
			if strings.Contains(label, want) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil
		}
		cols[want] = found
	}
	return cols
}

func parseRow(tr *goquery.Selection, cols map[string]int) (PlayerRow, bool) {
	cells := tr.Find("td, th")
	if cells.Length() < len(cols) {
		return PlayerRow{}, false
	}

	playerCell := cells.Eq(cols["player"])
	link := playerCell.Find("a").First()
	name := strings.TrimSpace(link.Text())
	if name == "" {
		name = strings.TrimSpace(playerCell.Text())
	}
	if name == "" {
		return PlayerRow{}, false
	}

	// Team/position commonly trails the name as "Name - TEAM - POS"; keep
	// everything after the first separator.
	teamPos := ""
	if full := normalizeSpace(playerCell.Text()); strings.Contains(full, " - ") {
		parts := strings.SplitN(full, " - ", 2)
		teamPos = strings.TrimSpace(parts[1])
	}

	url, _ := link.Attr("href")
	return PlayerRow{
		Name:    name,
		TeamPos: teamPos,
		Adds:    safeInt(cells.Eq(cols["add"]).Text()),
		Drops:   safeInt(cells.Eq(cols["drop"]).Text()),
		URL:     url,
	}, true
}

// safeInt extracts the digits from text and parses them, returning 0 for
// anything unparsable. Handles thousands separators in count cells.
func safeInt(text string) int {
	var digits strings.Builder
	for _, ch := range text {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
