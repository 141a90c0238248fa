package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

var (
	resultLinePattern     = regexp.MustCompile(`^(\d+|NC)\s+([A-Za-z\s]+?)(?:\s+(.+))?$`)
	resultPositionPattern = regexp.MustCompile(`^(\d+|NC)$`)
)

const nonClassifiedMarker = "NC"

// ParsedResults is a draft result produced from pasted classification data.
type ParsedResults struct {
	Results  map[int]int               `json:"results"`
	Statuses map[int]race.FinishStatus `json:"statuses"`
	Times    map[int]string            `json:"times"`
	Pole     *int                      `json:"pole"`
	Skipped  []string                  `json:"skipped"`
}

type resultRow struct {
	position string
	name     string
	detail   string
}

// ParseResultsText reads one driver per line ("1 Lando Norris 1:37:58.574",
// "NC Fernando Alonso DNF") plus an optional "Pole: <name>" line.
func ParseResultsText(text string, roster driver.Roster, logger *logging.Logger) (ParsedResults, error) {
	var (
		rows     []resultRow
		poleName string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "pole:") {
			poleName = strings.TrimSpace(line[len("pole:"):])
			continue
		}
		if row, ok := splitTabbedRow(line); ok {
			rows = append(rows, row)
			continue
		}
		m := resultLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, resultRow{
			position: m[1],
			name:     strings.TrimSpace(m[2]),
			detail:   strings.TrimSpace(m[3]),
		})
	}
	return normalizeResultRows(rows, poleName, roster, logger)
}

// splitTabbedRow handles tab separated rows so multi-word names stay intact.
func splitTabbedRow(line string) (resultRow, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return resultRow{}, false
	}
	position := strings.TrimSpace(parts[0])
	if !resultPositionPattern.MatchString(position) {
		return resultRow{}, false
	}
	return resultRow{
		position: position,
		name:     strings.TrimSpace(parts[1]),
		detail:   strings.TrimSpace(strings.Join(parts[2:], " ")),
	}, true
}

// ParseResultsHTML reads the rows of the first table in doc. The first cell
// is the position, the first cell naming a roster driver is the driver and
// the last cell is the time or status.
func ParseResultsHTML(doc *goquery.Document, roster driver.Roster, logger *logging.Logger) (ParsedResults, error) {
	var rows []resultRow
	doc.Find("table").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			texts = append(texts, strings.Join(strings.Fields(td.Text()), " "))
		})

		row := resultRow{position: strings.ToUpper(texts[0])}
		for _, cell := range texts[1:] {
			if _, ok := roster.FindByName(cell); ok {
				row.name = cell
				break
			}
		}
		if row.name == "" {
			row.name = texts[1]
		}
		if len(texts) > 2 {
			row.detail = texts[len(texts)-1]
		}
		rows = append(rows, row)
	})

	var poleName string
	doc.Find("[data-pole], .pole").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-pole"); ok && strings.TrimSpace(v) != "" {
			poleName = strings.TrimSpace(v)
		} else {
			poleName = strings.TrimSpace(s.Text())
		}
		return poleName == ""
	})

	return normalizeResultRows(rows, poleName, roster, logger)
}

// normalizeResultRows resolves drivers and statuses. NC rows take positions
// after the highest classified one; a DNF marker is classified unless the
// row is NC.
func normalizeResultRows(rows []resultRow, poleName string, roster driver.Roster, logger *logging.Logger) (ParsedResults, error) {
	if logger == nil {
		logger = logging.Default()
	}
	out := ParsedResults{
		Results:  make(map[int]int),
		Statuses: make(map[int]race.FinishStatus),
		Times:    make(map[int]string),
	}

	nextNC := 1
	for _, row := range rows {
		if row.position == nonClassifiedMarker {
			continue
		}
		if pos, err := strconv.Atoi(row.position); err == nil && pos >= 1 && pos <= race.MaxPosition {
			nextNC = max(nextNC, pos+1)
		}
	}

	for _, row := range rows {
		d, ok := roster.FindByName(row.name)
		if !ok {
			logger.Warn("results row skipped: driver not found", "name", row.name)
			out.Skipped = append(out.Skipped, row.name)
			continue
		}

		classified := row.position != nonClassifiedMarker
		var position int
		if classified {
			pos, err := strconv.Atoi(row.position)
			if err != nil || pos < 1 || pos > race.MaxPosition {
				logger.Warn("results row skipped: invalid position", "position", row.position, "name", row.name)
				out.Skipped = append(out.Skipped, row.name)
				continue
			}
			position = pos
		} else {
			position = nextNC
			nextNC++
			if position > race.MaxPosition {
				logger.Warn("results row skipped: no position left for non-classified driver", "name", row.name)
				out.Skipped = append(out.Skipped, row.name)
				continue
			}
		}

		marker := strings.ToUpper(row.detail)
		switch {
		case strings.Contains(marker, "DNF"):
			if classified {
				out.Statuses[d.ID] = race.StatusClassifiedDNF
			} else {
				out.Statuses[d.ID] = race.StatusNonClassifiedDNF
			}
		case strings.Contains(marker, "DNS"):
			out.Statuses[d.ID] = race.StatusDidNotStart
		}

		out.Results[position] = d.ID
		out.Times[d.ID] = row.detail
	}

	if poleName != "" {
		if d, ok := roster.FindByName(poleName); ok {
			id := d.ID
			out.Pole = &id
		} else {
			logger.Warn("pole driver not found", "name", poleName)
		}
	}

	if len(out.Results) == 0 {
		return ParsedResults{}, fmt.Errorf("%w: no result rows could be parsed", ErrInvalidInput)
	}
	return out, nil
}
