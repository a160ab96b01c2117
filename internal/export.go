package internal

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"math"
	"sort"
	"time"
)

// ResultRow is one line of the detailed results table: a candidate ranked
// within their position.
type ResultRow struct {
	Position   string
	Name       string
	Party      string
	VoteCount  int
	Percentage int // rounded share of the position's votes
	Rank       int
	Winner     bool
}

// BuildResultRows ranks every candidate within their position by descending
// vote count. Positions keep their first-appearance order; exactly the top
// rank of each contested position is flagged as winner.
func BuildResultRows(results *Results) []ResultRow {
	var order []string
	byPosition := make(map[string][]Candidate)
	for _, cand := range results.Candidates {
		if _, seen := byPosition[cand.Position]; !seen {
			order = append(order, cand.Position)
		}
		byPosition[cand.Position] = append(byPosition[cand.Position], cand)
	}

	var rows []ResultRow
	for _, position := range order {
		candidates := byPosition[position]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].VoteCount > candidates[j].VoteCount
		})

		total := 0
		for _, cand := range candidates {
			total += cand.VoteCount
		}
		for idx, cand := range candidates {
			pct := 0
			if total > 0 {
				pct = int(math.Round(float64(cand.VoteCount) / float64(total) * 100))
			}
			rows = append(rows, ResultRow{
				Position:   position,
				Name:       cand.Name,
				Party:      cand.Party,
				VoteCount:  cand.VoteCount,
				Percentage: pct,
				Rank:       idx + 1,
				Winner:     idx == 0,
			})
		}
	}
	return rows
}

func turnoutPercent(results *Results) int {
	if results.ApprovedVoters <= 0 {
		return 0
	}
	return int(math.Round(float64(results.TotalVotes) / float64(results.ApprovedVoters) * 100))
}

// WriteCSVReport writes the full results report: summary statistics, the
// ranked per-candidate table, and a footer.
func WriteCSVReport(w io.Writer, results *Results, now time.Time) error {
	cw := csv.NewWriter(w)
	rows := BuildResultRows(results)

	records := [][]string{
		{"ELECTION RESULTS REPORT"},
		{"Generated: " + now.Format("2006-01-02 15:04:05")},
		{"Export Type: Current Election"},
		{},
		{"SUMMARY STATISTICS"},
		{"Total Votes Cast", fmt.Sprint(results.TotalVotes)},
		{"Approved Voters", fmt.Sprint(results.ApprovedVoters)},
		{"Voter Turnout", fmt.Sprintf("%d%%", turnoutPercent(results))},
		{"Active Positions", fmt.Sprint(countPositions(rows))},
		{},
		{"DETAILED RESULTS"},
		{"Position", "Candidate Name", "Party", "Vote Count", "Percentage", "Rank", "Is Winner"},
	}
	for _, row := range rows {
		winner := "NO"
		if row.Winner {
			winner = "YES"
		}
		records = append(records, []string{
			row.Position,
			row.Name,
			row.Party,
			fmt.Sprint(row.VoteCount),
			fmt.Sprintf("%d%%", row.Percentage),
			fmt.Sprint(row.Rank),
			winner,
		})
	}
	records = append(records,
		[]string{},
		[]string{"REPORT FOOTER"},
		[]string{"Total Candidates Exported", fmt.Sprint(len(rows))},
		[]string{"Export Date", now.Format("2006-01-02")},
		[]string{"System", "E-Voting System v1.0"},
	)

	for _, rec := range records {
		if len(rec) == 0 {
			rec = []string{""}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Election Results Report</title>
<style>
@page { margin: 1cm; size: A4; }
body { font-family: sans-serif; color: #333; padding: 20px; }
.header { text-align: center; border-bottom: 3px solid #0ea5e9; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #0ea5e9; margin: 0; }
table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f0f9ff; }
tr.winner td { background: #ecfdf5; font-weight: bold; }
.footer { color: #666; font-size: 12px; margin-top: 30px; }
</style>
</head>
<body>
<div class="header">
  <h1>Election Results Report</h1>
  <p>Generated: {{.Generated}}</p>
</div>
<h2>Summary</h2>
<table>
  <tr><td>Total Votes Cast</td><td>{{.TotalVotes}}</td></tr>
  <tr><td>Approved Voters</td><td>{{.ApprovedVoters}}</td></tr>
  <tr><td>Voter Turnout</td><td>{{.Turnout}}%</td></tr>
</table>
<h2>Detailed Results</h2>
<table>
  <tr><th>Position</th><th>Candidate</th><th>Party</th><th>Votes</th><th>%</th><th>Rank</th></tr>
  {{range .Rows}}<tr{{if .Winner}} class="winner"{{end}}><td>{{.Position}}</td><td>{{.Name}}</td><td>{{.Party}}</td><td>{{.VoteCount}}</td><td>{{.Percentage}}%</td><td>{{.Rank}}</td></tr>
  {{end}}
</table>
<div class="footer">E-Voting System v1.0 &mdash; {{.Date}}</div>
</body>
</html>
`))

// RenderHTMLReport renders the printable version of the same report.
func RenderHTMLReport(w io.Writer, results *Results, now time.Time) error {
	return reportTmpl.Execute(w, map[string]any{
		"Generated":      now.Format("2006-01-02 15:04:05"),
		"TotalVotes":     results.TotalVotes,
		"ApprovedVoters": results.ApprovedVoters,
		"Turnout":        turnoutPercent(results),
		"Rows":           BuildResultRows(results),
		"Date":           now.Format("2006-01-02"),
	})
}

func countPositions(rows []ResultRow) int {
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row.Position] = true
	}
	return len(seen)
}
