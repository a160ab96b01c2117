package internal

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsFixture() *Results {
	return &Results{
		Title:          "SUG Elections 2026",
		Status:         ElectionClosed,
		TotalVotes:     736,
		ApprovedVoters: 987,
		Candidates: []Candidate{
			{ID: "c2", Name: "Jane Smith", Position: "President", Party: "Unity Party", VoteCount: 280},
			{ID: "c1", Name: "John Doe", Position: "President", Party: "Progressive Alliance", VoteCount: 456},
			{ID: "c3", Name: "Mike Johnson", Position: "Vice President", Party: "Progressive Alliance", VoteCount: 510},
		},
	}
}

func TestBuildResultRows(t *testing.T) {
	rows := BuildResultRows(resultsFixture())
	require.Len(t, rows, 3)

	// President: 456 vs 280 → 62% vs 38%, highest count wins.
	assert.Equal(t, "John Doe", rows[0].Name)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 62, rows[0].Percentage)
	assert.True(t, rows[0].Winner)

	assert.Equal(t, "Jane Smith", rows[1].Name)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, 38, rows[1].Percentage)
	assert.False(t, rows[1].Winner)

	assert.Equal(t, 100, rows[0].Percentage+rows[1].Percentage)

	// Uncontested position: sole candidate takes 100% and the win.
	assert.Equal(t, "Mike Johnson", rows[2].Name)
	assert.Equal(t, 100, rows[2].Percentage)
	assert.True(t, rows[2].Winner)

	winners := 0
	for _, row := range rows {
		if row.Position == "President" && row.Winner {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one winner per position")
}

func TestBuildResultRowsZeroVotes(t *testing.T) {
	rows := BuildResultRows(&Results{Candidates: []Candidate{
		{ID: "c1", Name: "A", Position: "Secretary", VoteCount: 0},
		{ID: "c2", Name: "B", Position: "Secretary", VoteCount: 0},
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Percentage)
	assert.Equal(t, 0, rows[1].Percentage)
}

func TestWriteCSVReport(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WriteCSVReport(&buf, resultsFixture(), now))

	out := buf.String()
	assert.Contains(t, out, "ELECTION RESULTS REPORT")
	assert.Contains(t, out, "Voter Turnout,75%") // round(736/987*100)
	assert.Contains(t, out, "Export Date,2026-08-30")

	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	var header int
	for i, rec := range records {
		if rec[0] == "Position" {
			header = i
			break
		}
	}
	require.Equal(t, []string{"Position", "Candidate Name", "Party", "Vote Count", "Percentage", "Rank", "Is Winner"}, records[header])

	data := records[header+1 : header+4]
	assert.Equal(t, []string{"President", "John Doe", "Progressive Alliance", "456", "62%", "1", "YES"}, data[0])
	assert.Equal(t, []string{"President", "Jane Smith", "Unity Party", "280", "38%", "2", "NO"}, data[1])
	assert.Equal(t, "YES", data[2][6])

	assert.Contains(t, out, "Total Candidates Exported,3")
}

func TestRenderHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTMLReport(&buf, resultsFixture(), time.Now()))

	out := buf.String()
	assert.Contains(t, out, "Election Results Report")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, `class="winner"`)
	assert.Contains(t, out, "62%")
}

func TestTurnoutPercent(t *testing.T) {
	assert.Equal(t, 0, turnoutPercent(&Results{TotalVotes: 10, ApprovedVoters: 0}))
	assert.Equal(t, 50, turnoutPercent(&Results{TotalVotes: 1, ApprovedVoters: 2}))
	assert.Equal(t, 100, turnoutPercent(&Results{TotalVotes: 5, ApprovedVoters: 5}))
}
