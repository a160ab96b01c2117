package internal

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func tokenClient(c *gin.Context, api *Client) *Client {
	return api.WithToken(currentSession(c).Token)
}

// ------------------- Admin: overview -------------------

// GET /portal/admin/stats
func StatsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := tokenClient(c, api).DashboardStats(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GET /portal/admin/election/current
func CurrentElectionHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		election, err := tokenClient(c, api).CurrentElection(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, election)
	}
}

// POST /portal/admin/election/start
func StartElectionHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Duration    int    `json:"duration"` // hours
		}
		if err := c.BindJSON(&req); err != nil {
			respondErr(c, validationError("bad json"))
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			respondErr(c, validationError("election title is required"))
			return
		}
		if req.Duration <= 0 {
			respondErr(c, validationError("duration must be positive"))
			return
		}

		election, err := tokenClient(c, api).StartElection(c.Request.Context(), req.Title, req.Description, req.Duration)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, election)
	}
}

// POST /portal/admin/election/end
func EndElectionHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tokenClient(c, api).EndElection(c.Request.Context()); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /portal/admin/activities
func ActivitiesHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		activities, err := tokenClient(c, api).Activities(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, activities)
	}
}

// ------------------- Admin: accreditation -------------------

// GET /portal/admin/accreditation/pending
func PendingAccreditationHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := tokenClient(c, api).PendingAccreditation(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

// PUT /portal/admin/accreditation/:id/approve
func ApproveVoterHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tokenClient(c, api).ApproveVoter(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// PUT /portal/admin/accreditation/:id/reject
func RejectVoterHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tokenClient(c, api).RejectVoter(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ------------------- Admin: candidates & positions -------------------

// GET /portal/admin/candidates
func CandidatesHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates, err := tokenClient(c, api).Candidates(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, candidates)
	}
}

// POST /portal/admin/candidates (multipart with optional photo)
func AddCandidateHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		positionID := strings.TrimSpace(c.PostForm("positionId"))
		if name == "" || positionID == "" {
			respondErr(c, validationError("candidate name and position are required"))
			return
		}

		image, imageName, err := formFile(c, "image")
		if err != nil {
			respondErr(c, validationError("could not read candidate photo"))
			return
		}
		var reader io.Reader
		if image != nil {
			defer image.Close()
			reader = image
		}

		candidate, err := tokenClient(c, api).AddCandidate(c.Request.Context(), CandidateForm{
			Name:       name,
			PositionID: positionID,
			Party:      c.PostForm("party"),
			Manifesto:  c.PostForm("manifesto"),
			Department: c.PostForm("department"),
			Level:      c.PostForm("level"),
			ImageName:  imageName,
			Image:      reader,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, candidate)
	}
}

// POST /portal/admin/positions
func AddPositionHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in PositionInput
		if err := c.BindJSON(&in); err != nil {
			respondErr(c, validationError("bad json"))
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			respondErr(c, validationError("position name is required"))
			return
		}

		position, err := tokenClient(c, api).AddPosition(c.Request.Context(), in)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, position)
	}
}

// GET /portal/admin/positions
func PositionsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		positions, err := tokenClient(c, api).Positions(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, positions)
	}
}

// GET /portal/admin/positions/staged
func StagedPositionsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		positions, err := tokenClient(c, api).StagedPositions(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, positions)
	}
}

// ------------------- Admin: elections & results -------------------

// GET /portal/admin/elections
func ElectionsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		elections, err := tokenClient(c, api).Elections(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, elections)
	}
}

// GET /portal/admin/elections/:id
func ElectionDetailsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		details, err := tokenClient(c, api).ElectionDetails(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

// GET /portal/admin/results
func AdminResultsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := tokenClient(c, api).AdminResults(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// GET /portal/admin/results/export.csv
func ExportCSVHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := tokenClient(c, api).AdminResults(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		filename := fmt.Sprintf("election_results_%s.csv", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := WriteCSVReport(c.Writer, results, time.Now()); err != nil {
			respondErr(c, err)
		}
	}
}

// GET /portal/admin/results/report (printable HTML)
func ExportReportHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := tokenClient(c, api).AdminResults(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := RenderHTMLReport(c.Writer, results, time.Now()); err != nil {
			respondErr(c, err)
		}
	}
}

// ------------------- Voting booth -------------------

// BoothPayload is everything the booth page needs in one round trip. When
// the election is absent or not live the page renders a terminal state and
// votingOpen is false.
type BoothPayload struct {
	Election       *Election              `json:"election"`
	VotingOpen     bool                   `json:"votingOpen"`
	Positions      []Position             `json:"positions,omitempty"`
	Candidates     map[string][]Candidate `json:"candidates,omitempty"`
	IdempotencyKey string                 `json:"idempotencyKey,omitempty"`
}

// GET /portal/vote/booth
func BoothHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		client := tokenClient(c, api)

		election, err := client.VoterElection(ctx)
		if err != nil {
			if status := httpStatusFor(err); status == http.StatusNotFound {
				c.JSON(http.StatusOK, BoothPayload{VotingOpen: false})
				return
			}
			respondErr(c, err)
			return
		}
		if election.Status != ElectionLive {
			c.JSON(http.StatusOK, BoothPayload{Election: election, VotingOpen: false})
			return
		}

		positions, err := client.VoterPositions(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		candidates, err := client.VoterCandidates(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, BoothPayload{
			Election:       election,
			VotingOpen:     true,
			Positions:      positions,
			Candidates:     GroupCandidates(candidates),
			IdempotencyKey: uuid.NewString(),
		})
	}
}

// POST /portal/vote/cast
func CastVoteHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Selections     map[string]string `json:"selections"`
			IdempotencyKey string            `json:"idempotencyKey"`
		}
		if err := c.BindJSON(&req); err != nil {
			respondErr(c, validationError("bad json"))
			return
		}

		ctx := c.Request.Context()
		client := tokenClient(c, api)

		positions, err := client.VoterPositions(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		candidates, err := client.VoterCandidates(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}

		grouped := GroupCandidates(candidates)
		if missing := MissingSelections(positions, grouped, req.Selections); len(missing) > 0 {
			respondErr(c, validationError("no selection for: %s", strings.Join(missing, ", ")))
			return
		}
		if invalid := InvalidSelections(grouped, req.Selections); len(invalid) > 0 {
			respondErr(c, validationError("invalid selection for position: %s", strings.Join(invalid, ", ")))
			return
		}

		// Selections survive a failure client-side; the key is echoed back
		// so a retry reuses it.
		key := req.IdempotencyKey
		if key == "" {
			key = uuid.NewString()
		}
		if err := client.CastVote(ctx, req.Selections, key); err != nil {
			status := httpStatusFor(err)
			c.JSON(status, gin.H{"error": err.Error(), "idempotencyKey": key})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /portal/vote/results
func LiveResultsHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := tokenClient(c, api).LiveResults(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// GET /portal/vote/approved-voters
func ApprovedVotersHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := tokenClient(c, api).ApprovedVoters(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"approvedVoters": count})
	}
}

// GET /portal/vote/results/stream (SSE)
func ResultsStreamHandler(poller *Poller) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch, cancel := poller.Subscribe()
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		if snap := poller.Latest(); snap != nil {
			c.SSEvent("results", snap.Results)
			c.Writer.Flush()
		}

		c.Stream(func(w io.Writer) bool {
			select {
			case snap, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("results", snap.Results)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}

// ------------------- Health -------------------

// GET /portal/health
func HealthHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := api.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
