package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client is a typed client for the remote voting API. It owns no state
// beyond the base URL and an optional bearer token; all authority lives
// upstream.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a shallow copy bound to the given bearer token, so one
// shared client can serve many sessions.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindDecode, Message: err.Error()}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out, nil)
}

// doMultipart builds a multipart form (fields plus at most one file part)
// and posts it. The content type comes from the writer so the boundary is
// set correctly.
func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return &APIError{Kind: KindNetwork, Message: err.Error()}
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return &APIError{Kind: KindNetwork, Message: err.Error()}
		}
		if _, err := io.Copy(part, file); err != nil {
			return &APIError{Kind: KindNetwork, Message: err.Error()}
		}
	}
	if err := w.Close(); err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, out, nil)
}

func (c *Client) send(req *http.Request, out any, extraHeaders map[string]string) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := "HTTP " + resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			if body.Error != "" {
				msg = body.Error
			} else if body.Message != "" {
				msg = body.Message
			}
		}
		return &APIError{Kind: KindHTTPStatus, Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindDecode, Message: err.Error()}
		}
	}
	return nil
}

// ImageURL resolves an upstream-relative image path against the API host.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	base := strings.TrimSuffix(c.BaseURL, "/api")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// ------------------- Auth -------------------

type RegisterForm struct {
	MatricNumber string
	FullName     string
	Faculty      string
	Department   string
	Password     string
	IDCardName   string
	IDCard       io.Reader
}

func (c *Client) Register(ctx context.Context, form RegisterForm) (*User, error) {
	fields := map[string]string{
		"matricNumber": form.MatricNumber,
		"fullName":     form.FullName,
		"faculty":      form.Faculty,
		"department":   form.Department,
		"password":     form.Password,
	}
	var out struct {
		User User `json:"user"`
	}
	err := c.doMultipart(ctx, "/auth/register", fields, "idCard", form.IDCardName, form.IDCard, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, matricNumber, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"matricNumber": matricNumber, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminLogin(ctx context.Context, matricNumber, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/admin/login",
		map[string]string{"matricNumber": matricNumber, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ------------------- Users -------------------

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccreditationStatus(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/status", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// ------------------- Admin -------------------

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentElection(ctx context.Context) (*Election, error) {
	var out Election
	if err := c.do(ctx, http.MethodGet, "/admin/election/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartElection(ctx context.Context, title, description string, duration int) (*Election, error) {
	var out Election
	err := c.do(ctx, http.MethodPost, "/admin/election/start", map[string]any{
		"title":       title,
		"description": description,
		"duration":    duration,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EndElection(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/election/end", nil, nil)
}

func (c *Client) PendingAccreditation(ctx context.Context) ([]AccreditationRequest, error) {
	var out []AccreditationRequest
	if err := c.do(ctx, http.MethodGet, "/admin/accreditation/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveVoter(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPut, "/admin/accreditation/"+userID+"/approve", nil, nil)
}

func (c *Client) RejectVoter(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPut, "/admin/accreditation/"+userID+"/reject", nil, nil)
}

func (c *Client) Candidates(ctx context.Context) ([]Candidate, error) {
	var out []Candidate
	if err := c.do(ctx, http.MethodGet, "/admin/candidates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type CandidateForm struct {
	Name       string
	PositionID string
	Party      string
	Manifesto  string
	Department string
	Level      string
	ImageName  string
	Image      io.Reader
}

func (c *Client) AddCandidate(ctx context.Context, form CandidateForm) (*Candidate, error) {
	fields := map[string]string{
		"name":       form.Name,
		"positionId": form.PositionID,
		"party":      form.Party,
		"manifesto":  form.Manifesto,
		"department": form.Department,
		"level":      form.Level,
	}
	var out Candidate
	err := c.doMultipart(ctx, "/admin/candidates", fields, "image", form.ImageName, form.Image, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type PositionInput struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Order         int    `json:"order,omitempty"`
	MaxSelections int    `json:"maxSelections,omitempty"`
}

func (c *Client) AddPosition(ctx context.Context, in PositionInput) (*Position, error) {
	var out Position
	if err := c.do(ctx, http.MethodPost, "/admin/positions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.do(ctx, http.MethodGet, "/admin/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StagedPositions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.do(ctx, http.MethodGet, "/admin/positions/staged", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Elections(ctx context.Context) ([]Election, error) {
	var out []Election
	if err := c.do(ctx, http.MethodGet, "/admin/elections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ElectionDetails(ctx context.Context, electionID string) (*ElectionDetails, error) {
	var out ElectionDetails
	if err := c.do(ctx, http.MethodGet, "/admin/elections/"+electionID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminResults(ctx context.Context) (*Results, error) {
	var out Results
	if err := c.do(ctx, http.MethodGet, "/admin/results", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var out []Activity
	if err := c.do(ctx, http.MethodGet, "/admin/activities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ------------------- Voting -------------------

func (c *Client) VoterElection(ctx context.Context) (*Election, error) {
	var out Election
	if err := c.do(ctx, http.MethodGet, "/vote/election/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VoterCandidates(ctx context.Context) ([]Candidate, error) {
	var out []Candidate
	if err := c.do(ctx, http.MethodGet, "/vote/candidates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VoterPositions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.do(ctx, http.MethodGet, "/vote/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CastVote submits the full selection map in one request. The idempotency
// key lets the upstream dedupe a retried submission after a timeout.
func (c *Client) CastVote(ctx context.Context, selections map[string]string, idempotencyKey string) error {
	b, err := json.Marshal(map[string]any{"selections": selections})
	if err != nil {
		return &APIError{Kind: KindDecode, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/vote/cast", bytes.NewReader(b))
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.send(req, nil, headers)
}

func (c *Client) LiveResults(ctx context.Context) (*Results, error) {
	var out Results
	if err := c.do(ctx, http.MethodGet, "/vote/results", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApprovedVoters(ctx context.Context) (int, error) {
	var out struct {
		ApprovedVoters int `json:"approvedVoters"`
	}
	if err := c.do(ctx, http.MethodGet, "/vote/approved-voters", nil, &out); err != nil {
		return 0, err
	}
	return out.ApprovedVoters, nil
}

// ------------------- Health -------------------

func (c *Client) Health(ctx context.Context) error {
	base := strings.TrimSuffix(c.BaseURL, "/api")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	return c.send(req, nil, nil)
}
