package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"soin-client/internal/models"
)

// Client talks to the SOIN HTTP API. The bearer token is passed per call
// so the credential always comes from the session store at call time,
// never from a hidden default header.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a client for the given API base (including the /api prefix).
// Outbound calls are throttled to 5 rps with a burst of 10.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 10),
	}
}

// AuthResponse is the payload of a successful login or registration.
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	User        models.Identity `json:"user"`
}

// RegisterRequest is the new-account profile sent to /auth/register.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Age      *int        `json:"age,omitempty"`
}

// NewSubmission carries everything a patient uploads in one request:
// the image bytes and the lab values together. Never retried
// automatically; resubmission is an explicit user action.
type NewSubmission struct {
	Image         []byte
	ImageFilename string
	BloodGlucose  float64
	HbA1c         float64
	InsulinLevel  *float64
	DiabetesType  models.DiabetesType
	Symptoms      []string
	Medications   []string
	Notes         string
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalPatients    int `json:"total_patients"`
	TotalDoctors     int `json:"total_doctors"`
	PendingDoctors   int `json:"pending_doctors"`
	TotalSubmissions int `json:"total_submissions"`
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var res AuthResponse
	if err := c.do(ctx, "", http.MethodPost, "/auth/login", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and logs it in. A doctor profile comes
// back with approval_status "pending".
func (c *Client) Register(ctx context.Context, profile RegisterRequest) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, "", http.MethodPost, "/auth/register", nil, profile, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me resolves a bearer token to its identity.
func (c *Client) Me(ctx context.Context, token string) (*models.Identity, error) {
	var res models.Identity
	if err := c.do(ctx, token, http.MethodGet, "/auth/me", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Submissions lists the submissions visible to the caller: a patient's
// own history, or all patients for doctors and admins. Server order is
// preserved.
func (c *Client) Submissions(ctx context.Context, token string) ([]models.Submission, error) {
	var res []models.Submission
	if err := c.do(ctx, token, http.MethodGet, "/submissions", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateSubmission uploads a new intake record as one multipart request.
func (c *Client) CreateSubmission(ctx context.Context, token string, sub NewSubmission) (*models.Submission, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("tongue_image", sub.ImageFilename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(sub.Image); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"blood_glucose": strconv.FormatFloat(sub.BloodGlucose, 'f', -1, 64),
		"hba1c":         strconv.FormatFloat(sub.HbA1c, 'f', -1, 64),
		"diabetes_type": string(sub.DiabetesType),
	}
	if sub.InsulinLevel != nil {
		fields["insulin_level"] = strconv.FormatFloat(*sub.InsulinLevel, 'f', -1, 64)
	}
	if sub.Notes != "" {
		fields["notes"] = sub.Notes
	}
	for name, list := range map[string][]string{
		"symptoms":    sub.Symptoms,
		"medications": sub.Medications,
	} {
		encoded, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		fields[name] = string(encoded)
	}
	for name, val := range fields {
		if err := mw.WriteField(name, val); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return nil, decodeError(httpRes)
	}
	var created models.Submission
	if err := json.NewDecoder(httpRes.Body).Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// AdminStats fetches the platform summary. Admin token required.
func (c *Client) AdminStats(ctx context.Context, token string) (*AdminStats, error) {
	var res AdminStats
	if err := c.do(ctx, token, http.MethodGet, "/admin/stats", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PendingDoctors lists doctor accounts awaiting review.
func (c *Client) PendingDoctors(ctx context.Context, token string) ([]models.Identity, error) {
	var res []models.Identity
	if err := c.do(ctx, token, http.MethodGet, "/admin/pending-doctors", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ApproveDoctor approves (approve=true) or rejects a pending doctor.
func (c *Client) ApproveDoctor(ctx context.Context, token, doctorID string, approve bool) error {
	params := url.Values{"approve": []string{strconv.FormatBool(approve)}}
	path := "/admin/approve-doctor/" + url.PathEscape(doctorID)
	return c.do(ctx, token, http.MethodPost, path, params, nil, nil)
}

// ExportData streams the full data archive into w and returns the byte
// count. The caller names the output file.
func (c *Client) ExportData(ctx context.Context, token string, w io.Writer) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/export-data", nil)
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return 0, decodeError(httpRes)
	}
	return io.Copy(w, httpRes.Body)
}

// ResolveImageURL joins a relative tongue_image_url against the API base.
// Absolute URLs pass through untouched.
func (c *Client) ResolveImageURL(imageURL string) string {
	if imageURL == "" || strings.Contains(imageURL, "://") {
		return imageURL
	}
	return c.baseURL + "/" + strings.TrimLeft(imageURL, "/")
}

// do issues one JSON request. An empty token means unauthenticated.
func (c *Client) do(ctx context.Context, token, method, path string, params url.Values, reqBody, resBody interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		b := &bytes.Buffer{}
		if err := json.NewEncoder(b).Encode(reqBody); err != nil {
			return err
		}
		body = b
	}

	u := c.baseURL + path
	if len(params) != 0 {
		u += "?" + params.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return decodeError(httpRes)
	}
	if resBody != nil {
		return json.NewDecoder(httpRes.Body).Decode(resBody)
	}
	return nil
}

// decodeError reads a {"detail": ...} body the way the backend reports
// failures. A body that does not decode still yields the status code.
func decodeError(res *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(res.Body).Decode(&payload)
	return &Error{StatusCode: res.StatusCode, Detail: payload.Detail}
}
