package diagnose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karuna-health/tbscreen/internal/session"
)

// ErrUnauthorized is returned when the service rejects the bearer credential.
// The client drops its stored credential; the operator has to sign in again.
var ErrUnauthorized = errors.New("diagnose: credential rejected by the service")

// SubmissionError is a transport-level failure of a service call: network
// error, timeout, or non-2xx status. The session is preserved by the caller
// so the operator can resubmit without re-entering the steps.
type SubmissionError struct {
	Op     string
	Status int
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("diagnose: %s failed with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("diagnose: %s failed: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Client calls the patient registry and diagnosis endpoints. Every request
// carries the bearer credential and a request id.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *zap.Logger
}

// NewClient creates a client for the service at baseURL. A nil logger is
// replaced with a nop logger.
func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// decorate attaches the shared request headers.
func (c *Client) decorate(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	c.decorate(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("service call failed", zap.String("op", op), zap.Error(err))
		return nil, &SubmissionError{Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.token = "" // invalidate the stored credential
		c.log.Warn("credential rejected, cleared stored token", zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.log.Warn("service returned error status",
			zap.String("op", op), zap.Int("status", resp.StatusCode))
		return nil, &SubmissionError{Op: op, Status: resp.StatusCode}
	}

	return resp, nil
}

// ListPatients fetches the registry list shown at wizard start.
func (c *Client) ListPatients(ctx context.Context) ([]session.PatientRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/patients", nil)
	if err != nil {
		return nil, fmt.Errorf("building patient list request: %w", err)
	}

	resp, err := c.do(req, "list patients")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var patients []session.PatientRef
	if err := json.NewDecoder(resp.Body).Decode(&patients); err != nil {
		return nil, fmt.Errorf("decoding patient list: %w", err)
	}
	return patients, nil
}

// GetPatient fetches one registry record, used for the carried-in shortcut
// when the wizard is started with a known patient id.
func (c *Client) GetPatient(ctx context.Context, id int) (*session.PatientRef, error) {
	url := c.baseURL + "/api/patients/" + strconv.Itoa(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building patient request: %w", err)
	}

	resp, err := c.do(req, "get patient")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p session.PatientRef
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding patient: %w", err)
	}
	return &p, nil
}

// Diagnose posts the assembled assessment and decodes the structured result.
// Single shot: no retry, no re-fetch.
func (c *Client) Diagnose(ctx context.Context, sub *SubmissionRequest) (*Result, error) {
	body, contentType, err := encodeMultipart(sub)
	if err != nil {
		return nil, fmt.Errorf("encoding submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/diagnose", body)
	if err != nil {
		return nil, fmt.Errorf("building diagnose request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req, "diagnose")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding diagnosis result: %w", err)
	}

	c.log.Info("diagnosis received",
		zap.Int64("diagnosis_id", result.DiagnosisID),
		zap.Int("patient_id", sub.PatientID))
	return &result, nil
}

// encodeMultipart writes the submission as multipart/form-data: structured
// JSON fields plus the optional binary file part.
func encodeMultipart(sub *SubmissionRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("patient_id", strconv.Itoa(sub.PatientID)); err != nil {
		return nil, "", err
	}

	symptoms, err := json.Marshal(sub.Symptoms)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("symptoms", string(symptoms)); err != nil {
		return nil, "", err
	}

	vitals, err := json.Marshal(sub.Vitals)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("vitals", string(vitals)); err != nil {
		return nil, "", err
	}

	if f := sub.File; f != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Filename))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
