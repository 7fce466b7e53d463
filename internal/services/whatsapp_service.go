package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var ErrMediaUnavailable = errors.New("whatsapp: media download is not available")

// MessageSender is the outbound message boundary. Callers treat a returned error as a
// failed delivery and carry on.
type MessageSender interface {
	Send(ctx context.Context, to, body string) error
}

// Media is a downloaded attachment. The caller closes Body.
type Media struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type WhatsAppService interface {
	MessageSender
	DownloadMedia(ctx context.Context, mediaID string) (*Media, error)
}

type whatsAppClient struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// NewWhatsAppService talks to the Cloud API at baseURL (e.g. https://graph.facebook.com/v20.0).
func NewWhatsAppService(baseURL, phoneNumberID, accessToken string, timeout time.Duration) WhatsAppService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &whatsAppClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (w *whatsAppClient) Send(ctx context.Context, to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text":              map[string]interface{}{"preview_url": true, "body": body},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create message request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.accessToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	log.Printf("[WHATSAPP] To=%s, Status=%d", to, resp.StatusCode)
	return nil
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// DownloadMedia resolves the media id to its short-lived URL and streams the content.
func (w *whatsAppClient) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	if mediaID == "" {
		return nil, ErrMediaUnavailable
	}

	infoResp, err := w.get(ctx, fmt.Sprintf("%s/%s", w.baseURL, mediaID))
	if err != nil {
		return nil, err
	}
	defer infoResp.Body.Close()

	var info mediaInfo
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode media info: %v", err)
	}
	if info.URL == "" {
		return nil, ErrMediaUnavailable
	}

	resp, err := w.get(ctx, info.URL)
	if err != nil {
		return nil, err
	}

	contentType := info.MimeType
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	size := info.FileSize
	if size <= 0 {
		size = resp.ContentLength
	}
	return &Media{Body: resp.Body, ContentType: contentType, Size: size}, nil
}

func (w *whatsAppClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create media request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("media request returned status %d", resp.StatusCode)
	}
	return resp, nil
}

type logSender struct{}

// NewLogSender returns a sender that only logs. It is used when no usable access token
// is configured.
func NewLogSender() WhatsAppService {
	return logSender{}
}

func (logSender) Send(ctx context.Context, to, body string) error {
	log.Printf("[WHATSAPP] dry-run To=%s, Body=%s", to, body)
	return nil
}

func (logSender) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	return nil, ErrMediaUnavailable
}
