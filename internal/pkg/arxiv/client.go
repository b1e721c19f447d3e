package arxiv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrInvalidURL is returned for links that are not arxiv.org abs/pdf links.
	ErrInvalidURL = errors.New("invalid arXiv URL")

	// ErrUnavailable is returned when the parse API cannot be reached.
	ErrUnavailable = errors.New("arXiv parse API unavailable")

	absPattern = regexp.MustCompile(`arxiv\.org/abs/([\d.]+v?\d*)`)
	pdfPattern = regexp.MustCompile(`arxiv\.org/pdf/([\d.]+v?\d*)`)
)

// Paper is the parsed paper content returned by the parse API.
type Paper struct {
	ArxivID     string   `json:"arxiv_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Abstract    string   `json:"abstract"`
	Published   string   `json:"published"`
	PDFURL      string   `json:"pdf_url"`
	TextContent string   `json:"text_content,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
}

// Client is the HTTP client for the external arXiv parse API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new arXiv parse client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ExtractID pulls the arXiv id out of an abs or pdf link.
func ExtractID(paperURL string) (string, error) {
	if m := absPattern.FindStringSubmatch(paperURL); m != nil {
		return m[1], nil
	}
	if m := pdfPattern.FindStringSubmatch(paperURL); m != nil {
		return m[1], nil
	}
	return "", ErrInvalidURL
}

type parseRequest struct {
	ArxivID string `json:"arxiv_id"`
}

type parseResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	ArxivMetadata *struct {
		ArxivID   string   `json:"arxiv_id"`
		Title     string   `json:"title"`
		Authors   []string `json:"authors"`
		Summary   string   `json:"summary"`
		Published string   `json:"published"`
		PDFURL    string   `json:"pdf_url"`
	} `json:"arxiv_metadata,omitempty"`
	ExtractionResult *struct {
		TextContent string `json:"text_content"`
		PageCount   int    `json:"page_count"`
	} `json:"extraction_result,omitempty"`
}

// Parse fetches metadata and extracted text for an arXiv id.
func (c *Client) Parse(ctx context.Context, arxivID string) (*Paper, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL is empty", ErrUnavailable)
	}

	payload, err := json.Marshal(parseRequest{ArxivID: arxivID})
	if err != nil {
		return nil, fmt.Errorf("arxiv parse request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("arxiv parse request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("arxiv parse response error: %w", err)
	}

	if !parsed.Success || parsed.ArxivMetadata == nil {
		msg := parsed.Error
		if msg == "" {
			msg = "paper parse failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	paper := &Paper{
		ArxivID:   parsed.ArxivMetadata.ArxivID,
		Title:     parsed.ArxivMetadata.Title,
		Authors:   parsed.ArxivMetadata.Authors,
		Abstract:  parsed.ArxivMetadata.Summary,
		Published: parsed.ArxivMetadata.Published,
		PDFURL:    parsed.ArxivMetadata.PDFURL,
	}
	if paper.ArxivID == "" {
		paper.ArxivID = arxivID
	}
	if parsed.ExtractionResult != nil {
		paper.TextContent = parsed.ExtractionResult.TextContent
		paper.PageCount = parsed.ExtractionResult.PageCount
	}

	return paper, nil
}
