package deoldify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"colorizer-backend/internal/domains/image/model"

	"github.com/rs/zerolog/log"
)

// Client speaks the DeOldify colorization wire protocol.
//
// The service accepts either multipart/form-data (an `image` file field)
// or JSON ({image: base64, mime_type}), and answers with either raw image
// bytes or a JSON envelope ({image, mimeType?}). Colorize tries multipart
// first; a 400/415 rejection triggers a single JSON-shaped fallback.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{},
	}
}

// response shapes, classified by Content-Type before any body parsing
type responseShape int

const (
	shapeRawImage responseShape = iota
	shapeJSONEnvelope
	shapeUnrecognized
)

// jsonEnvelope is the JSON answer variant. The image field may already be
// a full data URL, or bare base64 with an optional mime type alongside.
type jsonEnvelope struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

// Colorize submits image bytes to the service and returns the colorized
// result as a data URL.
func (c *Client) Colorize(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.timeout())
	defer cancel()

	resp, err := c.postMultipart(callCtx, imageBytes, mimeType)
	if err != nil {
		return "", c.classifyTransportError(err)
	}

	// A 400/415 means the service expects the other encoding. One
	// deterministic fallback with a different wire shape, not a retry.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnsupportedMediaType {
		resp.Body.Close()
		log.Debug().
			Int("status", resp.StatusCode).
			Msg("Multipart rejected, falling back to JSON body")
		return c.colorizeJSON(ctx, imageBytes, mimeType)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, mimeType)
}

// colorizeJSON is the fallback submission: base64 payload in a JSON body.
func (c *Client) colorizeJSON(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"image":     base64.StdEncoding.EncodeToString(imageBytes),
		"mime_type": mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal colorize request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, mimeType)
}

func (c *Client) postMultipart(ctx context.Context, imageBytes []byte, mimeType string) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="image.%s"`, extensionFor(mimeType)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.httpClient.Do(req)
}

// decodeResponse normalizes the two accepted response shapes into a data URL.
func (c *Client) decodeResponse(resp *http.Response, requestMime string) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))

	switch classifyShape(contentType) {
	case shapeRawImage:
		// The body itself is the colorized image.
		return model.EncodeDataURL(contentType, body), nil

	case shapeJSONEnvelope:
		var envelope jsonEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Image == "" {
			return "", ErrMalformedResponse
		}

		// Already a data URL: pass through verbatim.
		if strings.HasPrefix(envelope.Image, "data:") {
			return envelope.Image, nil
		}

		// Mime precedence: envelope field, response header, request mime.
		resultMime := envelope.MimeType
		if resultMime == "" {
			resultMime = contentType
		}
		if resultMime == "" || resultMime == "application/json" {
			resultMime = requestMime
		}
		return fmt.Sprintf("data:%s;base64,%s", resultMime, envelope.Image), nil

	default:
		return "", ErrMalformedResponse
	}
}

func (c *Client) classifyTransportError(err error) error {
	var netErr interface{ Timeout() bool }

	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Timeout: c.config.timeout()}
	}

	return fmt.Errorf("deoldify request failed: %w", err)
}

func (c *Client) endpoint() string {
	return strings.TrimSuffix(c.config.APIURL, "/") + "/colorize"
}

func classifyShape(contentType string) responseShape {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return shapeRawImage
	case contentType == "" ||
		contentType == "application/json" ||
		strings.HasSuffix(contentType, "+json"):
		return shapeJSONEnvelope
	default:
		return shapeUnrecognized
	}
}

// mediaType strips parameters like charset from a Content-Type header.
func mediaType(header string) string {
	mt, _, _ := strings.Cut(header, ";")
	return strings.TrimSpace(mt)
}

func extensionFor(mimeType string) string {
	_, ext, ok := strings.Cut(mimeType, "/")
	if !ok || ext == "" {
		return "jpg"
	}
	return ext
}
