// Package whatsapp envía mensajes por WhatsApp Cloud API.
//
// El cliente es un recurso gestionado con ciclo de vida explícito:
//
//	Uninitialized → Initializing → Ready | Failed → Closed
//
// Solo en Ready acepta envíos; en cualquier otro estado devuelve domain.ErrMessagingNotReady.
package whatsapp

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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/pkg/config"
)

// State estado del ciclo de vida.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Client implementa billing.MessageSender.
type Client struct {
	baseURL       string
	phoneNumberID string
	token         string
	httpClient    *http.Client
	log           zerolog.Logger

	mu      sync.RWMutex
	state   State
	lastErr error
}

// NewClient crea el cliente en estado Uninitialized; llamar Init antes de enviar.
func NewClient(cfg config.WhatsAppConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.APIURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.Token,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		log:           log,
	}
}

// Init verifica credenciales contra la API. Un fallo deja el cliente en Failed
// (el servicio sigue arriba; /send responde 503).
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return domain.ErrMessagingNotReady
	}
	c.state = StateInitializing
	c.mu.Unlock()

	err := c.verify(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return domain.ErrMessagingNotReady
	}
	if err != nil {
		c.state, c.lastErr = StateFailed, err
		c.log.Error().Err(err).Msg("WhatsApp no disponible")
		return err
	}
	c.state, c.lastErr = StateReady, nil
	c.log.Info().Str("phone_number_id", c.phoneNumberID).Msg("WhatsApp listo")
	return nil
}

func (c *Client) verify(ctx context.Context) error {
	if c.token == "" || c.phoneNumberID == "" {
		return errors.New("whatsapp: WHATSAPP_TOKEN y WHATSAPP_PHONE_NUMBER_ID son obligatorios")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(c.phoneNumberID)+"?fields=id", nil)
	if err != nil {
		return fmt.Errorf("whatsapp: crear HTTP request: %w", err)
	}
	_, err = c.do(req)
	return err
}

// State estado actual y último error de inicialización.
func (c *Client) State() (State, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.lastErr
}

func (c *Client) IsReady() bool {
	s, _ := c.State()
	return s == StateReady
}

// Close libera el cliente; envíos posteriores fallan con ErrMessagingNotReady.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateClosed {
		c.state = StateClosed
		c.httpClient.CloseIdleConnections()
		c.log.Info().Msg("WhatsApp cerrado")
	}
}

// ── Envíos ────────────────────────────────────────────────────────────────────

type textBody struct {
	Body string `json:"body"`
}

type documentBody struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type messageRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Document         *documentBody `json:"document,omitempty"`
}

type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) SendText(ctx context.Context, phone, body string) error {
	if !c.IsReady() {
		return domain.ErrMessagingNotReady
	}
	return c.sendMessage(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

// SendDocument sube el archivo como media y lo envía como documento.
func (c *Client) SendDocument(ctx context.Context, phone, filePath string) error {
	if !c.IsReady() {
		return domain.ErrMessagingNotReady
	}
	mediaID, err := c.uploadMedia(ctx, filePath)
	if err != nil {
		return err
	}
	return c.sendMessage(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "document",
		Document:         &documentBody{ID: mediaID, Filename: filepath.Base(filePath)},
	})
}

func (c *Client) sendMessage(ctx context.Context, msg messageRequest) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("whatsapp: serializar mensaje: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.phoneNumberID, "messages"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("whatsapp: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) uploadMedia(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrArtifactNotFound
		}
		return "", fmt.Errorf("whatsapp: abrir %s: %w", filePath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("messaging_product", "whatsapp")
	_ = mw.WriteField("type", "application/pdf")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filePath)))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("whatsapp: multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("whatsapp: leer %s: %w", filePath, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whatsapp: multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.phoneNumberID, "media"), &buf)
	if err != nil {
		return "", fmt.Errorf("whatsapp: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.ID == "" {
		return "", fmt.Errorf("whatsapp: respuesta de media sin id: %s", string(raw))
	}
	return out.ID, nil
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/" + strings.Join(parts, "/")
}

// do ejecuta la petición autenticada y devuelve el cuerpo si la respuesta es 2xx.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx := req.Context(); ctx.Err() != nil {
			return nil, fmt.Errorf("whatsapp: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("whatsapp: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("whatsapp: error API (%d): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("whatsapp: HTTP %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
