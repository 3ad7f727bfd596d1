package gst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	appgst "github.com/jhoicas/gst-billing-api/internal/application/gst"
	"github.com/jhoicas/gst-billing-api/internal/domain"
)

var _ appgst.LookupClient = (*Client)(nil)

// Client adaptador HTTP de la API de consulta de GSTIN (knowyourgst).
// La clave viaja en la cabecera "passthrough".
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient construye el adaptador. Con apiKey vacío las llamadas devuelven error descriptivo.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ── Estructuras del protocolo ─────────────────────────────────────────────────

// flexString acepta string o número (pincode llega de ambas formas).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type lookupResponse struct {
	StatusCode       int        `json:"status_code"`
	GSTIN            string     `json:"gstin"`
	LegalName        string     `json:"legal-name"`
	TradeName        string     `json:"trade-name"`
	PAN              string     `json:"pan"`
	DealerType       string     `json:"dealer-type"`
	RegistrationDate string     `json:"registration-date"`
	EntityType       string     `json:"entity-type"`
	Business         string     `json:"business"`
	Status           string     `json:"status"`
	Address          addressRaw `json:"adress"` // así lo escribe la API
}

type addressRaw struct {
	Floor    flexString `json:"floor"`
	BNo      flexString `json:"bno"`
	Street   flexString `json:"street"`
	Location flexString `json:"location"`
	State    flexString `json:"state"`
	Pincode  flexString `json:"pincode"`
	City     flexString `json:"city"`
}

// Lookup consulta un GSTIN ya normalizado.
func (c *Client) Lookup(ctx context.Context, gstin string) (*dto.GSTDetailsResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("gst: GST_API_KEY no configurado")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("gst: URL base inválida: %w", err)
	}
	q := u.Query()
	q.Set("gstin", gstin)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("gst: crear HTTP request: %w", err)
	}
	req.Header.Set("passthrough", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gst: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("gst: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("gst: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gst: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var body lookupResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("gst: deserializar respuesta: %w", err)
	}
	if body.StatusCode != 1 {
		return nil, fmt.Errorf("%w: GST number not found in the official database", domain.ErrNotFound)
	}

	return &dto.GSTDetailsResponse{
		GSTIN:            body.GSTIN,
		LegalName:        body.LegalName,
		TradeName:        body.TradeName,
		PAN:              body.PAN,
		DealerType:       body.DealerType,
		RegistrationDate: body.RegistrationDate,
		EntityType:       body.EntityType,
		Business:         body.Business,
		Status:           body.Status,
		Address: dto.GSTAddress{
			Floor:          string(body.Address.Floor),
			BuildingNumber: string(body.Address.BNo),
			Street:         string(body.Address.Street),
			Location:       string(body.Address.Location),
			State:          string(body.Address.State),
			Pincode:        string(body.Address.Pincode),
			City:           string(body.Address.City),
		},
	}, nil
}
