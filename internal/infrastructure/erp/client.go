// Package erp es el adaptador HTTP hacia la API de traslados del ERP
// (consulta de cabeceras y detalle, y confirmación de recepción).
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain"
	domainrec "github.com/jhoicas/Recepciones-api/internal/domain/reception"
	"github.com/jhoicas/Recepciones-api/pkg/config"
)

var _ reception.TransferSource = (*Client)(nil)

const (
	pathTransfersToStores = "/Query/Traslados/TrasladosATiendas/where"
	pathTransferDetails   = "/Query/Traslados/TrasladosDetalle/where"
	pathReceiptConfirm    = "/Insert/Production/ReceiptConfirm"

	maxResponseBytes = 4 << 20
)

// HTTPError respuesta no-2xx del ERP. Conserva status y cuerpo tal cual para
// mostrarlos al usuario.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Op == opConfirm {
		return fmt.Sprintf("La API externa rechazó la confirmación: %d - %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("ERP: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return domain.ErrUpstreamUnavailable }

const (
	opListTransfers = "listar traslados"
	opHeader        = "cabecera del traslado"
	opDetails       = "detalle del traslado"
	opConfirm       = "confirmar recepción"
)

// Client cliente de la API de traslados con Basic auth y timeout por llamada.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient construye el cliente. Si cfg.Timeout es 0 se usan 30 s.
func NewClient(cfg config.ERPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListTransfersToStore traslados cuyo almacén destino es storeID.
func (c *Client) ListTransfersToStore(ctx context.Context, storeID string) ([]domainrec.TransferHeader, error) {
	raw, err := c.get(ctx, opListTransfers, pathTransfersToStores, url.Values{"AlmacenDestino": {storeID}})
	if err != nil {
		return nil, err
	}
	return decodeHeaders(raw)
}

// GetTransferHeader vuelve a consultar la cabecera del folio. ErrNotFound si el ERP no la devuelve.
func (c *Client) GetTransferHeader(ctx context.Context, folioSAP string) (*domainrec.TransferHeader, error) {
	raw, err := c.get(ctx, opHeader, pathTransfersToStores, url.Values{"FolioSAP": {folioSAP}})
	if err != nil {
		return nil, err
	}
	headers, err := decodeHeaders(raw)
	if err != nil {
		return nil, err
	}
	for i := range headers {
		if headers[i].FolioSAP == folioSAP {
			return &headers[i], nil
		}
	}
	return nil, fmt.Errorf("cabecera no encontrada para folio %s: %w", folioSAP, domain.ErrNotFound)
}

// GetTransferDetails líneas del traslado. Una respuesta que no es arreglo se trata como vacía.
func (c *Client) GetTransferDetails(ctx context.Context, folioSAP string) ([]domainrec.ExternalLine, error) {
	raw, err := c.get(ctx, opDetails, pathTransferDetails, url.Values{"FolioSAP": {folioSAP}})
	if err != nil {
		return nil, err
	}
	if !isJSONArray(raw) {
		return []domainrec.ExternalLine{}, nil
	}
	var dtos []detailDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("ERP: %s: %w: %v", opDetails, domain.ErrUpstreamContract, err)
	}
	lines := make([]domainrec.ExternalLine, 0, len(dtos))
	for _, d := range dtos {
		lines = append(lines, d.toDomain())
	}
	return lines, nil
}

// ConfirmReceipt envía ReceiptConfirm y devuelve el DocNum asignado por el ERP.
func (c *Client) ConfirmReceipt(ctx context.Context, confirmation domainrec.Confirmation) (string, error) {
	body, err := json.Marshal(newReceiptConfirmRequest(confirmation))
	if err != nil {
		return "", fmt.Errorf("ERP: serializar confirmación: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathReceiptConfirm, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ERP: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req, opConfirm)
	if err != nil {
		return "", err
	}
	return parseDocNum(raw)
}

func parseDocNum(raw []byte) (string, error) {
	if !json.Valid(raw) {
		return "", fmt.Errorf("La API externa devolvió una respuesta inválida (no es JSON): %w", domain.ErrUpstreamContract)
	}
	var resp []receiptConfirmResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp) == 0 || resp[0].DocNum == "" {
		return "", fmt.Errorf("Respuesta inesperada de la API. No se encontró 'DocNum': %w", domain.ErrUpstreamContract)
	}
	return string(resp[0].DocNum), nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ERP: crear HTTP request: %w", err)
	}
	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx := req.Context(); ctx.Err() != nil {
			return nil, fmt.Errorf("ERP: %s: timeout o cancelación: %w: %w", op, domain.ErrUpstreamUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("ERP: %s: llamada HTTP fallida: %w: %w", op, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ERP: %s: leer respuesta: %w: %w", op, domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func decodeHeaders(raw []byte) ([]domainrec.TransferHeader, error) {
	if !isJSONArray(raw) {
		return []domainrec.TransferHeader{}, nil
	}
	var dtos []headerDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("ERP: cabeceras: %w: %v", domain.ErrUpstreamContract, err)
	}
	headers := make([]domainrec.TransferHeader, 0, len(dtos))
	for _, d := range dtos {
		headers = append(headers, d.toDomain())
	}
	return headers, nil
}

func isJSONArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '[' && json.Valid(raw)
}
