package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepciones-api/internal/application/dto"
	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	domainrec "github.com/jhoicas/Recepciones-api/internal/domain/reception"
	apphttp "github.com/jhoicas/Recepciones-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del caso de uso
// ──────────────────────────────────────────────────────────────────────────────

type fakeReceptions struct {
	err error

	actor   entity.Actor
	folio   string
	entered map[int]int64
	cancel  bool
	confirm reception.ConfirmInput
}

func (f *fakeReceptions) ListIncoming(_ context.Context, actor entity.Actor) ([]domainrec.TransferHeader, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return []domainrec.TransferHeader{
		{FolioSAP: "1001", Fecha: "2024-05-01", NombreOrigen: "CEDIS", AlmacenOrigen: "A01", AlmacenDestino: "T01", Estatus: "O"},
	}, nil
}

func (f *fakeReceptions) ListProcessed(_ context.Context, actor entity.Actor) ([]*entity.ProcessedMovement, error) {
	f.actor = actor
	return []*entity.ProcessedMovement{
		{ID: "m1", DocumentNumber: "900", StatusName: entity.MovementStatusCerrado, OriginStoreName: "CEDIS", DestinationStoreName: "Centro", UpdatedAt: time.Now()},
	}, f.err
}

func (f *fakeReceptions) StartReception(_ context.Context, actor entity.Actor, folio string) (*reception.Preview, error) {
	f.actor, f.folio = actor, folio
	if f.err != nil {
		return nil, f.err
	}
	return previewFor(folio, nil), nil
}

func (f *fakeReceptions) Preview(_ context.Context, actor entity.Actor, folio string, entered map[int]int64, cancel bool) (*reception.Preview, error) {
	f.actor, f.folio, f.entered, f.cancel = actor, folio, entered, cancel
	if f.err != nil {
		return nil, f.err
	}
	return previewFor(folio, entered), nil
}

func (f *fakeReceptions) Confirm(_ context.Context, actor entity.Actor, in reception.ConfirmInput) (*reception.ConfirmResult, error) {
	f.actor, f.confirm = actor, in
	if f.err != nil {
		return nil, f.err
	}
	return &reception.ConfirmResult{
		FolioSAP:          in.FolioSAP,
		DocNum:            "90001",
		TransactionNumber: "RC-1",
		Status:            domainrec.ClassificationParcial,
		MovementStatus:    entity.MovementStatusRecibidoParcial,
	}, nil
}

func (f *fakeReceptions) DownloadAcuse(_ context.Context, actor entity.Actor, folio string) ([]byte, string, error) {
	f.actor, f.folio = actor, folio
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("%PDF-1.3 fake"), "acuse-recepcion-" + folio + ".pdf", nil
}

func previewFor(folio string, entered map[int]int64) *reception.Preview {
	lines := []domainrec.ExternalLine{{Linenum: 0, Articulo: "A-100", Cantidad: 10}}
	return &reception.Preview{
		FolioSAP:       folio,
		OriginName:     "CEDIS",
		MovementStatus: entity.MovementStatusEnPreparacion,
		Result:         domainrec.Reconcile(lines, entered, false),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newReceptionApp(svc apphttp.ReceptionService, ping func(context.Context) error) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Receptions:  svc,
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
		DBPing:      ping,
		ServiceName: "recepciones-api",
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, target, contentType, body string, auth bool) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", signToken(t, "VENDEDOR", "T01"))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestReceptionHandler_ListIncoming(t *testing.T) {
	svc := &fakeReceptions{}
	resp := call(t, newReceptionApp(svc, nil), http.MethodGet, "/api/receptions/incoming", "", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []dto.IncomingTransferResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "1001", out[0].FolioSAP)
	assert.Equal(t, "CEDIS", out[0].NombreOrigen)

	assert.Equal(t, entity.RoleVendedor, svc.actor.Role)
	assert.Equal(t, []string{"T01"}, svc.actor.StoreIDs)
}

func TestReceptionHandler_ListProcessed(t *testing.T) {
	resp := call(t, newReceptionApp(&fakeReceptions{}, nil), http.MethodGet, "/api/receptions/processed", "", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []dto.ProcessedMovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "900", out[0].FolioSAP)
	assert.Equal(t, entity.MovementStatusCerrado, out[0].Status)
}

func TestReceptionHandler_SinToken_Retorna401(t *testing.T) {
	resp := call(t, newReceptionApp(&fakeReceptions{}, nil), http.MethodGet, "/api/receptions/incoming", "", "", false)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Start / Preview
// ──────────────────────────────────────────────────────────────────────────────

func TestReceptionHandler_Start(t *testing.T) {
	svc := &fakeReceptions{}
	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/start", "", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.PreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "1001", out.FolioSAP)
	assert.Equal(t, "Total", out.Classification)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(10), out.Lines[0].CantidadRecibida)
}

func TestReceptionHandler_Start_YaProcesado_Retorna409(t *testing.T) {
	svc := &fakeReceptions{err: fmt.Errorf("%w: La recepción para el folio 1001 ya fue procesada.", domain.ErrAlreadyProcessed)}
	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/start", "", "", true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "ALREADY_PROCESSED", body.Code)
	assert.Equal(t, "La recepción para el folio 1001 ya fue procesada.", body.Message)
}

func TestReceptionHandler_Preview_LeeCantidadesYCancel(t *testing.T) {
	svc := &fakeReceptions{}
	q := url.Values{}
	q.Set("recibido[0]", "7")
	q.Set("recibido[3]", "")
	q.Set("cancel", "true")
	resp := call(t, newReceptionApp(svc, nil), http.MethodGet, "/api/receptions/1001/preview?"+q.Encode(), "", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[int]int64{0: 7, 3: 0}, svc.entered)
	assert.True(t, svc.cancel)

	var out dto.PreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(-3), out.Lines[0].Diferencia)
}

func TestReceptionHandler_Preview_CantidadInvalida_Retorna400(t *testing.T) {
	svc := &fakeReceptions{}
	q := url.Values{}
	q.Set("recibido[0]", "siete")
	resp := call(t, newReceptionApp(svc, nil), http.MethodGet, "/api/receptions/1001/preview?"+q.Encode(), "", "", true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
	assert.Empty(t, svc.folio, "no debe llegar al caso de uso")
}

// ──────────────────────────────────────────────────────────────────────────────
// Confirm
// ──────────────────────────────────────────────────────────────────────────────

func TestReceptionHandler_Confirm_Formulario(t *testing.T) {
	svc := &fakeReceptions{}
	form := url.Values{}
	form.Set("items[0][articulo]", "A-100")
	form.Set("items[0][esperado]", "10")
	form.Set("items[0][recibido]", "8")
	form.Set("items[0][codeBars]", "7501")
	form.Set("items[2][articulo]", "B-200")
	form.Set("items[2][esperado]", "5")
	form.Set("items[2][recibido]", "6")
	form.Set("items[2][codeBars]", "")
	form.Set("observaciones", "caja abierta")
	form.Set("cancel", "false")

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationForm, form.Encode(), true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/receptions/1001/preview?status=success&docNum=90001", resp.Header.Get("Location"))

	var out dto.ConfirmReceptionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "90001", out.DocNum)
	assert.Equal(t, "Parcial", out.Status)
	assert.Equal(t, entity.MovementStatusRecibidoParcial, out.MovementStatus)

	in := svc.confirm
	assert.Equal(t, "1001", in.FolioSAP)
	assert.Equal(t, "caja abierta", in.Observaciones)
	assert.False(t, in.Cancel)
	require.Len(t, in.Lines, 2)
	assert.Equal(t, reception.ConfirmLine{Linenum: 0, Articulo: "A-100", Esperado: 10, Recibido: 8, CodeBars: "7501"}, in.Lines[0])
	assert.Equal(t, reception.ConfirmLine{Linenum: 2, Articulo: "B-200", Esperado: 5, Recibido: 6}, in.Lines[1])
}

func TestReceptionHandler_Confirm_JSON(t *testing.T) {
	svc := &fakeReceptions{}
	body := `{"cancel":true,"observaciones":"no llegó","items":[{"linenum":0,"articulo":"A-100","esperado":10,"recibido":0,"codeBars":"7501"}]}`

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationJSON, body, true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, svc.confirm.Cancel)
	require.Len(t, svc.confirm.Lines, 1)
	assert.Equal(t, int64(0), svc.confirm.Lines[0].Recibido)
}

func TestReceptionHandler_Confirm_LineaIncompleta_Retorna400(t *testing.T) {
	svc := &fakeReceptions{}
	form := url.Values{}
	form.Set("items[3][articulo]", "A1")

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationForm, form.Encode(), true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No se enviaron artículos.", decodeError(t, resp).Message)
	assert.Empty(t, svc.confirm.FolioSAP, "no debe llegar al caso de uso")
}

func TestReceptionHandler_Confirm_DescartaLineasIncompletas(t *testing.T) {
	svc := &fakeReceptions{}
	form := url.Values{}
	form.Set("items[0][articulo]", "A-100")
	form.Set("items[0][esperado]", "10")
	form.Set("items[0][recibido]", "10")
	form.Set("items[0][codeBars]", "7501")
	form.Set("items[1][articulo]", "B-200")
	form.Set("items[1][esperado]", "4")
	form.Set("items[1][recibido]", "4")
	form.Set("items[2][articulo]", "C-300")
	form.Set("items[2][recibido]", "1")
	form.Set("items[2][codeBars]", "7503")

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationForm, form.Encode(), true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, svc.confirm.Lines, 1)
	assert.Equal(t, reception.ConfirmLine{Linenum: 0, Articulo: "A-100", Esperado: 10, Recibido: 10, CodeBars: "7501"}, svc.confirm.Lines[0])
}

func TestReceptionHandler_Confirm_JSONSinCampos_Retorna400(t *testing.T) {
	svc := &fakeReceptions{}
	body := `{"items":[{"linenum":0,"articulo":"A-100","recibido":3,"codeBars":"7501"},{"articulo":"B-200","esperado":1,"recibido":1,"codeBars":""}]}`

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationJSON, body, true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No se enviaron artículos.", decodeError(t, resp).Message)
	assert.Empty(t, svc.confirm.Lines)
}

func TestReceptionHandler_Confirm_CantidadNoNumerica_Retorna400(t *testing.T) {
	svc := &fakeReceptions{}
	form := url.Values{}
	form.Set("items[0][articulo]", "A-100")
	form.Set("items[0][recibido]", "ocho")

	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationForm, form.Encode(), true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "línea 0")
}

func TestReceptionHandler_Confirm_MapeoDeErrores(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", fmt.Errorf("%w: No se enviaron artículos.", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION"},
		{"en curso", domain.ErrConfirmationInProgress, http.StatusConflict, "CONFIRMATION_IN_PROGRESS"},
		{"ya procesada", domain.ErrAlreadyProcessed, http.StatusConflict, "ALREADY_PROCESSED"},
		{"tienda ajena", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"sin cabecera", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"ERP rechaza", fmt.Errorf("La API externa rechazó la confirmación: 500 - boom: %w", domain.ErrUpstreamUnavailable), http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"ERP sin DocNum", fmt.Errorf("No se encontró 'DocNum': %w", domain.ErrUpstreamContract), http.StatusBadGateway, "UPSTREAM_UNEXPECTED_RESPONSE"},
		{"guardado local", fmt.Errorf("%w: folio 1001, DocNum 90001: %w", domain.ErrPersistence, errors.New("tx")), http.StatusInternalServerError, "PERSISTENCE"},
		{"desconocido", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeReceptions{err: tt.err}
			resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
				fiber.MIMEApplicationJSON, `{"items":[{"linenum":0,"articulo":"A","esperado":1,"recibido":1,"codeBars":""}]}`, true)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}
}

func TestReceptionHandler_Confirm_RechazoConservaMensajeDelERP(t *testing.T) {
	svc := &fakeReceptions{err: fmt.Errorf("La API externa rechazó la confirmación: 400 - folio cerrado: %w", domain.ErrUpstreamUnavailable)}
	resp := call(t, newReceptionApp(svc, nil), http.MethodPost, "/api/receptions/1001/confirm",
		fiber.MIMEApplicationJSON, `{"items":[{"linenum":0,"articulo":"A","esperado":1,"recibido":1,"codeBars":""}]}`, true)
	defer resp.Body.Close()

	assert.Contains(t, decodeError(t, resp).Message, "400 - folio cerrado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Acuse y health
// ──────────────────────────────────────────────────────────────────────────────

func TestReceptionHandler_Acuse(t *testing.T) {
	resp := call(t, newReceptionApp(&fakeReceptions{}, nil), http.MethodGet, "/api/receptions/1001/acuse.pdf", "", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "acuse-recepcion-1001.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestHealth(t *testing.T) {
	ok := call(t, newReceptionApp(&fakeReceptions{}, func(context.Context) error { return nil }), http.MethodGet, "/health", "", "", false)
	defer ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)

	down := call(t, newReceptionApp(&fakeReceptions{}, func(context.Context) error { return errors.New("down") }), http.MethodGet, "/health", "", "", false)
	defer down.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, down.StatusCode)
}
