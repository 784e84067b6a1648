package erp_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
	"github.com/jhoicas/Recepciones-api/internal/infrastructure/erp"
	"github.com/jhoicas/Recepciones-api/pkg/config"
)

func newClient(t *testing.T, h http.HandlerFunc) *erp.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return erp.NewClient(config.ERPConfig{
		BaseURL:  srv.URL,
		User:     "tiendas",
		Password: "secreto",
		Timeout:  2 * time.Second,
	})
}

func TestListTransfersToStore_BasicAuthYDecodificacion(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "tiendas", user)
		assert.Equal(t, "secreto", pass)
		assert.Equal(t, "/Query/Traslados/TrasladosATiendas/where", r.URL.Path)
		assert.Equal(t, "T01", r.URL.Query().Get("AlmacenDestino"))
		_, _ = io.WriteString(w, `[
			{"FolioSAP": 1001, "Fecha": "2024-05-01T00:00:00", "NombreOrigen": "CEDIS",
			 "AlmacenOrigen": "A01", "AlmacenDestino": "T01", "Estatus": "O", "Memo": null,
			 "NumAtCard": "NC-1", "DocNum": 555}
		]`)
	})

	headers, err := client.ListTransfersToStore(context.Background(), "T01")
	require.NoError(t, err)
	require.Len(t, headers, 1)
	h := headers[0]
	assert.Equal(t, "1001", h.FolioSAP)
	assert.Equal(t, "CEDIS", h.NombreOrigen)
	assert.True(t, h.IsOpen())
	assert.Empty(t, h.Memo)
	assert.JSONEq(t, `555`, string(h.DocNum))
	assert.JSONEq(t, `"NC-1"`, string(h.NumAtCard))
}

func TestListTransfersToStore_Non2xxEsHTTPError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "sin conexión a SAP")
	})

	_, err := client.ListTransfersToStore(context.Background(), "T01")
	var httpErr *erp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "sin conexión a SAP", httpErr.Body)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestGetTransferHeader_BuscaElFolio(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1001", r.URL.Query().Get("FolioSAP"))
		_, _ = io.WriteString(w, `[{"FolioSAP": "999"}, {"FolioSAP": "1001", "Fecha": "2024-05-01", "DocNum": 77}]`)
	})

	h, err := client.GetTransferHeader(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", h.Fecha)

	_, err = client.GetTransferHeader(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTransferDetails_CantidadesFlexibles(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Query/Traslados/TrasladosDetalle/where", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"Linenum": 0, "Articulo": "A", "Descripcion": "Playera", "Cantidad": 10, "CodeBars": "750A"},
			{"Linenum": "1", "Articulo": "B", "Cantidad": "5.000", "CodeBars": null},
			{"Linenum": 2, "Articulo": 3001, "Cantidad": 2.0}
		]`)
	})

	lines, err := client.GetTransferDetails(context.Background(), "1001")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, reception.ExternalLine{Linenum: 0, Articulo: "A", Descripcion: "Playera", Cantidad: 10, CodeBars: "750A"}, lines[0])
	assert.Equal(t, int64(5), lines[1].Cantidad)
	assert.Equal(t, 1, lines[1].Linenum)
	assert.Equal(t, "3001", lines[2].Articulo)
	assert.Equal(t, int64(2), lines[2].Cantidad)
}

func TestGetTransferDetails_CantidadNoEnteraEsContratoRoto(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"Linenum": 1, "Articulo": "A", "Cantidad": 2.5}]`)
	})

	_, err := client.GetTransferDetails(context.Background(), "1001")
	assert.ErrorIs(t, err, domain.ErrUpstreamContract)
}

func TestGetTransferDetails_RespuestaNoArregloEsVacia(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"message": "sin datos"}`)
	})

	lines, err := client.GetTransferDetails(context.Background(), "1001")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceiptConfirm
// ──────────────────────────────────────────────────────────────────────────────

func confirmation() reception.Confirmation {
	receipt := reception.BuildReceipt([]reception.CountedLine{
		{Linenum: 0, Articulo: "A", Esperado: 10, Recibido: 12, CodeBars: "750A"},
		{Linenum: 1, Articulo: "B", Esperado: 5, Recibido: 3, CodeBars: ""},
	}, false)
	return reception.Confirmation{
		Header: reception.TransferHeader{
			FolioSAP:  "1001",
			Fecha:     "2024-05-01T00:00:00",
			NumAtCard: json.RawMessage(`"NC-1"`),
			DocNum:    json.RawMessage(`77`),
		},
		Memo:              "llegó una caja abierta",
		TransactionNumber: "RC-0000",
		Receipt:           receipt,
	}
}

func TestConfirmReceipt_PayloadYDocNum(t *testing.T) {
	var payload map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Insert/Production/ReceiptConfirm", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, `[{"DocNum": 4455}]`)
	})

	docNum, err := client.ConfirmReceipt(context.Background(), confirmation())
	require.NoError(t, err)
	assert.Equal(t, "4455", docNum)

	rc := payload["ReceiptConfirm"].(map[string]any)
	assert.Equal(t, "NC-1", rc["NumAtCard"])
	assert.Equal(t, "2024-05-01T00:00:00", rc["DocDate"])
	assert.Equal(t, float64(77), rc["DocNum"])
	assert.Equal(t, "RC-0000", rc["TransactionNumber"])
	assert.Equal(t, "Parcial", rc["Status"])
	assert.Equal(t, "llegó una caja abierta", rc["Memo"])

	cv := payload["ControlValues"].(map[string]any)
	assert.Equal(t, float64(2), cv["TotalLines"])
	assert.Equal(t, float64(13), cv["TotalQuantity"])

	lines := payload["Lines"].([]any)
	first := lines[0].(map[string]any)
	assert.Equal(t, "0", first["LineNum"])
	assert.Equal(t, float64(10), first["Quantity"])

	exc := payload["Excedentes"].(map[string]any)
	excLines := exc["Lines"].([]any)
	require.Len(t, excLines, 1)
	assert.Equal(t, float64(2), excLines[0].(map[string]any)["Quantity"])
}

func TestConfirmReceipt_Rechazo(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "Boom")
	})

	_, err := client.ConfirmReceipt(context.Background(), confirmation())
	require.Error(t, err)
	assert.Equal(t, "La API externa rechazó la confirmación: 500 - Boom", err.Error())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestConfirmReceipt_RespuestasInvalidas(t *testing.T) {
	cases := map[string]string{
		"no es JSON":      `<html>ok</html>`,
		"arreglo vacío":   `[]`,
		"sin DocNum":      `[{"Id": 1}]`,
		"objeto en lugar": `{"DocNum": 1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			_, err := client.ConfirmReceipt(context.Background(), confirmation())
			assert.ErrorIs(t, err, domain.ErrUpstreamContract)
			assert.False(t, errors.Is(err, domain.ErrUpstreamUnavailable))
		})
	}
}

func TestConfirmReceipt_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	client := erp.NewClient(config.ERPConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := client.ConfirmReceipt(context.Background(), confirmation())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
