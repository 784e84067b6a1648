package http

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recepciones-api/internal/application/dto"
	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	domainrec "github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

// ReceptionService casos de uso que expone el handler.
type ReceptionService interface {
	ListIncoming(ctx context.Context, actor entity.Actor) ([]domainrec.TransferHeader, error)
	ListProcessed(ctx context.Context, actor entity.Actor) ([]*entity.ProcessedMovement, error)
	StartReception(ctx context.Context, actor entity.Actor, folioSAP string) (*reception.Preview, error)
	Preview(ctx context.Context, actor entity.Actor, folioSAP string, entered map[int]int64, cancel bool) (*reception.Preview, error)
	Confirm(ctx context.Context, actor entity.Actor, in reception.ConfirmInput) (*reception.ConfirmResult, error)
	DownloadAcuse(ctx context.Context, actor entity.Actor, folioSAP string) ([]byte, string, error)
}

var _ ReceptionService = (*reception.UseCase)(nil)

// ReceptionHandler maneja las peticiones HTTP de recepción de traslados (protegido).
type ReceptionHandler struct {
	uc ReceptionService
}

// NewReceptionHandler construye el handler.
func NewReceptionHandler(uc ReceptionService) *ReceptionHandler {
	return &ReceptionHandler{uc: uc}
}

// ListIncoming godoc
// @Summary      Traslados por recibir
// @Description  Traslados abiertos en el ERP hacia las tiendas del usuario que aún no tienen bitácora.
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.IncomingTransferResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/receptions/incoming [get]
func (h *ReceptionHandler) ListIncoming(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	headers, err := h.uc.ListIncoming(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.IncomingTransferResponse, 0, len(headers))
	for _, hd := range headers {
		out = append(out, dto.IncomingTransferResponse{
			FolioSAP:       hd.FolioSAP,
			Fecha:          hd.Fecha,
			Memo:           hd.Memo,
			NombreOrigen:   hd.NombreOrigen,
			AlmacenOrigen:  hd.AlmacenOrigen,
			AlmacenDestino: hd.AlmacenDestino,
		})
	}
	return c.JSON(out)
}

// ListProcessed godoc
// @Summary      Recepciones procesadas
// @Description  Movimientos ya conciliados de las tiendas del usuario (todas para ADMINISTRADOR), más recientes primero.
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ProcessedMovementResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/receptions/processed [get]
func (h *ReceptionHandler) ListProcessed(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.uc.ListProcessed(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProcessedMovementResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProcessedMovementResponse{
			ID:        p.ID,
			FolioSAP:  p.DocumentNumber,
			Status:    p.StatusName,
			Origen:    p.OriginStoreName,
			Destino:   p.DestinationStoreName,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar recepción
// @Description  Abre la captura del folio con recibido = esperado. 409 si ya fue procesado.
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        folio  path  string  true  "Folio SAP"
// @Success      200  {object}  dto.PreviewResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/receptions/{folio}/start [post]
func (h *ReceptionHandler) Start(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	p, err := h.uc.StartReception(c.UserContext(), actor, folioParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPreviewResponse(p))
}

// Preview godoc
// @Summary      Vista previa conciliada
// @Description  Concilia las cantidades capturadas (recibido[linenum]=n) contra el ERP. Folios procesados se muestran desde la bitácora.
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        folio   path   string  true   "Folio SAP"
// @Param        cancel  query  bool    false  "Recepción cancelada"
// @Success      200  {object}  dto.PreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/receptions/{folio}/preview [get]
func (h *ReceptionHandler) Preview(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	entered, err := parseRecibidos(c)
	if err != nil {
		return validationError(c, err.Error())
	}
	p, err := h.uc.Preview(c.UserContext(), actor, folioParam(c), entered, c.QueryBool("cancel"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPreviewResponse(p))
}

// Confirm godoc
// @Summary      Confirmar recepción
// @Description  Envía ReceiptConfirm al ERP y, si lo acepta, registra bitácora y estatus. Acepta JSON o el formulario items[N][campo].
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        folio  path  string                       true  "Folio SAP"
// @Param        body   body  dto.ConfirmReceptionRequest  true  "observaciones, cancel, items"
// @Success      201  {object}  dto.ConfirmReceptionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/receptions/{folio}/confirm [post]
func (h *ReceptionHandler) Confirm(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}

	var in dto.ConfirmReceptionRequest
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	} else {
		values, err := formValues(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario inválido"})
		}
		if in, err = parseConfirmForm(values); err != nil {
			return validationError(c, err.Error())
		}
	}

	lines := completeLines(in.Items)
	if len(lines) == 0 {
		return validationError(c, "No se enviaron artículos.")
	}
	input := reception.ConfirmInput{
		FolioSAP:      folioParam(c),
		Observaciones: in.Observaciones,
		Cancel:        in.Cancel,
		Lines:         lines,
	}

	res, err := h.uc.Confirm(c.UserContext(), actor, input)
	if err != nil {
		return writeError(c, err)
	}
	redirect := fmt.Sprintf("/api/receptions/%s/preview?status=success&docNum=%s",
		url.PathEscape(res.FolioSAP), url.QueryEscape(res.DocNum))
	c.Location(redirect)
	return c.Status(fiber.StatusCreated).JSON(dto.ConfirmReceptionResponse{
		FolioSAP:          res.FolioSAP,
		DocNum:            res.DocNum,
		TransactionNumber: res.TransactionNumber,
		Status:            string(res.Status),
		MovementStatus:    res.MovementStatus,
		Redirect:          redirect,
	})
}

// Acuse godoc
// @Summary      Acuse de recepción (PDF)
// @Tags         receptions
// @Security     Bearer
// @Produce      application/pdf
// @Param        folio  path  string  true  "Folio SAP"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receptions/{folio}/acuse.pdf [get]
func (h *ReceptionHandler) Acuse(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	pdf, filename, err := h.uc.DownloadAcuse(c.UserContext(), actor, folioParam(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

func toPreviewResponse(p *reception.Preview) dto.PreviewResponse {
	s := p.Result.Summary
	out := dto.PreviewResponse{
		FolioSAP:       p.FolioSAP,
		OriginName:     p.OriginName,
		MovementStatus: p.MovementStatus,
		ReadOnly:       p.ReadOnly,
		Classification: string(p.Result.Classification),
		Summary: dto.ReceptionSummaryResponse{
			Lines:         s.Lines,
			Correctos:     s.Correctos,
			Faltantes:     s.Faltantes,
			Excedentes:    s.Excedentes,
			ConDiferencia: s.ConDiferencia,
			TotalEsperado: s.TotalEsperado,
			TotalRecibido: s.TotalRecibido,
		},
		Lines: make([]dto.ReceptionLineResponse, 0, len(p.Result.Lines)),
	}
	for _, l := range p.Result.Lines {
		out.Lines = append(out.Lines, dto.ReceptionLineResponse{
			Linenum:          l.Linenum,
			Articulo:         l.Articulo,
			Descripcion:      l.Descripcion,
			CodeBars:         l.CodeBars,
			CantidadEsperada: l.CantidadEsperada,
			CantidadRecibida: l.CantidadRecibida,
			Diferencia:       l.Diferencia,
			Status:           string(l.Status),
		})
	}
	return out
}

func folioParam(c *fiber.Ctx) string {
	folio, err := url.PathUnescape(c.Params("folio"))
	if err != nil {
		return c.Params("folio")
	}
	return strings.TrimSpace(folio)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
