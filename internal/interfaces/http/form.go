package http

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recepciones-api/internal/application/dto"
	"github.com/jhoicas/Recepciones-api/internal/application/reception"
)

// items[<linenum>][<campo>] tal como lo envía el formulario de captura.
var itemKey = regexp.MustCompile(`^items\[(\d+)\]\[(articulo|esperado|recibido|codeBars)\]$`)

// recibido[<linenum>] en el query de la vista previa.
var recibidoKey = regexp.MustCompile(`^recibido\[(\d+)\]$`)

// formValues junta los campos de un body urlencoded o multipart.
func formValues(c *fiber.Ctx) (map[string]string, error) {
	values := make(map[string]string)
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		return values, nil
	}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		values[string(k)] = string(v)
	})
	return values, nil
}

// parseConfirmForm convierte el formulario plano en la petición de confirmación.
func parseConfirmForm(values map[string]string) (dto.ConfirmReceptionRequest, error) {
	req := dto.ConfirmReceptionRequest{
		Observaciones: values["observaciones"],
		Cancel:        parseBool(values["cancel"]),
	}

	byLine := make(map[int]*dto.ConfirmItemRequest)
	for key, raw := range values {
		m := itemKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		linenum, err := strconv.Atoi(m[1])
		if err != nil {
			return req, fmt.Errorf("línea inválida: %s", m[1])
		}
		item, ok := byLine[linenum]
		if !ok {
			item = &dto.ConfirmItemRequest{Linenum: &linenum}
			byLine[linenum] = item
		}
		switch m[2] {
		case "articulo":
			item.Articulo = ptr(strings.TrimSpace(raw))
		case "codeBars":
			item.CodeBars = ptr(strings.TrimSpace(raw))
		case "esperado":
			qty, err := parseQty(raw)
			if err != nil {
				return req, fmt.Errorf("cantidad esperada inválida en la línea %d", linenum)
			}
			item.Esperado = &qty
		case "recibido":
			qty, err := parseQty(raw)
			if err != nil {
				return req, fmt.Errorf("cantidad recibida inválida en la línea %d", linenum)
			}
			item.Recibido = &qty
		}
	}

	lines := make([]int, 0, len(byLine))
	for n := range byLine {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	req.Items = make([]dto.ConfirmItemRequest, 0, len(lines))
	for _, n := range lines {
		req.Items = append(req.Items, *byLine[n])
	}
	return req, nil
}

// completeLines descarta las líneas a las que les falta algún campo.
func completeLines(items []dto.ConfirmItemRequest) []reception.ConfirmLine {
	lines := make([]reception.ConfirmLine, 0, len(items))
	for _, it := range items {
		if !it.Complete() {
			continue
		}
		lines = append(lines, reception.ConfirmLine{
			Linenum:  *it.Linenum,
			Articulo: *it.Articulo,
			Esperado: *it.Esperado,
			Recibido: *it.Recibido,
			CodeBars: *it.CodeBars,
		})
	}
	return lines
}

// parseRecibidos lee recibido[<linenum>]=n del query de la vista previa.
func parseRecibidos(c *fiber.Ctx) (map[int]int64, error) {
	entered := make(map[int]int64)
	var parseErr error
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if parseErr != nil {
			return
		}
		m := recibidoKey.FindStringSubmatch(string(k))
		if m == nil {
			return
		}
		linenum, err := strconv.Atoi(m[1])
		if err != nil {
			parseErr = fmt.Errorf("línea inválida: %s", m[1])
			return
		}
		qty, err := parseQty(string(v))
		if err != nil {
			parseErr = fmt.Errorf("cantidad recibida inválida en la línea %d", linenum)
			return
		}
		entered[linenum] = qty
	})
	return entered, parseErr
}

// parseQty entero no vacío; vacío cuenta como 0. Los negativos se rechazan en el caso de uso.
func parseQty(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func ptr[T any](v T) *T { return &v }

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "si", "sí":
		return true
	}
	return false
}
