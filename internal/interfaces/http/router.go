package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recepciones-api/internal/application/dto"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receptions  ReceptionService
	JWTSecret   string
	JWTIssuer   string
	DBPing      func(ctx context.Context) error
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))

	api := app.Group("/api")

	// Recepciones (protegido; los casos de uso validan rol de recepción y tienda)
	receptions := api.Group("/receptions",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(append([]string{entity.RoleAdministrador}, entity.ReceivingRoles...)...),
	)
	h := NewReceptionHandler(deps.Receptions)
	receptions.Get("/incoming", h.ListIncoming)
	receptions.Get("/processed", h.ListProcessed)
	receptions.Post("/:folio/start", h.Start)
	receptions.Get("/:folio/preview", h.Preview)
	receptions.Post("/:folio/confirm", h.Confirm)
	receptions.Get("/:folio/acuse.pdf", h.Acuse)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DBPing == nil {
			return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName, Database: "n/a"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := deps.DBPing(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "degraded", Service: deps.ServiceName, Database: "down"})
		}
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName, Database: "up"})
	}
}
