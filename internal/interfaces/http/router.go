package http

import (
	"github.com/gofiber/fiber/v2"

	appledger "github.com/economato/stock-ledger/internal/application/ledger"
	"github.com/economato/stock-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerSvc *appledger.Service
	ProductUC *usecase.ProductUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todo requiere Bearer Token; las
// operaciones administrativas del ledger (verificación, batch, reset)
// requieren además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole(RoleAdmin), productHandler.Delete)

	// Stock ledger (protegido; movimientos para cocina y admin)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	ledgerGroup := api.Group("/stock-ledger")
	ledgerGroup.Post("/movements", RequireRole(RoleAdmin, RoleCocinero), ledgerHandler.RecordMovement)
	ledgerGroup.Get("/history/:productId", RequireRole(RoleAdmin), ledgerHandler.GetHistory)
	ledgerGroup.Get("/snapshot/:productId", RequireRole(RoleAdmin), ledgerHandler.GetSnapshot)
	ledgerGroup.Get("/verify-all", RequireRole(RoleAdmin), ledgerHandler.VerifyAll)
	ledgerGroup.Get("/verify/:productId", RequireRole(RoleAdmin), ledgerHandler.Verify)
	ledgerGroup.Post("/batch", RequireRole(RoleAdmin), ledgerHandler.ProcessBatch)
	ledgerGroup.Delete("/reset/:productId", RequireRole(RoleAdmin), ledgerHandler.Reset)
}
