package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/configs"
	attendanceRoute "garderie_backend/internals/features/attendance/attendance/route"
	childrenRoute "garderie_backend/internals/features/children/children/route"
	dashboardRoute "garderie_backend/internals/features/dashboard/dashboard/route"
	dashboardService "garderie_backend/internals/features/dashboard/dashboard/service"
	expenseRoute "garderie_backend/internals/features/finance/expenses/route"
	expenseService "garderie_backend/internals/features/finance/expenses/service"
	paymentRoute "garderie_backend/internals/features/finance/payments/route"
	paymentService "garderie_backend/internals/features/finance/payments/service"
	receiptService "garderie_backend/internals/features/finance/receipts/service"
	menuRoute "garderie_backend/internals/features/menus/menus/route"
	menuService "garderie_backend/internals/features/menus/menus/service"
	authRoute "garderie_backend/internals/features/users/auth/route"
	authService "garderie_backend/internals/features/users/auth/service"
	userRoute "garderie_backend/internals/features/users/user/route"
	userService "garderie_backend/internals/features/users/user/service"
	authMiddleware "garderie_backend/internals/middlewares/auth"
)

// Deps are the long-lived objects shared by every feature.
type Deps struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Config   *configs.Config
	Receipts *receiptService.Renderer
}

func SetupRoutes(app *fiber.App, d Deps) {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	alloc := receiptService.NewAllocator(receiptService.Strategy(cfg.Receipts.SequenceStrategy))

	auth := authService.New(d.DB, log, cfg.Auth)
	payments := paymentService.New(d.DB, log, alloc, d.Receipts)
	expenses := expenseService.New(d.DB, log, alloc, d.Receipts)

	api := app.Group("/api")

	// ===================== PUBLIC =====================
	BaseRoutes(api, d.DB, cfg.AppEnv)
	authRoute.AuthPublicRoutes(api, auth)

	// ===================== PROTECTED =====================
	protected := api.Group("", authMiddleware.AuthMiddleware(d.DB, cfg.Auth.JWTSecret))

	authRoute.AuthProtectedRoutes(protected, auth)
	userRoute.UserAdminRoutes(protected, userService.New(d.DB, log))
	childrenRoute.ChildrenRoutes(protected, d.DB, log)
	attendanceRoute.AttendanceRoutes(protected, d.DB, log)
	paymentRoute.PaymentRoutes(protected, payments)
	expenseRoute.ExpenseRoutes(protected, expenses)
	menuRoute.MenuRoutes(protected, menuService.New(d.DB, log))
	dashboardRoute.DashboardRoutes(protected, dashboardService.New(d.DB, log, payments))

	log.Info("routes registered", zap.Int("handlers", int(app.HandlersCount())))
}
