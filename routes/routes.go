package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	applicationController "passport-apply/controllers/application"
	appointmentController "passport-apply/controllers/appointment"
	authController "passport-apply/controllers/auth"
	docaiController "passport-apply/controllers/docai"
	filesController "passport-apply/controllers/files"
	renewalController "passport-apply/controllers/renewal"
	statsController "passport-apply/controllers/stats"
	userController "passport-apply/controllers/user"
	"passport-apply/logger"
	"passport-apply/middleware"
	"passport-apply/models/user"
	appservice "passport-apply/services/appointment"
	applicationservice "passport-apply/services/application"
	authservice "passport-apply/services/auth"
	docaiservice "passport-apply/services/docai"
	docservice "passport-apply/services/document"
	renewalservice "passport-apply/services/renewal"
	statservice "passport-apply/services/stats"
	"passport-apply/services/transition"
	"passport-apply/storage"
	"passport-apply/utils"
)

// SetupRoutes wires stores, services and controllers onto the fiber app.
func SetupRoutes(app *fiber.App, db *gorm.DB, blobs *storage.Local) {
	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()

	uploadCfg := docservice.UploadConfigFromEnv()

	// Application mutations share one keyed mutex so status transitions,
	// field updates and document attachment serialize per aggregate.
	appLocks := utils.NewKeyedMutex()
	renewalLocks := utils.NewKeyedMutex()

	appStore := applicationservice.NewGormStore(db)
	renewalStore := renewalservice.NewGormStore(db)
	appointmentStore := appservice.NewGormStore(db)
	userStore := authservice.NewGormStore(db)

	applications := applicationservice.NewService(appStore, appLocks)
	engine := transition.NewEngine(appStore, appLocks)
	documents := docservice.NewManager(appStore, blobs, appLocks, uploadCfg)
	renewals := renewalservice.NewService(renewalStore, blobs, renewalLocks, uploadCfg)
	appointments := appservice.NewService(appointmentStore)
	accounts := authservice.NewService(userStore)
	stats := statservice.NewService(appStore)
	extractor := docaiservice.NewService()

	authCtrl := authController.NewAuthController(accounts, asyncLogger)
	userCtrl := userController.NewUserController(accounts, asyncLogger)
	applicationCtrl := applicationController.NewApplicationController(applications, engine, documents, asyncLogger)
	renewalCtrl := renewalController.NewRenewalController(renewals, asyncLogger)
	appointmentCtrl := appointmentController.NewAppointmentController(appointments, asyncLogger)
	statsCtrl := statsController.NewStatsController(stats, asyncLogger)
	docaiCtrl := docaiController.NewDocAIController(extractor, asyncLogger)
	filesCtrl := filesController.NewFilesController(blobs)

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "passport-apply", "status": "ok"})
	})

	// Signed file URLs carry their own authorization.
	app.Get("/files/*", filesCtrl.Serve)

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/register", authCtrl.Register)
	api.Post("/login", authCtrl.Login)

	/*=============================================================================
	| Protected Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAuth())
	authGroup.Get("/profile", authCtrl.Profile)

	/*=============================================================================
	| Application Routes
	===============================================================================*/
	applicationGroup := api.Group("/application")

	applicationGroup.Post("/", middleware.RequireRoles(
		user.RoleApplicant, user.RoleAdmin,
	), applicationCtrl.Store)

	applicationGroup.Get("/", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), applicationCtrl.Index)

	applicationGroup.Get("/my-applications", middleware.RequireRoles(
		user.RoleApplicant,
	), applicationCtrl.MyApplications)

	applicationGroup.Post("/upload-document/:type", middleware.RequireAuth(), applicationCtrl.UploadDocument)
	applicationGroup.Delete("/upload-document/:type", middleware.RequireAuth(), applicationCtrl.RemoveDocument)
	applicationGroup.Get("/documents/:applicationId", middleware.RequireAuth(), applicationCtrl.Documents)

	applicationGroup.Get("/:id", middleware.RequireAuth(), applicationCtrl.Show)

	applicationGroup.Patch("/:id", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), applicationCtrl.Update)

	applicationGroup.Patch("/:id/status", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), applicationCtrl.UpdateStatus)

	applicationGroup.Patch("/:id/verify-document", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), applicationCtrl.VerifyDocument)

	applicationGroup.Delete("/:id", middleware.RequireRoles(
		user.RoleAdmin,
	), applicationCtrl.Destroy)

	/*=============================================================================
	| Renewal Routes
	===============================================================================*/
	renewalGroup := api.Group("/renewal").Use(middleware.RequireAuth())
	renewalGroup.Post("/", renewalCtrl.Store)
	renewalGroup.Get("/", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), renewalCtrl.Index)
	renewalGroup.Get("/my-requests", renewalCtrl.My)
	renewalGroup.Get("/:id", renewalCtrl.Show)
	renewalGroup.Patch("/:id/status", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), renewalCtrl.UpdateStatus)
	renewalGroup.Post("/:id/documents/:type", renewalCtrl.UploadDocument)
	renewalGroup.Get("/:id/documents/:type", renewalCtrl.DocumentURL)
	renewalGroup.Delete("/:id/documents/:type", renewalCtrl.DeleteDocument)
	renewalGroup.Delete("/:id", middleware.RequireRoles(
		user.RoleAdmin,
	), renewalCtrl.Destroy)

	/*=============================================================================
	| Appointment Routes
	===============================================================================*/
	appointmentGroup := api.Group("/appointment").Use(middleware.RequireAuth())
	appointmentGroup.Post("/", appointmentCtrl.Store)
	appointmentGroup.Get("/", middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	), appointmentCtrl.Index)
	appointmentGroup.Get("/my-appointments", appointmentCtrl.My)
	appointmentGroup.Get("/available-slots", appointmentCtrl.AvailableSlots)
	appointmentGroup.Get("/:id", appointmentCtrl.Show)
	appointmentGroup.Patch("/:id", appointmentCtrl.Update)
	appointmentGroup.Patch("/:id/status", appointmentCtrl.UpdateStatus)
	appointmentGroup.Delete("/:id", appointmentCtrl.Destroy)

	/*=============================================================================
	| Stats Routes
	===============================================================================*/
	statsGroup := api.Group("/stats").Use(middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	))
	statsGroup.Get("/totals", statsCtrl.Totals)
	statsGroup.Get("/daily", statsCtrl.Daily)
	statsGroup.Get("/by-travel-document", statsCtrl.ByTravelDocument)
	statsGroup.Get("/by-district", statsCtrl.ByDistrict)

	/*=============================================================================
	| Document OCR Routes
	===============================================================================*/
	docaiGroup := api.Group("/docai").Use(middleware.RequireRoles(
		user.RoleAdmin, user.RoleManager,
	))
	docaiGroup.Post("/extract", docaiCtrl.Extract)

	/*=============================================================================
	| User Administration Routes
	===============================================================================*/
	userGroup := api.Group("/user").Use(middleware.RequireRoles(user.RoleAdmin))
	userGroup.Get("/", userCtrl.Index)
	userGroup.Patch("/:id/status", userCtrl.ChangeStatus)
	userGroup.Delete("/:id", userCtrl.Destroy)
}
