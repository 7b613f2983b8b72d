package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sales-kpi-bot/handlers"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"
	"sales-kpi-bot/utils"
	"sales-kpi-bot/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	// One live instance per deployment. Two bots answering the same chat
	// double-submit records.
	lockPath := os.Getenv("INSTANCE_LOCK_PATH")
	if lockPath == "" {
		lockPath = "/tmp/sales-kpi-bot.lock"
	}
	releaseLock, err := utils.AcquireInstanceLock(lockPath)
	if err != nil {
		log.Fatal("failed to acquire instance lock: ", err)
	}
	defer releaseLock()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitPhotoStorage(); err != nil {
		log.Fatal("failed to initialize photo storage: ", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.KPITarget{},
		&models.KPIRecord{},
		&models.AdminEntry{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	staticAdminIDs := parseAdminIDs(os.Getenv("ADMIN_USER_IDS"))
	if len(staticAdminIDs) == 0 {
		log.Println("⚠️  ADMIN_USER_IDS not set — only roster admins will have admin access")
	}

	userService := services.NewUserService(db)
	targetService := services.NewTargetService(db)
	recordService := services.NewRecordService(db)
	progressService := services.NewProgressService(userService, targetService, recordService)
	roleService := services.NewRoleService(db, staticAdminIDs)
	if err := roleService.Refresh(); err != nil {
		log.Fatal("failed to load admin roster: ", err)
	}

	conversationTTL := 10 * time.Minute
	if raw := os.Getenv("CONVERSATION_TTL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			conversationTTL = time.Duration(minutes) * time.Minute
		}
	}
	conversations := services.NewConversationManager(conversationTTL)

	sched := workers.StartMaintenanceScheduler(conversations, roleService)
	defer func() { _ = sched.Shutdown() }()

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // photos only
	})

	handlers.SetupHealthRoutes(app, db, conversations)
	handlers.SetupUserRoutes(app, userService, roleService)
	handlers.SetupTargetRoutes(app, targetService, roleService)
	handlers.SetupRecordRoutes(app, recordService, userService, roleService)
	handlers.SetupProgressRoutes(app, progressService, roleService)
	handlers.SetupAdminRoutes(app, roleService)
	handlers.SetupBotRoutes(app, &handlers.BotHandler{
		Users:         userService,
		Targets:       targetService,
		Records:       recordService,
		Progress:      progressService,
		Roles:         roleService,
		Conversations: conversations,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Admin cache loaded (%d static admin IDs)", len(staticAdminIDs))
	log.Printf("✅ Conversation TTL: %s", conversationTTL)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("⚠️  Ignoring invalid admin ID %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
