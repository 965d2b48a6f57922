package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/config"
	"github.com/cmlabs-hris/payreg-engine/internal/jobs"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/payreg-engine/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/payreg-engine/internal/service/leave"
	payrollService "github.com/cmlabs-hris/payreg-engine/internal/service/payroll"
	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	settingRepo := postgresql.NewSettingRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveSplitRepo := postgresql.NewLeaveSplitRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	attendanceImporter := postgresql.NewAttendanceImporter(db)
	officialDutyRepo := postgresql.NewOfficialDutyRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	payRegisterRepo := postgresql.NewPayRegisterRepository(db)

	clk := clock.System()
	dateService := daterange.NewService(settingRepo, clk, 30*time.Second)
	natureResolver := leaveService.NewNatureResolver(leaveTypeRepo)
	registerSvc := payrollService.NewRegisterService(
		dateService,
		payRegisterRepo,
		attendanceRepo,
		attendanceImporter,
		leaveRequestRepo,
		leaveSplitRepo,
		officialDutyRepo,
		overtimeRepo,
		rosterRepo,
		natureResolver,
		clk,
	)
	syncSvc := payrollService.NewSyncService(dateService, payRegisterRepo, registerSvc, overtimeRepo)

	syncJobs := jobs.NewSyncJobs(syncSvc, employeeRepo, clk, logger)

	resyncCron := os.Getenv("RESYNC_CRON")
	if resyncCron == "" {
		resyncCron = "0 2 * * *"
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Jobs:       syncJobs,
		Logger:     logger,
		ResyncCron: resyncCron,
	})
	if err != nil {
		fmt.Println("Error building worker:", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		fmt.Println("Worker error:", err)
	}
}
