package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payreg-engine/internal/handler/http"
	"github.com/cmlabs-hris/payreg-engine/internal/jobs"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payreg-engine/internal/repository/postgresql"
	dutyService "github.com/cmlabs-hris/payreg-engine/internal/service/duty"
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
	monthlyRecordRepo := postgresql.NewMonthlyRecordRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	attendanceImporter := postgresql.NewAttendanceImporter(db)
	officialDutyRepo := postgresql.NewOfficialDutyRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	payRegisterRepo := postgresql.NewPayRegisterRepository(db)
	txManager := postgresql.NewTxManager(db)

	clk := clock.System()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	dateService := daterange.NewService(settingRepo, clk, 30*time.Second)

	enqueuer := jobs.NewEnqueuer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer enqueuer.Close()

	natureResolver := leaveService.NewNatureResolver(leaveTypeRepo)
	monthlySvc := leaveService.NewMonthlyService(monthlyRecordRepo, leaveRequestRepo, leaveSplitRepo, employeeRepo, natureResolver, clk)
	splitSvc := leaveService.NewSplitService(txManager, leaveRequestRepo, leaveSplitRepo, leaveTypeRepo, natureResolver, monthlySvc, clk)
	requestSvc := leaveService.NewRequestService(leaveRequestRepo, employeeRepo, monthlySvc, enqueuer, clk)
	dutySvc := dutyService.NewDutyService(officialDutyRepo, overtimeRepo, enqueuer, clk)
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

	leaveHandler := appHTTP.NewLeaveHandler(requestSvc, splitSvc, monthlySvc)
	payrollHandler := appHTTP.NewPayrollHandler(registerSvc, syncSvc)
	dutyHandler := appHTTP.NewDutyHandler(dutySvc)
	settingsHandler := appHTTP.NewSettingsHandler(settingRepo, dateService)

	router := appHTTP.NewRouter(
		JWTService,
		leaveHandler,
		payrollHandler,
		dutyHandler,
		settingsHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
