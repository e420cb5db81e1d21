package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trainingportal/config"
	"trainingportal/domain"
	attendanceDelivery "trainingportal/services/attendance/delivery"
	attendanceRepository "trainingportal/services/attendance/repository"
	attendanceUsecase "trainingportal/services/attendance/usecase"
	editionDelivery "trainingportal/services/edition/delivery"
	editionRepository "trainingportal/services/edition/repository"
	editionUsecase "trainingportal/services/edition/usecase"
	notificationDelivery "trainingportal/services/notification/delivery"
	notificationRepository "trainingportal/services/notification/repository"
	notificationUsecase "trainingportal/services/notification/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger
var wg sync.WaitGroup

func main() {
	log = config.GetLogrusInstance()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using process environment")
	}

	startHTTP()
}

func startHTTP() {
	log.Info("Starting HTTP")
	settings := config.LoadSettings()

	app := fiber.New(config.GetFiberConfig())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	db, err := config.BootDB()
	if err != nil {
		log.WithError(err).Fatal("Failed to boot DB")
		return
	}

	var sender domain.EmailSender
	dialer, emailSender, err := config.InitSMTPDialer()
	if err != nil {
		log.WithError(err).Warn("SMTP disabled, emails will be logged as failed")
		sender = notificationRepository.NewDisabledSender(err)
	} else {
		sender = notificationRepository.NewSenderRepository(dialer, *emailSender, config.GetAppName())
	}

	// Regis repo and Usecase Here
	transactor := editionRepository.NewTransactor(db)
	editionRepo := editionRepository.NewEditionRepository(db)
	cleanupRepo := editionRepository.NewEditionCleanupRepository(db)
	lessonRepo := editionRepository.NewLessonRepository(db)
	certificateFiles := editionRepository.NewLocalCertificateFiles(settings.CertificateDir)
	attendanceRepo := attendanceRepository.NewAttendanceRepository(db)
	notificationRepo := notificationRepository.NewNotificationRepository(db)
	preferenceRepo := notificationRepository.NewPreferenceRepository(db)
	emailLogRepo := notificationRepository.NewEmailLogRepository(db)

	mailer := notificationUsecase.NewMailer(sender, emailLogRepo, log, settings.MailWorkers, settings.MailQueueSize)
	mailer.Start()

	gate := notificationUsecase.NewPreferenceGate(preferenceRepo, log)
	dedup := notificationUsecase.NewDeduplicator(notificationRepo, log)
	dispatcher := notificationUsecase.NewDispatcher(notificationRepo, gate, dedup, mailer, settings.AdminEmails, config.GetAppName(), log)

	editionUC := editionUsecase.NewEditionUseCase(transactor, editionRepo, cleanupRepo, certificateFiles, dispatcher, log, settings.RequestTimeout)
	lessonUC := editionUsecase.NewLessonUseCase(transactor, editionRepo, lessonRepo, settings.RequestTimeout)
	attendanceUC := attendanceUsecase.NewAttendanceUseCase(editionRepo, lessonRepo, attendanceRepo, settings.MinAttendancePercentage, settings.RequestTimeout)
	certificateUC := attendanceUsecase.NewCertificateUseCase(transactor, editionRepo, attendanceRepo, attendanceUC, dispatcher, log, settings.RequestTimeout)
	notificationUC := notificationUsecase.NewNotificationUseCase(notificationRepo, settings.RequestTimeout)
	emailLogUC := notificationUsecase.NewEmailLogUseCase(emailLogRepo, settings.RequestTimeout)

	reminders := notificationUsecase.NewReminderJob(transactor, editionRepo, dispatcher, log)
	scheduler, err := notificationUsecase.StartReminderCron(settings.ReminderCron, reminders, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to schedule deadline reminders")
		return
	}

	// delivery here
	editionDelivery.NewEditionDeliveryDeploy(app, editionUC, lessonUC)
	attendanceDelivery.NewAttendanceDeliveryDeploy(app, attendanceUC, certificateUC)
	notificationDelivery.NewNotificationDeliveryDeploy(app, notificationUC, emailLogUC, gate)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("Starting HTTP server for Public on port %s", config.GetFiberHttpPort())
		if err := app.Listen(config.GetFiberListenAddress()); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	<-signalChan

	log.Info("Shutting down the server...")

	if err := app.Shutdown(); err != nil {
		log.Errorf("Error during server shutdown: %v", err)
	}

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	mailer.Stop(ctx)

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	wg.Wait()
	log.Info("Server shut down gracefully")
}
