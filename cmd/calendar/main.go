package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evanpr/kalender/internal/app"
	"github.com/evanpr/kalender/internal/holiday"
	"github.com/evanpr/kalender/internal/logger"
	"github.com/evanpr/kalender/internal/push"
	"github.com/evanpr/kalender/internal/rabbit"
	"github.com/evanpr/kalender/internal/reminder"
	internalhttp "github.com/evanpr/kalender/internal/server/http"
	"github.com/evanpr/kalender/internal/storage"
	"github.com/evanpr/kalender/internal/storagebuilder"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		printVersion()
		return
	}

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	inbound := rabbit.New(config.Rabbit, config.Queues.Inbound)
	outbound := rabbit.New(config.Rabbit, config.Queues.Outbound)
	notify := rabbit.New(config.Rabbit, config.Queues.Notify)
	for _, provider := range []*rabbit.Provider{inbound, outbound, notify} {
		if err := provider.Connect(); err != nil {
			log.Errorf("failed to connect to rabbit: %v", err)
			return
		}
	}
	defer inbound.Close()
	defer outbound.Close()
	defer notify.Close()

	reminders := reminder.New(func(e storage.Event) {
		data, err := json.Marshal(rabbit.ReminderMessage{ID: e.ID, Title: e.Title, Time: e.StartTime})
		if err != nil {
			log.Errorf("failed to marshal reminder: %v", err)
			return
		}
		if err := notify.Publish(data); err != nil {
			log.Errorf("failed to publish reminder: %v", err)
		}
	})
	defer reminders.Stop()

	calendar := app.New(stor, reminders, outbound, holiday.NewFetcher(config.Holiday))
	server := internalhttp.NewServer(config.HTTPServer, calendar)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	// Initial holiday load; failure keeps an empty set and is logged only.
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	calendar.SetYear(loadCtx, time.Now().Year()) //nolint:errcheck
	loadCancel()

	refresher := cron.New()
	if _, err := refresher.AddFunc(config.HolidayRefreshSpec, func() {
		refreshCtx, refreshCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer refreshCancel()
		calendar.RefreshHolidays(refreshCtx) //nolint:errcheck
	}); err != nil {
		log.Errorf("failed to schedule holiday refresh: %v", err)
		return
	}
	refresher.Start()
	defer refresher.Stop()

	listener := push.NewListener(inbound, calendar)
	go func() {
		if err := listener.Listen(ctx); err != nil {
			log.Errorf("push listener stopped: %v", err)
			cancel()
		}
	}()

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("failed to stop http server: " + err.Error())
		}
	}()

	log.Info("calendar is running...")

	if err := server.Start(ctx); err != nil {
		log.Error("failed to start http server: " + err.Error())
		cancel()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		if err := stor.Close(ctx); err != nil {
			log.Errorf("failed to close storage: %v", err)
		}
		os.Exit(1) //nolint:gocritic
	}
	ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := stor.Close(ctx); err != nil {
		log.Errorf("failed to close storage: %v", err)
	}
}
