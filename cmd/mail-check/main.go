package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/subosito/gotenv"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/config"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/notify"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/pkg/utils"
)

// Sends one test email through the configured SMTP relay. Use it to verify
// mail settings before pointing the outbox worker at a new relay.
func main() {
	fmt.Println("=== SMTP Delivery Check ===")
	fmt.Println()

	if len(os.Args) < 2 {
		fmt.Println("usage: mail-check <recipient-address>")
		os.Exit(1)
	}
	recipient := os.Args[1]

	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Relay: %s:%d\n", cfg.Mail.Host, cfg.Mail.Port)
	fmt.Printf("From:  %s\n", cfg.Mail.From)
	fmt.Printf("To:    %s\n", recipient)
	fmt.Println()

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "debug", Format: "console"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to build mailer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = mailer.Send(ctx, port.MailMessage{
		To:      []string{recipient},
		Subject: "Travel approval service SMTP check",
		Body:    "Talofa,\n\nThis is a test message from the travel approval service. If you can read this, outgoing mail is configured correctly.\n",
	})
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message accepted by relay.")
}
