// Command idcrenew logs in to every configured 56idc account once, to
// keep the accounts active, and reports the outcome via Telegram and
// the process exit code. Scheduling is external: cron (or any runner)
// invokes the binary, one pass per invocation.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"idcrenew/internal/api"
	"idcrenew/internal/auth"
	"idcrenew/internal/browser"
	"idcrenew/internal/config"
	"idcrenew/internal/runner"
	"idcrenew/internal/session"
	"idcrenew/internal/summary"
	"idcrenew/internal/telegram"
	"idcrenew/internal/totp"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Println("🚀 Starting 56idc renewal run...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Println("❌ Config error:", err)
		return 1
	}
	log.Printf("✓ Loaded configuration: %d account(s)", len(cfg.Accounts))

	// An interrupt lets the in-flight account tear down, then skips the
	// rest instead of leaving an orphaned browser behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("📋 Initializing browser allocator...")
	allocCtx, allocCancel := browser.NewAllocator(ctx, cfg.Headless)
	defer allocCancel()

	httpClient := api.NewHTTPClient(cfg.HTTPTimeout)

	flow := &auth.Flow{
		Store:                 session.NewStore(cfg.SessionDir),
		Codes:                 totp.NewProvider(cfg.TOTPAPIURL, httpClient),
		LoginURL:              cfg.LoginURL,
		DashboardURL:          cfg.DashboardURL,
		StayDuration:          cfg.StayDuration,
		ChallengeTimeout:      cfg.ChallengeTimeout,
		ChallengePollInterval: cfg.ChallengePollInterval,
	}

	orch := &runner.Orchestrator{
		Timeout: cfg.AccountTimeout,
		Gap:     cfg.AccountGap,
		Login: func(ctx context.Context, acct config.Account) error {
			page, cancel := browser.NewTab(allocCtx, cfg.AccountTimeout, cfg.NavigationTimeout)
			defer cancel()

			// Tear the tab down as soon as the account budget or an
			// interrupt cancels the run context.
			release := context.AfterFunc(ctx, cancel)
			defer release()

			return flow.Run(ctx, page, acct)
		},
	}

	sum := orch.Run(ctx, cfg.Accounts)

	log.Println("═══════════════════════════════════════════")
	for _, r := range sum.Results {
		symbol := "✗"
		if r.Status == runner.StatusSuccess {
			symbol = "✓"
		}
		log.Printf("%s %s: %s %s", symbol, r.Email, r.Status, r.Detail)
	}
	log.Printf("📊 Done: %d succeeded, %d failed", sum.Succeeded(), sum.Failed())

	notify(cfg, sum, httpClient)

	if !sum.AllSucceeded() {
		return 1
	}
	return 0
}

// notify pushes the summary to Telegram. Delivery problems are logged
// and swallowed; the exit code is the only machine-readable signal.
func notify(cfg *config.Config, sum *runner.Summary, httpClient *http.Client) {
	tg := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, httpClient)
	if !tg.Enabled() {
		return
	}

	if cfg.SummaryImage {
		if png, err := summary.Render(sum.Results); err != nil {
			log.Println("⚠️  Failed to render summary image:", err)
		} else if err := tg.SendPhoto(sum.Text(), png); err != nil {
			log.Println("⚠️  Failed to send summary photo:", err)
		} else {
			return
		}
	}

	if err := tg.SendMessage(sum.Text()); err != nil {
		log.Println("⚠️  Failed to send summary message:", err)
	}
}
