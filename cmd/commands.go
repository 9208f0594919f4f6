package main

import (
	"cine-grid/config"
	"cine-grid/fetcher"
	"cine-grid/grid"
	"cine-grid/notifier"
	"cine-grid/render"
	"cine-grid/scheduler"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

type flags struct {
	configPath string
	envFile    string
	username   string
	year       int
	format     string
	output     string
	source     string
	notify     bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:          "cine-grid",
		Short:        "Render a movie diary as a poster grid grouped by rating",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f.envFile != "" {
				return config.LoadEnvFile(f.envFile)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&f.configPath, "config", config.GetConfigPath(), "path to a YAML config file")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", "extra .env file to load")
	root.PersistentFlags().StringVarP(&f.username, "username", "u", "", "Letterboxd username")
	root.PersistentFlags().IntVarP(&f.year, "year", "y", 0, "diary year (defaults to the current year)")
	root.PersistentFlags().StringVar(&f.source, "source", "", "review source: endpoint or diary")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the diary once and write the chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, f.notify)
		},
	}
	renderCmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: html, json or text")
	renderCmd.Flags().StringVarP(&f.output, "output", "o", "", "output path, or - for stdout")
	renderCmd.Flags().BoolVar(&f.notify, "notify", false, "email the chart when email is configured")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Rebuild the chart on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runScheduler(cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print cine-grid version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cine-grid version %s\n", version)
		},
	}

	testEmailCmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a sample chart to verify the email configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return sendTestEmail(cfg)
		},
	}

	root.AddCommand(renderCmd, scheduleCmd, testEmailCmd, versionCmd)
	return root
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	var opts []config.Option
	if cmd.Flags().Changed("username") {
		opts = append(opts, config.WithUsername(f.username))
	}
	if cmd.Flags().Changed("year") {
		opts = append(opts, config.WithYear(f.year))
	}
	if cmd.Flags().Changed("source") {
		opts = append(opts, config.WithSource(f.source))
	}
	if cmd.Flags().Changed("format") {
		opts = append(opts, config.WithFormat(f.format))
	}
	if cmd.Flags().Changed("output") {
		opts = append(opts, config.WithOutput(f.output))
	}
	return config.Load(f.configPath, opts...)
}

// newRefreshJob wires the source, renderer and optional notifier for cfg
func newRefreshJob(cfg *config.Config, notify bool) (*scheduler.RefreshJob, error) {
	source, err := fetcher.New(cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := render.ForFormat(cfg.Format, render.Options{
		Title:       render.Title(cfg.Username, cfg.Year),
		CanvasWidth: cfg.CanvasWidth,
	})
	if err != nil {
		return nil, err
	}

	var chartNotifier scheduler.ChartNotifier
	if notify && cfg.Email.Enabled() {
		emailNotifier, err := notifier.NewEmailNotifier(cfg.Email)
		if err != nil {
			log.Printf("Failed to create email notifier: %v", err)
		} else {
			chartNotifier = emailNotifier
			log.Printf("Email notifications will be sent to: %s", cfg.Email.RecipientEmail)
		}
	} else if notify {
		log.Println("Email notifications disabled: missing configuration")
	}

	return scheduler.NewRefreshJob(source, renderer, chartNotifier, scheduler.RefreshOptions{
		Username:   cfg.Username,
		Year:       cfg.Year,
		OutputPath: cfg.OutputPath,
		Layout: grid.LayoutOptions{
			NewestFirst: cfg.NewestFirst,
			CanvasWidth: cfg.CanvasWidth,
		},
	}), nil
}

func runOnce(ctx context.Context, cfg *config.Config, notify bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout())
	defer cancel()

	job, err := newRefreshJob(cfg, notify)
	if err != nil {
		return err
	}
	return job.Run(ctx)
}

func sendTestEmail(cfg *config.Config) error {
	emailNotifier, err := notifier.NewEmailNotifier(cfg.Email)
	if err != nil {
		return err
	}

	sample := grid.BuildLayout([]grid.Review{
		{Title: "Test Film", Rating: "10", Link: "/" + cfg.Username + "/"},
	}, grid.LayoutOptions{CanvasWidth: cfg.CanvasWidth})

	log.Println("Attempting to send test email...")
	if err := emailNotifier.NotifyChart(cfg.Username, cfg.Year, sample); err != nil {
		return err
	}
	log.Println("Email sent successfully!")
	return nil
}

func runScheduler(cfg *config.Config) error {
	job, err := newRefreshJob(cfg, true)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(cfg.JobTimeout())
	if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	sched.Start()
	log.Printf("Scheduler started. Chart for %s (%d) refreshes on %q", cfg.Username, cfg.Year, cfg.RefreshSchedule)

	if cfg.RunAtStartup {
		log.Println("Running initial refresh at startup")
		if err := sched.RunJobNow(job.Name()); err != nil {
			log.Printf("Error running initial job: %v", err)
		}
	}

	// Set up signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Application running. Press Ctrl+C to exit")
	sig := <-quit
	log.Printf("Received signal %s, shutting down...", sig)

	sched.Stop()
	return nil
}
