package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/spf13/cobra"

	"mealsnap/capture"
	"mealsnap/config"
	"mealsnap/di"
	services "mealsnap/service"
	"mealsnap/session"
	"mealsnap/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env, logLevel string

	root := &cobra.Command{
		Use:           "mealsnap",
		Short:         "Snap, analyze and log your meals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&env, "env", "", "environment: prod|dev|local (default from MEALSNAP_ENV)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default from MEALSNAP_LOG_LEVEL)")

	load := func(ctx context.Context) (*di.Container, error) {
		settings := config.Load()
		if env != "" {
			settings.Env = env
		}
		if logLevel != "" {
			settings.LogLevel = logLevel
		}
		setupLogging(settings.LogLevel)
		return di.NewContainer(ctx, settings)
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newLoginCmd(load))
	root.AddCommand(newLogoutCmd(load))
	root.AddCommand(newSnapCmd(load))
	root.AddCommand(newMealsCmd(load))
	root.AddCommand(newWeekCmd(load))
	root.AddCommand(newProfileCmd(load))
	return root
}

type loader func(ctx context.Context) (*di.Container, error)

func setupLogging(level string) {
	log.SetHandler(text.New(os.Stderr))
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := load(ctx)
			if err != nil {
				return err
			}
			defer c.MealFlowService.Close()

			if c.AuthService.IsAuthenticated() {
				_ = c.MealHistoryRefresherService.RunOnce(ctx)
			}
			interval := time.Duration(c.Settings.HistoryRefreshMinutes) * time.Minute
			c.MealHistoryRefresherService.StartPeriodicJob(ctx, interval)

			return c.MealSnapHttpServer.Start(ctx)
		},
	}
}

func newLoginCmd(load loader) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the food log backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			if _, err := c.AuthService.Login(ctx, email, password); err != nil {
				return fmt.Errorf("%s", services.LoginErrorMessage(err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := load(context.Background())
			if err != nil {
				return err
			}
			if err := c.AuthService.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newSnapCmd(load loader) *cobra.Command {
	var useCamera, save bool
	cmd := &cobra.Command{
		Use:   "snap [photo]",
		Short: "Analyze a meal photo and optionally save it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			if err := requireLogin(c); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			flow := c.MealFlowService
			defer flow.Close()

			sess := flow.Session()
			sess.Open()
			switch {
			case useCamera:
				_ = sess.CaptureFromCamera(ctx)
			case len(args) == 1:
				_ = sess.Select(ctx, capture.NewFileSource(capture.PathPicker{Paths: args}))
			default:
				return fmt.Errorf("give a photo path or --camera")
			}
			state := sess.State()
			if state.Status != session.Ready {
				if state.Message != "" {
					return fmt.Errorf("%s", state.Message)
				}
				return fmt.Errorf("no photo selected")
			}
			_, _ = fmt.Fprintf(out, "photo %s ready (%d bytes, %s)\n", state.Image.FileName, len(state.Image.Data), state.Image.MimeType)

			img := state.Image
			sess.Close()
			if err := flow.Analyze(ctx, img); err != nil {
				return fmt.Errorf("%s", flow.Store().Snapshot().Error)
			}
			analysis := flow.Store().Snapshot().Analysis
			_, _ = fmt.Fprintf(out, "meal: %s\n", analysis.MealName)
			if analysis.Calories != nil {
				_, _ = fmt.Fprintf(out, "calories: %v\n", analysis.Calories)
			} else {
				_, _ = fmt.Fprintln(out, "calories: calculating...")
			}
			for _, ingredient := range analysis.Ingredients {
				_, _ = fmt.Fprintf(out, "  - %s\n", ingredient)
			}

			review := flow.Review()
			if !save {
				review.Cancel()
				return nil
			}
			if !review.Mount() {
				return fmt.Errorf("nothing to save")
			}
			if err := review.Save(ctx); err != nil {
				return fmt.Errorf("%s", flow.Store().Snapshot().Error)
			}
			_, _ = fmt.Fprintln(out, "saved")
			return nil
		},
	}
	cmd.Flags().BoolVar(&useCamera, "camera", false, "take the photo with the configured camera")
	cmd.Flags().BoolVar(&save, "save", false, "save the analyzed meal")
	return cmd
}

func newMealsCmd(load loader) *cobra.Command {
	var recent bool
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "List saved meals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			if err := requireLogin(c); err != nil {
				return err
			}
			if err := c.MealHistoryService.Refresh(ctx); err != nil {
				return fmt.Errorf("%s", c.MealHistoryService.State().Error)
			}
			meals := c.MealHistoryService.Meals()
			rows := util.TableRows(meals, time.Local, c.FoodLogAPI.ResolveImage)
			if recent {
				rows = util.RecentMeals(meals, util.RECENT_MEALS, time.Local, c.FoodLogAPI.ResolveImage)
			}
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No meals saved yet.")
				return nil
			}
			return printMeals(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().BoolVar(&recent, "recent", false, "only the three most recent meals")
	return cmd
}

func printMeals(w io.Writer, rows []util.MealView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MEAL NAME\tCALORIES\tDATE\tIMAGE")
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s kcal\t%s\t%s\n", row.Name, row.Calories, row.Date, row.Image)
	}
	return tw.Flush()
}

func newWeekCmd(load loader) *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show calories per weekday for the last seven days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			if err := requireLogin(c); err != nil {
				return err
			}
			if err := c.MealHistoryService.Refresh(ctx); err != nil {
				log.Warnf("showing cached history: %v", err)
			}
			series := c.MealHistoryService.WeeklySeries(time.Now())
			if chartPath != "" {
				f, err := os.Create(chartPath)
				if err != nil {
					return fmt.Errorf("failed to create chart file: %w", err)
				}
				defer f.Close()
				if err := util.RenderWeeklyChart(f, series); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "weekly chart written to %s\n", chartPath)
				return nil
			}
			for i, label := range util.WEEKDAY_LABELS {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %6.0f\n", label, series[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "write an HTML chart to this path")
	return cmd
}

func newProfileCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the user profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			if err := requireLogin(c); err != nil {
				return err
			}
			profile, err := c.AuthService.Profile(ctx)
			out := cmd.OutOrStdout()
			if err != nil {
				_, _ = fmt.Fprintln(out, services.ProfileErrorMessage(err))
			}
			_, _ = fmt.Fprintf(out, "%s\nEmail: %s\nAge: %v\nWeight: %v kg\nGoal: %s\n",
				profile.Name, profile.Email, profile.Age, profile.Weight, profile.Goal)
			return nil
		},
	}
}

func requireLogin(c *di.Container) error {
	if !c.AuthService.IsAuthenticated() {
		return fmt.Errorf("not signed in; run `mealsnap login` first")
	}
	return nil
}
