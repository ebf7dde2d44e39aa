package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/franckalain/foodrescue/internal/client"
	"github.com/franckalain/foodrescue/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), timeout)
}

func newSubmitCmd() *cobra.Command {
	form := client.NewSubmissionForm()

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a surplus food submission",
		Long: `Records surplus food available for collection.

Example:
  foodrescue submit --food-type "Cooked Meals" --quantity 12 --location "Hall B"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, &form)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.FoodType, "food-type", "", "food category ("+strings.Join(models.FoodTypes, ", ")+")")
	f.StringVar(&form.Quantity, "quantity", "", "amount of food")
	f.StringVar(&form.Unit, "unit", models.DefaultUnit, "unit ("+strings.Join(models.Units, ", ")+")")
	f.StringVar(&form.Location, "location", "", "pickup location")
	f.StringVar(&form.EventType, "event-type", "", "event the food comes from")
	f.StringVar(&form.Notes, "notes", "", "additional notes")
	return cmd
}

func runSubmit(cmd *cobra.Command, form *client.SubmissionForm) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	sub, err := form.Submit(ctx, newClient())
	if err != nil {
		logger.Debug("Submission failed", zap.Error(err))
		return fmt.Errorf("%s: %w", client.UserMessage(client.OpSubmit, err), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, client.UserMessage(client.OpSubmit, nil))
	fmt.Fprintf(out, "ID: %s\n", sub.ID)
	return nil
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent food submissions",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

func runRecent(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	subs, err := newClient().RecentSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", client.UserMessage(client.OpLoad, err), err)
	}

	var feed client.Feed
	feed.Reset(subs)
	printFeed(cmd.OutOrStdout(), feed.Items())
	return nil
}

func printFeed(out io.Writer, subs []models.FoodSubmission) {
	if len(subs) == 0 {
		fmt.Fprintln(out, client.MsgNoSubmissionsYet)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFOOD\tQUANTITY\tLOCATION\tSTATUS\tCREATED")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%s\t%g %s\t%s\t%s\t%s\n",
			s.ID, s.FoodType, s.Quantity, s.Unit, s.Location, s.Status,
			s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

var ngosCmd = &cobra.Command{
	Use:   "ngos",
	Short: "List partner NGOs",
	Args:  cobra.NoArgs,
	RunE:  runNGOs,
}

func runNGOs(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	ngos, err := newClient().ListNGOs(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", client.UserMessage(client.OpLoad, err), err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tCAPACITY\tCONTACT")
	for _, n := range ngos {
		capacity := "-"
		if n.CapacityKg != nil {
			capacity = fmt.Sprintf("%g kg", *n.CapacityKg)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Name, n.Address, capacity, contactOf(n))
	}
	return w.Flush()
}

func contactOf(n *models.NGO) string {
	var parts []string
	if n.ContactPhone != nil {
		parts = append(parts, *n.ContactPhone)
	}
	if n.ContactEmail != nil {
		parts = append(parts, *n.ContactEmail)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func newPredictCmd() *cobra.Command {
	var form client.PredictionForm

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast food demand for an event",
		Long: `Asks the AI model for a demand forecast.

Example:
  foodrescue predict --event-type wedding --attendees 200 --day saturday`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, &form)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.EventType, "event-type", "", "event type ("+strings.Join(predictionEventValues(), ", ")+")")
	f.StringVar(&form.ExpectedAttendees, "attendees", "", "expected number of attendees")
	f.StringVar(&form.DayOfWeek, "day", "", "day of the week")
	return cmd
}

func predictionEventValues() []string {
	values := make([]string, len(models.PredictionEventTypes))
	for i, et := range models.PredictionEventTypes {
		values[i] = et.Value
	}
	return values
}

func runPredict(cmd *cobra.Command, form *client.PredictionForm) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	result, err := form.Predict(ctx, newClient())
	if err != nil {
		logger.Debug("Prediction failed", zap.Error(err))
		return fmt.Errorf("%s: %w", client.UserMessage(client.OpPredict, err), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, client.UserMessage(client.OpPredict, nil))
	fmt.Fprintf(out, "Predicted demand: %.1f kg\n", result.PredictedDemand)
	fmt.Fprintf(out, "Confidence: %.0f%%\n", result.Confidence)
	fmt.Fprintln(out, "Recommendations:")
	for i, r := range result.Recommendations {
		fmt.Fprintf(out, "  %d. %s\n", i+1, r)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status [id] [available|claimed|collected]",
	Short: "Change the status of a submission",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	status := models.SubmissionStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", args[1])
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	sub, err := newClient().UpdateStatus(ctx, args[0], status)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", sub.ID, sub.Status)
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow new food submissions as they arrive",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newClient()
	out := cmd.OutOrStdout()

	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	subs, err := c.RecentSubmissions(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("%s: %w", client.UserMessage(client.OpLoad, err), err)
	}

	var feed client.Feed
	feed.Reset(subs)
	printFeed(out, feed.Items())

	err = c.Subscribe(ctx, func(e client.Event) {
		logger.Debug("Realtime event", zap.String("type", e.Type), zap.String("id", e.Data.ID))
		applyEvent(out, &feed, e)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// applyEvent folds e into the feed, then prints the event and the updated list
func applyEvent(out io.Writer, feed *client.Feed, e client.Event) {
	feed.Apply(e)
	fmt.Fprintf(out, "\n[%s] %s: %g %s of %s at %s (%s)\n",
		e.Type, e.Data.ID, e.Data.Quantity, e.Data.Unit, e.Data.FoodType, e.Data.Location, e.Data.Status)
	printFeed(out, feed.Items())
}
