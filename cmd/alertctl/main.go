package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/alertctl"
	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/config"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("alertctl"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}
	logger := zerolog.Nop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout()+5*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "teams":
		fs := flag.NewFlagSet("teams", flag.ExitOnError)
		url := fs.String("url", cfg.PublicURL, "Dashboard base URL")
		fs.Parse(os.Args[2:])

		client := alerting.NewClient(alerting.Config{BaseURL: *url, Timeout: cfg.BackendTimeout()}, cfg.Location(), logger)
		if err := alertctl.Teams(ctx, client, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "incidents":
		fs := flag.NewFlagSet("incidents", flag.ExitOnError)
		url := fs.String("url", cfg.PublicURL, "Dashboard base URL")
		team := fs.String("team", "", "Team ID (required)")
		rangeFlag := fs.String("range", view.DefaultRange, "Range preset: 7d, 30d or 90d")
		sinceFlag := fs.String("since", "", "First day, YYYY-MM-DD (overrides -range)")
		untilFlag := fs.String("until", "", "Last day, YYYY-MM-DD (default today)")
		urgency := fs.String("urgency", "", "Only show high or low urgency incidents")
		fs.Parse(os.Args[2:])

		if *team == "" {
			fmt.Fprintln(os.Stderr, "Error: -team flag is required")
			fs.Usage()
			os.Exit(1)
		}
		if *urgency != "" && *urgency != string(model.UrgencyHigh) && *urgency != string(model.UrgencyLow) {
			fmt.Fprintln(os.Stderr, "Error: -urgency must be high or low")
			os.Exit(1)
		}

		since, until, err := dateRange(cfg, *rangeFlag, *sinceFlag, *untilFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		client := alerting.NewClient(alerting.Config{BaseURL: *url, Timeout: cfg.BackendTimeout()}, cfg.Location(), logger)
		opts := alertctl.IncidentsOptions{Team: *team, Since: since, Until: until, Urgency: model.Urgency(*urgency)}
		if err := alertctl.Incidents(ctx, client, os.Stdout, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "annotate":
		fs := flag.NewFlagSet("annotate", flag.ExitOnError)
		backendURL := fs.String("backend", cfg.BackendURL, "Alerting backend base URL")
		incident := fs.String("incident", "", "Incident ID (required)")
		team := fs.String("team", "", "Team ID (required)")
		text := fs.String("text", "", "Annotation text")
		fs.Parse(os.Args[2:])

		if *incident == "" || *team == "" {
			fmt.Fprintln(os.Stderr, "Error: -incident and -team flags are required")
			fs.Usage()
			os.Exit(1)
		}

		tlsConfig, err := cfg.BackendTLS()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		backendCfg := alerting.Config{BaseURL: *backendURL, Timeout: cfg.BackendTimeout(), TLS: tlsConfig}
		backend := alerting.NewBackend(backendCfg, alerting.Endpoints{Annotation: cfg.AnnotationEndpoint}, logger)
		if err := alertctl.Annotate(ctx, backend, os.Stdout, *incident, *team, *text); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func dateRange(cfg *config.Config, preset, sinceFlag, untilFlag string) (time.Time, time.Time, error) {
	loc := cfg.Location()
	since, until, err := view.RangeBounds(preset, time.Now(), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if untilFlag != "" {
		if until, err = view.ParseDate(untilFlag, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if sinceFlag != "" {
		if since, err = view.ParseDate(sinceFlag, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if until.Before(since) {
		return time.Time{}, time.Time{}, fmt.Errorf("-until must not be before -since")
	}
	return since, until, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  alertctl teams [-url URL]
  alertctl incidents -team <id> [-range 7d|30d|90d] [-since YYYY-MM-DD] [-until YYYY-MM-DD] [-urgency high|low]
  alertctl annotate -incident <id> -team <id> -text <note>

Commands:
  teams       List teams known to the alerting backend
  incidents   Print a team's incidents consolidated by title
  annotate    Save an annotation on an incident

Flags:
  -url string       Dashboard base URL (default: PUBLIC_URL)
  -backend string   Alerting backend base URL (default: BACKEND_URL)`)
}
