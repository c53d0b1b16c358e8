// Package americanstandard exposes the edition service as Google Cloud
// Functions: an HTTP function serving the whole API and a CloudEvent
// function for Cloud Scheduler triggers.
package americanstandard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/pep299/american-standard/internal/application"
)

func init() {
	functions.HTTP("Edition", Edition)
	functions.CloudEvent("GenerateScheduled", GenerateScheduled)
}

// The application is built once per instance and reused across invocations
var (
	appOnce sync.Once
	app     *application.Application
	appErr  error
)

func loadApp() (*application.Application, error) {
	appOnce.Do(func() {
		app, appErr = application.Load(context.Background())
	})
	return app, appErr
}

// Edition is the HTTP function serving every API route
func Edition(w http.ResponseWriter, r *http.Request) {
	a, err := loadApp()
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	a.Handler().ServeHTTP(w, r)
}

// ScheduledEventData is the optional payload of a scheduler message
type ScheduledEventData struct {
	Force bool `json:"force"`
}

// GenerateScheduled runs generation from a Cloud Scheduler event. An empty
// payload means a normal, idempotent run.
func GenerateScheduled(ctx context.Context, e event.Event) error {
	var data ScheduledEventData
	if raw := e.Data(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to parse event data: %w", err)
		}
	}

	a, err := loadApp()
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	result := a.Editions.Generate(ctx, data.Force)
	if !result.Success {
		// the fallback edition is served, so the event is not retried
		if result.Stale {
			return nil
		}
		return fmt.Errorf("generation failed: %s", result.Error)
	}
	return nil
}
