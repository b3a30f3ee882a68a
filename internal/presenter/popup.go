package presenter

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/models"
)

// DetailsFetcher loads the extended fields of a place.
type DetailsFetcher interface {
	Details(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// MsgNoDetails is shown in the minimal popup when details cannot be fetched.
const MsgNoDetails = "No se pudieron obtener más detalles."

const notAvailable = "N/A"

var popupTmpl = template.Must(template.New("popup").Parse(`{{define "full"}}<h3>{{or .Name "N/A"}}</h3>
<p><strong>Dirección:</strong> {{or .Address "N/A"}}</p>
{{if .Rating}}<p><strong>Rating:</strong> {{printf "%.1f" .Rating}} ({{.UserRatingsTotal}} reviews)</p>
{{else}}<p><strong>Rating:</strong> N/A</p>
{{end}}<p><strong>Teléfono:</strong> {{or .Phone "N/A"}}</p>
{{if .Website}}<p><strong>Website:</strong> <a href="{{.Website}}" target="_blank">{{.Website}}</a></p>
{{end}}{{if .HasHours}}<p><strong>Horario:</strong> {{.OpenLabel}}</p>
<ul>{{range .WeekdayText}}<li>{{.}}</li>{{end}}</ul>
{{end}}{{end}}{{define "minimal"}}<h3>{{or .Name "N/A"}}</h3><p>{{.Message}}</p>{{end}}`))

type popupView struct {
	models.PlaceDetails
	HasHours  bool
	OpenLabel string
}

// PopupRenderer builds the info window shown when a marker is clicked.
type PopupRenderer struct {
	fetcher DetailsFetcher
	metrics *metrics.Metrics
	log     *slog.Logger
	timeout time.Duration
}

// NewPopupRenderer creates a PopupRenderer. A zero timeout leaves detail fetches unbounded.
func NewPopupRenderer(
	fetcher DetailsFetcher,
	metrics *metrics.Metrics,
	timeout time.Duration,
	log *slog.Logger,
) *PopupRenderer {
	return &PopupRenderer{fetcher: fetcher, metrics: metrics, timeout: timeout, log: log}
}

// Render fetches details for placeID and writes the popup. When the fetch
// fails it writes the minimal popup with fallbackName instead.
func (p *PopupRenderer) Render(ctx context.Context, w io.Writer, placeID, fallbackName string) error {
	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	startTime := time.Now()
	details, err := p.fetcher.Details(fetchCtx, placeID)
	p.metrics.RequestSeconds.WithLabelValues("place_details").Observe(time.Since(startTime).Seconds())

	if err != nil || details == nil {
		p.metrics.APIErrors.WithLabelValues("place_details").Inc()
		p.log.WarnContext(ctx, "Error fetching place details, rendering minimal popup",
			"place_id", placeID, "error", err)

		return p.RenderMinimal(w, fallbackName)
	}

	view := popupView{PlaceDetails: *details}
	if details.OpenNow != nil || len(details.WeekdayText) > 0 {
		view.HasHours = true
		view.OpenLabel = notAvailable
		if details.OpenNow != nil {
			view.OpenLabel = "Cerrado ahora"
			if *details.OpenNow {
				view.OpenLabel = "Abierto ahora"
			}
		}
	}

	return p.execute(w, "full", view)
}

// RenderMinimal writes the name-only popup used when no details are available.
func (p *PopupRenderer) RenderMinimal(w io.Writer, name string) error {
	return p.execute(w, "minimal", struct {
		Name    string
		Message string
	}{name, MsgNoDetails})
}

func (p *PopupRenderer) execute(w io.Writer, name string, data any) error {
	if err := popupTmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render popup: %w", err)
	}

	return nil
}
