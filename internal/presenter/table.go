package presenter

import (
	"fmt"
	"html/template"
	"io"

	"github.com/UnknownOlympus/vicinity/internal/geo"
	"github.com/UnknownOlympus/vicinity/internal/models"
)

// Messages rendered as a single row spanning the whole table.
const (
	MsgNoMatches    = "No se encontraron negocios con los criterios especificados."
	MsgNoneInRadius = "No se encontraron negocios dentro del radio especificado."
	MsgUnexpected   = "Ocurrió un error inesperado al realizar la búsqueda."
)

// Table headers.
const (
	HeaderName     = "Negocio"
	HeaderDistance = "Distancia (aprox.)"
)

// Row is one table line. A row with Message set spans both columns.
type Row struct {
	Name     string `json:"name,omitempty"`
	Distance string `json:"distance,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Table is the two-column results table. A nil rows slice means the table does not exist.
type Table struct {
	rows []Row
}

var tableTmpl = template.Must(template.New("table").Parse(
	`<table><thead><tr><th>{{.NameHeader}}</th><th>{{.DistanceHeader}}</th></tr></thead><tbody>` +
		`{{range .Rows}}{{if .Message}}<tr><td colspan="2" style="text-align: center">{{.Message}}</td></tr>` +
		`{{else}}<tr><td>{{.Name}}</td><td>{{.Distance}}</td></tr>{{end}}{{end}}</tbody></table>`))

// Create replaces any existing table with an empty one.
func (t *Table) Create() {
	t.rows = []Row{}
}

// Exists reports whether the table has been created.
func (t *Table) Exists() bool {
	return t.rows != nil
}

// AddRow appends a row with the distance from center to place. The table is
// created when missing. Places without geometry are skipped.
func (t *Table) AddRow(place models.Place, center models.Location) bool {
	if place.Location == nil {
		return false
	}
	if !t.Exists() {
		t.Create()
	}

	distance := geo.Haversine(center, *place.Location)
	t.rows = append(t.rows, Row{Name: place.Name, Distance: FormatDistance(distance)})

	return true
}

// AddMessage appends an informational row spanning both columns.
func (t *Table) AddMessage(msg string) {
	if !t.Exists() {
		t.Create()
	}
	t.rows = append(t.rows, Row{Message: msg})
}

// Clear removes the table entirely.
func (t *Table) Clear() {
	t.rows = nil
}

// Rows returns a copy of the table rows.
func (t *Table) Rows() []Row {
	if t.rows == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	copy(out, t.rows)

	return out
}

// Render writes the table as HTML. Nothing is written when the table does not exist.
func (t *Table) Render(w io.Writer) error {
	if !t.Exists() {
		return nil
	}

	return RenderRows(w, t.rows)
}

// RenderRows writes rows as a results table.
func RenderRows(w io.Writer, rows []Row) error {
	err := tableTmpl.Execute(w, struct {
		NameHeader     string
		DistanceHeader string
		Rows           []Row
	}{HeaderName, HeaderDistance, rows})
	if err != nil {
		return fmt.Errorf("failed to render results table: %w", err)
	}

	return nil
}

// FormatDistance formats meters the way the table shows them.
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.2f Metros", meters)
}
