// Package pdf implementa el reporte de avance de un proyecto en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Organización + subdominio │ Proyecto + fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: estado / creador / avance (done de total, %)       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Título | Estado | Actualizada                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR al proyecto (si hay URL base) + leyenda          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDone    = &props.Color{Red: 22, Green: 163, Blue: 74}
)

var statusLabels = map[string]string{
	entity.TaskStatusTodo:        "Por hacer",
	entity.TaskStatusInProgress:  "En progreso",
	entity.TaskStatusDone:        "Hecha",
	entity.ProjectStatusActive:   "Activo",
	entity.ProjectStatusArchived: "Archivado",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ports.ProjectReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	baseURL string // URL pública del frontend; vacío = sin QR
	now     func() time.Time
}

var _ ports.ProjectReportGenerator = (*MarotoReportGenerator)(nil)

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator(baseURL string) *MarotoReportGenerator {
	return &MarotoReportGenerator{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// GenerateProjectReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateProjectReport(ctx context.Context, report ports.ProjectReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if report.Tenant == nil || report.Project == nil {
		return nil, fmt.Errorf("pdf: reporte sin organización o proyecto")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de proyecto: "+report.Project.Name, true).
		WithAuthor(report.Tenant.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range taskRows(report.Tasks) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range g.footerRows(report.Project) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: organización (izq) y proyecto + fecha de emisión (der).
func headerRow(report ports.ProjectReport, now time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(report.Tenant.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(report.Tenant.Subdomain, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE DE AVANCE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(report.Project.Name, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+now.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: estado, creador y avance del proyecto.
func summaryRow(report ports.ProjectReport) core.Row {
	creator := "—"
	if report.Creator != nil {
		creator = report.Creator.FullName
	}
	p := report.Progress
	return row.New(22).Add(
		col.New(8).Add(
			text.New("RESUMEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Estado: %s   |   Creador: %s", label(report.Project.Status), creator),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
			text.New(nonEmpty(report.Project.Description, "Sin descripción"),
				props.Text{Size: 8, Top: 13}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%d%%", p.CompletionPercentage), props.Text{
				Style: fontstyle.Bold, Size: 18, Align: align.Right, Color: colorDone, Top: 2,
			}),
			text.New(fmt.Sprintf("%d de %d tareas hechas", p.DoneTasks, p.TotalTasks), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de tareas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tarea", 7, align.Left),
		h("Estado", 2, align.Center),
		h("Actualizada", 3, align.Right),
	)
}

// taskRows: una fila por tarea; sin tareas, una fila de aviso.
func taskRows(tasks []*entity.Task) []core.Row {
	if len(tasks) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("El proyecto no tiene tareas.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(tasks))
	for _, t := range tasks {
		status := props.Text{Size: 8, Align: align.Center, Top: 1}
		if t.Status == entity.TaskStatusDone {
			status.Color = colorDone
		}
		result = append(result, row.New(7).Add(
			col.New(7).Add(text.New(t.Title, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(label(t.Status), status)),
			col.New(3).Add(text.New(t.UpdatedAt.Format("02/01/2006"), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// footerRows: QR con el enlace al proyecto y leyenda.
func (g *MarotoReportGenerator) footerRows(p *entity.Project) []core.Row {
	legend := text.New("Reporte generado a partir del estado confirmado del proyecto.", props.Text{
		Size: 6.5, Color: colorGray, Top: 2,
	})
	if g.baseURL == "" {
		return []core.Row{row.New(8).Add(col.New(12).Add(legend))}
	}
	link := g.baseURL + "/projects/" + p.ID
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(link, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Escanea el código QR para abrir\nel proyecto en el tablero.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New(link, props.Text{Size: 7, Top: 18, Left: 3, Color: colorPrimary}),
			),
		),
		row.New(8).Add(col.New(12).Add(legend)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func label(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
