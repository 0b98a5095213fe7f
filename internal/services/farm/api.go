package farm

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

// API is the HTTP surface of the farm service.
type API struct {
	svc     *FarmService
	store   *ScheduleStore
	metrics *Metrics
}

func NewAPI(svc *FarmService, store *ScheduleStore, metrics *Metrics) *API {
	return &API{svc: svc, store: store, metrics: metrics}
}

func (a *API) Register(e *echo.Echo) {
	e.GET("/healthz", a.healthz)
	if a.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	}

	e.GET("/grid", a.grid)
	e.GET("/grid.csv", a.gridCSV)
	e.GET("/grid.xlsx", a.gridXLSX)
	e.POST("/grid/regenerate", a.regenerate)

	e.GET("/plants/:id", a.plant)
	e.POST("/plants/:id/select", a.selectPlant)
	e.POST("/plants/:id/water", a.water)
	e.POST("/actions/:action", a.action)

	e.GET("/stats", a.stats)
	e.GET("/weather", a.weather)
	e.GET("/analysis", a.analysis)
	e.GET("/notifications", a.notifications)

	if a.store != nil {
		e.GET("/schedules", a.listSchedules)
		e.POST("/schedules", a.saveSchedule)
	}
}

// httpStatus maps service errors onto status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrPlantNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulation.ErrUnknownAction),
		errors.Is(err, ErrInvalidSchedule):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPlantSelected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(httpStatus(err), echo.Map{"error": err.Error()})
}

func (a *API) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// GridCell is a plant as the grid view draws it.
type GridCell struct {
	entities.Plant
	Icon      string `json:"icon"`
	CellColor string `json:"cell_color"`
}

func (a *API) grid(c echo.Context) error {
	plants := a.svc.Plants()
	cells := make([]GridCell, len(plants))
	for i := range plants {
		cells[i] = GridCell{
			Plant:     plants[i],
			Icon:      entities.CropIcon(plants[i].Type),
			CellColor: simulation.CellColor(&plants[i]),
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"grid_size": a.svc.GridSize(),
		"plants":    cells,
		"stats":     simulation.Compute(plants),
	})
}

func reportName(ext string) string {
	return "spacefarm-grid-" + time.Now().UTC().Format("20060102-150405") + ext
}

func (a *API) gridCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, a.svc.Plants()); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+reportName(".csv")+`"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (a *API) gridXLSX(c echo.Context) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, a.svc.Plants()); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+reportName(".xlsx")+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (a *API) regenerate(c echo.Context) error {
	return c.JSON(http.StatusOK, a.svc.Regenerate())
}

func plantID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// selectPlant makes id the target of the manual watering action.
func (a *API) selectPlant(c echo.Context) error {
	id, err := plantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	if err := a.svc.Select(id); err != nil {
		return fail(c, err)
	}
	d, err := a.svc.Plant(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (a *API) plant(c echo.Context) error {
	id, err := plantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	d, err := a.svc.Plant(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (a *API) water(c echo.Context) error {
	id, err := plantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	res, err := a.svc.Water(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type actionBody struct {
	ActionID string `json:"action_id"`
	PlantID  *int   `json:"plant_id"`
}

func (a *API) action(c echo.Context) error {
	act, err := simulation.ParseAction(c.Param("action"))
	if err != nil {
		return fail(c, err)
	}
	var body actionBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	res, err := a.svc.Apply(c.Request().Context(), act, body.PlantID, body.ActionID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *API) stats(c echo.Context) error {
	s := a.svc.Stats()
	return c.JSON(http.StatusOK, echo.Map{
		"stats":          s,
		"healthy_color":  simulation.HealthyPlantsColor(s),
		"critical_color": simulation.CriticalPlantsColor(s),
		"auto_mode":      a.svc.AutoMode(),
	})
}

func (a *API) weather(c echo.Context) error {
	w := a.svc.Weather()
	return c.JSON(http.StatusOK, echo.Map{
		"weather":  w,
		"uv_color": simulation.UVIndexColor(w.UVIndex),
	})
}

func (a *API) analysis(c echo.Context) error {
	return c.JSON(http.StatusOK, a.svc.Analysis())
}

type notificationView struct {
	entities.Notification
	Icon string `json:"icon"`
}

func (a *API) notifications(c echo.Context) error {
	notes := a.svc.Notifications()
	out := make([]notificationView, len(notes))
	for i, n := range notes {
		out[i] = notificationView{Notification: n, Icon: n.Type.Icon()}
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) listSchedules(c echo.Context) error {
	list, err := a.store.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (a *API) saveSchedule(c echo.Context) error {
	var in entities.Schedule
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	sc, err := a.store.Save(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	a.svc.notify(entities.NotifySuccess, "Programación de riego guardada exitosamente")
	return c.JSON(http.StatusCreated, sc)
}
