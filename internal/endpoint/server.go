package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/remote"
	"github.com/isq-24/weekly-planner/internal/store"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/gin-gonic/gin"
)

// Path is where the script is mounted, mirroring spreadsheet web-app URLs.
const Path = "/exec"

const maxBody = 4 << 20

type ServerConfig struct {
	Store *store.WeekStore
	// Log receives one line per request; nil disables request logging.
	Log io.Writer
}

// Server is a local stand-in for the remote spreadsheet script. It speaks both wire
// formats: GET with weekStartDate answers in the days format, GET without it in the
// flat format; POST picks the format from the payload shape.
type Server struct {
	store  *store.WeekStore
	router *gin.Engine
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("endpoint: missing store")
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(gin.LoggerWithWriter(cfg.Log))
	}

	s := &Server{store: cfg.Store, router: r}
	r.GET(Path, s.handleGet)
	r.POST(Path, s.handlePost)
	r.GET("/weeks", s.handleList)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: msg})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
}

func (s *Server) handleGet(c *gin.Context) {
	ctx := c.Request.Context()

	start := strings.TrimSpace(c.Query("weekStartDate"))
	if start == "" {
		snap, err := s.store.Get(ctx, store.UnscopedWeek)
		if err != nil {
			internalError(c, err)
			return
		}
		writeSnapshot(c, remote.FlatCodec{}, week.Week{}, snap)
		return
	}

	date, err := time.Parse(week.DateLayout, start)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid weekStartDate: %q", start))
		return
	}
	w := week.CurrentWeek(date)
	snap, err := s.store.Get(ctx, w.StartDate())
	if err != nil {
		internalError(c, err)
		return
	}
	writeSnapshot(c, remote.DaysCodec{}, w, snap)
}

func writeSnapshot(c *gin.Context, codec remote.Codec, w week.Week, snap *model.Snapshot) {
	if snap == nil {
		c.Data(http.StatusOK, "application/json", []byte("{}"))
		return
	}
	b, err := codec.Encode(w, *snap)
	if err != nil {
		internalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (s *Server) handlePost(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		badRequest(c, "body must be a JSON object")
		return
	}

	var (
		key  string
		snap *model.Snapshot
		dErr error
	)
	if raw, ok := fields["daysData"]; ok {
		w, err := weekOfDaysData(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		key = w.StartDate()
		snap, dErr = remote.DaysCodec{}.Decode(w, body)
	} else {
		key = store.UnscopedWeek
		snap, dErr = remote.FlatCodec{}.Decode(week.Week{}, body)
	}
	if dErr != nil {
		badRequest(c, dErr.Error())
		return
	}
	if snap == nil {
		empty := model.EmptySnapshot()
		snap = &empty
	}
	if err := s.store.Put(ctx, key, *snap); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "week": key})
}

// weekOfDaysData picks the week from the first parseable entry date.
func weekOfDaysData(raw json.RawMessage) (week.Week, error) {
	var entries []struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return week.Week{}, fmt.Errorf("daysData: %w", err)
	}
	for _, e := range entries {
		d := strings.TrimSpace(e.Date)
		if len(d) > len(week.DateLayout) {
			d = d[:len(week.DateLayout)]
		}
		t, err := time.Parse(week.DateLayout, d)
		if err != nil {
			continue
		}
		return week.CurrentWeek(t), nil
	}
	return week.Week{}, errors.New("daysData: no entry with a valid date")
}

func (s *Server) handleList(c *gin.Context) {
	rows, err := s.store.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
