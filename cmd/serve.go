package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fahrplan.dev/board"
	"fahrplan.dev/board/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves stop boards over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var listenAddr string

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", ":8080", "Listen address")
}

type server struct {
	tt  *board.Timetable
	log zerolog.Logger
}

func runServe(cmd *cobra.Command, args []string) error {
	tt, err := openTimetable()
	if err != nil {
		return err
	}

	srv := &server{
		tt:  tt,
		log: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}

	router := httprouter.New()
	router.GET("/v1/stations", srv.stations)
	router.GET("/v1/stops/:id/departures", srv.board(model.BoardTypeDepartures))
	router.GET("/v1/stops/:id/arrivals", srv.board(model.BoardTypeArrivals))
	router.GET("/v1/trips/:id", srv.trip)

	srv.log.Info().Str("addr", listenAddr).Msg("listening")
	return http.ListenAndServe(listenAddr, router)
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Err(err).Str("path", r.URL.Path).Msg("encoding response")
		return
	}
	s.log.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *server) stations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stations, err := s.tt.Stations(r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, stations)
}

type entryJSON struct {
	TripID    string    `json:"trip_id"`
	ShortName string    `json:"short_name"`
	Headsign  string    `json:"headsign"`
	When      time.Time `json:"when"`
}

func (s *server) board(bt model.BoardType) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		at := time.Now().UTC()
		if q := r.URL.Query().Get("at"); q != "" {
			parsed, err := time.Parse(time.RFC3339, q)
			if err != nil {
				s.writeError(w, r, http.StatusBadRequest, err)
				return
			}
			at = parsed.UTC()
		}

		entries, err := s.tt.Board(ps.ByName("id"), bt, at)
		if err != nil {
			// Unknown services and malformed stored times are
			// internal inconsistencies, never an empty board.
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		out := []entryJSON{}
		for _, e := range entries {
			out = append(out, entryJSON{
				TripID:    e.TripID,
				ShortName: e.ShortName,
				Headsign:  e.Headsign,
				When:      e.When,
			})
		}
		s.writeJSON(w, r, out)
	}
}

type tripStopJSON struct {
	StopName  string `json:"stop_name"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

func (s *server) trip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stops, err := s.tt.TripStops(ps.ByName("id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	out := []tripStopJSON{}
	for _, st := range stops {
		out = append(out, tripStopJSON{
			StopName:  st.StopName,
			Arrival:   offsetClock(st.Arrival),
			Departure: offsetClock(st.Departure),
		})
	}
	s.writeJSON(w, r, out)
}
