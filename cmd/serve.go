package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balei-miktzoa/draftgen/internal/composer"
	"github.com/balei-miktzoa/draftgen/internal/model"
	"github.com/balei-miktzoa/draftgen/internal/variant"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for draft and description generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/draft", func(w http.ResponseWriter, req *http.Request) {
			var worker model.WorkerRecord
			if err := json.NewDecoder(req.Body).Decode(&worker); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			draft := e.Composer.GenerateDraft(worker)
			status := http.StatusOK
			if draft.Status == model.DraftStatusError {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, draft)
		})

		// Regenerate walks the admin's per-record cursor forward so every
		// click yields the next phrasing variant. Pass ?reset=1 to start
		// the walk over from the first variant.
		r.Post("/api/draft/regenerate", func(w http.ResponseWriter, req *http.Request) {
			var worker model.WorkerRecord
			if err := json.NewDecoder(req.Body).Decode(&worker); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			key := worker.ResolvedID()
			if key == "" {
				key = composer.Seed(worker)
			}
			switch req.URL.Query().Get("reset") {
			case "1", "true", "yes":
				e.Cursors.Reset(key)
			}

			total := e.Registry.Count(variant.CanonField(worker.Field))
			worker.AIVariantCursor = model.FlexIntPtr(e.Cursors.Bump(key, total))

			draft := e.Composer.GenerateDraft(worker)
			status := http.StatusOK
			if draft.Status == model.DraftStatusError {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, draft)
		})

		r.Get("/api/variants/{trade}", func(w http.ResponseWriter, req *http.Request) {
			field := variant.CanonField(chi.URLParam(req, "trade"))
			listed := e.Registry.List(field)

			type variantView struct {
				ID      string `json:"id"`
				Label   string `json:"label"`
				InUseBy string `json:"in_use_by,omitempty"`
			}
			views := make([]variantView, 0, len(listed))
			for _, lv := range listed {
				views = append(views, variantView{
					ID:      lv.Variant.ID,
					Label:   lv.Variant.Label,
					InUseBy: lv.InUseBy,
				})
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"field":    field,
				"variants": views,
			})
		})

		r.Post("/api/variants/assign", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Trade     string `json:"trade"`
				VariantID string `json:"variant_id"`
				WorkerID  string `json:"worker_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.VariantID == "" || body.WorkerID == "" {
				writeError(w, http.StatusBadRequest, "variant_id and worker_id are required")
				return
			}

			field := variant.CanonField(body.Trade)
			res := e.Registry.Assign(field, body.VariantID, body.WorkerID)
			if !res.OK {
				writeJSON(w, http.StatusConflict, map[string]string{
					"error":     "variant already in use",
					"in_use_by": res.InUseBy,
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
		})

		r.Post("/api/variants/release", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Trade    string `json:"trade"`
				WorkerID string `json:"worker_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.WorkerID == "" {
				writeError(w, http.StatusBadRequest, "worker_id is required")
				return
			}

			e.Registry.Release(variant.CanonField(body.Trade), body.WorkerID)
			writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
		})

		r.Post("/api/describe", func(w http.ResponseWriter, req *http.Request) {
			var worker model.WorkerRecord
			if err := json.NewDecoder(req.Body).Decode(&worker); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			writeJSON(w, http.StatusOK, e.Describer.Describe(req.Context(), worker))
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
