package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/arvek/bnrg/codec"
	"github.com/arvek/bnrg/internal/fileio"
	"github.com/arvek/bnrg/record"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a decoded graph as a read-only JSON API",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", getEnv("BNRG_SERVE_ADDR", "127.0.0.1:8686"), "address to listen on (env: BNRG_SERVE_ADDR)")
}

type graphServer struct {
	graph *record.Graph
}

func runServe(cmd *cobra.Command, args []string) error {
	mapped, err := fileio.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer mapped.Close()
	graph, err := codec.Decode(mapped.Bytes())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	srv := &graphServer{graph: graph}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/summary", srv.handleSummary).Methods("GET")
	api.HandleFunc("/records", srv.handleListRecords).Methods("GET")
	api.HandleFunc("/records/{id}", srv.handleGetRecord).Methods("GET")

	log.Printf("serving %s on %s", args[0], serveAddr)
	return http.ListenAndServe(serveAddr, router)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		log.Printf("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

type summaryResponse struct {
	RootID       int32 `json:"root_id"`
	HeaderID     int32 `json:"header_id"`
	RecordCount  int   `json:"record_count"`
	ClassCount   int   `json:"class_type_count"`
}

func (s *graphServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, summaryResponse{
		RootID:      s.graph.RootID,
		HeaderID:    s.graph.HeaderID,
		RecordCount: len(s.graph.Records),
		ClassCount:  len(s.graph.ClassTypes),
	})
}

type recordSummary struct {
	ID   int32  `json:"id"`
	Kind string `json:"kind"`
}

func (s *graphServer) handleListRecords(w http.ResponseWriter, r *http.Request) {
	out := make([]recordSummary, 0, len(s.graph.Records))
	for id, rec := range s.graph.Records {
		out = append(out, recordSummary{ID: id, Kind: rec.Kind().String()})
	}
	writeJSON(w, out)
}

func (s *graphServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	rec, ok := s.graph.Records[int32(id)]
	if !ok {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, recordDetail(s.graph, int32(id), rec))
}

func recordDetail(g *record.Graph, id int32, rec record.Record) map[string]any {
	detail := map[string]any{"id": id, "kind": rec.Kind().String()}
	switch v := rec.(type) {
	case *record.LibraryRecord:
		detail["name"] = v.Name
	case *record.StringRecord:
		detail["value"] = v.Value
	case *record.Class:
		ct := g.ClassTypes[v.ClassTypeID]
		detail["class_type"] = ct.Name
		detail["system_class"] = ct.SystemClass
		members := make(map[string]any, len(ct.MemberNames))
		for i, name := range ct.MemberNames {
			members[name] = memberJSON(v.Members[i])
		}
		detail["members"] = members
	case *record.BinaryArray:
		elems := make([]any, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = memberJSON(e)
		}
		detail["elements"] = elems
	case *record.PrimitiveArray:
		detail["element_type"] = v.ElementType.String()
		detail["length"] = len(v.Elements)
	}
	return detail
}

func memberJSON(m record.Member) any {
	switch m.Kind {
	case record.MemberReference:
		return map[string]any{"ref": m.Ref}
	case record.MemberNull:
		return nil
	case record.MemberNullMultiple:
		return map[string]any{"null_run": m.Count}
	default:
		return map[string]any{"type": m.Prim.Type.String()}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
