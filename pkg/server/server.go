package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mealbyte/foodserve/pkg/suggest"
)

// TODO: take maxQueryLen from the [server] config section.
const maxQueryLen = 120

// Server handles the IPC for food suggestions.
type Server struct {
	service *suggest.Service
	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
	timeout time.Duration
}

// NewServer creates a suggestion server using stdin/stdout for IPC.
func NewServer(service *suggest.Service, timeout time.Duration) *Server {
	return NewServerIO(service, os.Stdin, os.Stdout, timeout)
}

// NewServerIO creates a server on explicit streams, for tests and for
// embedding behind a socket.
func NewServerIO(service *suggest.Service, r io.Reader, w io.Writer, timeout time.Duration) *Server {
	return &Server{
		service: service,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		timeout: timeout,
	}
}

// Start signals readiness, then serves requests until EOF.
func (s *Server) Start() error {
	log.Debug("starting server")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("decoding request: %v", err)
			s.sendError("", "invalid msgpack request", 400)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case "search":
		s.handleSearch(req)
	case "lookup":
		s.handleLookup(req)
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handleSearch(req Request) {
	if req.Query == "" {
		s.sendError(req.ID, "missing 'q' parameter", 400)
		return
	}
	if len(req.Query) > maxQueryLen {
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d", maxQueryLen), 400)
		return
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	start := time.Now()
	results, err := s.service.Search(ctx, req.UserID, req.Query)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("search %q: %v", req.Query, err)
		s.sendError(req.ID, "search failed", 500)
		return
	}

	wire := make([]WireSuggestion, len(results))
	for i, r := range results {
		wire[i] = toWireSuggestion(r)
	}
	s.send(SearchResponse{
		ID:          req.ID,
		Suggestions: wire,
		Count:       len(wire),
		TimeTaken:   elapsed.Milliseconds(),
	})
}

func (s *Server) handleLookup(req Request) {
	if req.Barcode == "" && req.Query == "" {
		s.sendError(req.ID, "lookup needs 'b' or 'q'", 400)
		return
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	start := time.Now()
	product, err := s.service.Lookup(ctx, req.UserID, suggest.LookupRequest{
		Barcode: req.Barcode,
		Query:   req.Query,
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, suggest.ErrNotFound):
		s.send(LookupResponse{ID: req.ID, Status: "not_found", TimeTaken: elapsed.Milliseconds()})
	case err != nil:
		log.Errorf("lookup (b=%q q=%q): %v", req.Barcode, req.Query, err)
		s.sendError(req.ID, "lookup failed", 502)
	default:
		s.send(LookupResponse{
			ID:        req.ID,
			Status:    "ok",
			Product:   toWireProduct(product),
			TimeTaken: elapsed.Milliseconds(),
		})
	}
}

func (s *Server) requestContext() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Server) send(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(RequestError{ID: id, Error: message, Code: code})
}

func toWireSuggestion(sg suggest.Suggestion) WireSuggestion {
	return WireSuggestion{
		Name:         sg.Name,
		Barcode:      sg.Barcode,
		ServingLabel: sg.ServingLabel,
		Source:       sg.Source,
		Calories:     sg.Prefill.Calories,
		Protein:      sg.Prefill.Protein,
		Carbs:        sg.Prefill.Carbs,
		Fats:         sg.Prefill.Fats,
		WeightAmount: sg.Prefill.WeightAmount,
		WeightUnit:   sg.Prefill.WeightUnit,
		ItemType:     string(sg.Prefill.Type),
	}
}

func toWireProduct(p *suggest.Product) *WireProduct {
	if p == nil {
		return nil
	}
	return &WireProduct{
		Name:         p.Name,
		Barcode:      p.Barcode,
		Calories:     p.Calories,
		Protein:      p.Protein,
		Carbs:        p.Carbs,
		Fats:         p.Fats,
		WeightAmount: p.WeightAmount,
		WeightUnit:   string(p.WeightUnit),
		WeightGrams:  p.WeightGrams,
		WeightMl:     p.WeightMl,
	}
}
