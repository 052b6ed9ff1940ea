// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

// InputHandler reads queries from stdin and prints ranked suggestions.
// A line of digits is treated as a barcode lookup instead of a search.
type InputHandler struct {
	service      *suggest.Service
	userID       string
	maxQueryLen  int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(service *suggest.Service, userID string, maxQueryLen int) *InputHandler {
	return &InputHandler{
		service:     service,
		userID:      userID,
		maxQueryLen: maxQueryLen,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to the handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("FoodServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a food name (or a barcode) and press Enter (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes one line: barcodes go through lookup, anything
// else through search.
func (h *InputHandler) handleInput(input string) {
	h.requestCount++

	if len(input) > h.maxQueryLen {
		log.Errorf("Query too long: %s", input)
		return
	}

	if utils.IsOnlyNumbers(input) {
		h.handleLookup(input)
		return
	}
	h.handleSearch(input)
}

func (h *InputHandler) handleSearch(query string) {
	start := time.Now()
	log.Debug("Processing search request", "query", query)

	suggestions, err := h.service.Search(context.Background(), h.userID, query)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Search failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for query: '%s'", query)
		return
	}

	log.Printf("Found %d suggestions for query '%s':", len(suggestions), query)
	for i, s := range suggestions {
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Name)
		log.Printf("%2d. %-40s %-10s (%s%s)", i+1, clName, formatKcal(s.Prefill.Calories), s.Source, servingSuffix(s.ServingLabel))
	}
}

func (h *InputHandler) handleLookup(code string) {
	start := time.Now()
	log.Debug("Processing barcode lookup", "code", code)

	product, err := h.service.Lookup(context.Background(), h.userID, suggest.LookupRequest{Barcode: code})
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for barcode '%s'", elapsed, code)

	if errors.Is(err, suggest.ErrNotFound) {
		log.Warnf("No product found for barcode: '%s'", code)
		return
	}
	if err != nil {
		log.Errorf("Lookup failed: %v", err)
		return
	}

	log.Printf("Product for barcode '%s':", code)
	log.Printf("    name:     %s", product.Name)
	log.Printf("    calories: %s", formatKcal(product.Calories))
	log.Printf("    protein:  %s  carbs: %s  fats: %s",
		formatMacro(product.Protein), formatMacro(product.Carbs), formatMacro(product.Fats))
	if product.WeightAmount != nil {
		log.Printf("    serving:  %.4g %s", *product.WeightAmount, product.WeightUnit)
	}
}

func formatKcal(v *float64) string {
	if v == nil {
		return "? kcal"
	}
	return fmt.Sprintf("%.0f kcal", *v)
}

func formatMacro(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%.1fg", *v)
}

func servingSuffix(label string) string {
	if label == "" {
		return ""
	}
	return ", " + label
}
