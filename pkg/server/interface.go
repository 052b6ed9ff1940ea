/*
Package server implements msgpack IPC for the food suggestion service.

The server speaks a request/response protocol over stdin/stdout: clients
send msgpack-encoded messages via stdin and receive responses on stdout.
Each message carries an ID the client can correlate on, and an op field
selecting the operation.

Search requests look like:

	{"id": "req_001", "op": "search", "u": "user42", "q": "greek yog"}

and come back as a ranked suggestion list with timing info:

	{"id": "req_001", "s": [{"n": "Greek Yogurt", "src": "Recent"}, ...], "c": 7, "t": 3}

Lookup resolves a barcode (preferred) or free text to one product:

	{"id": "req_002", "op": "lookup", "u": "user42", "b": "049000050103"}

An unknown code is a "not_found" status, not an error; errors are
reserved for malformed requests and transport failures, so callers can
tell "retry later" apart from "give up on this code".

A health op answers {"status": "ok"} for liveness probing, and the
server emits {"status": "ready"} once on startup so a supervising
process knows when to start sending.

msgpack was chosen over JSON for the usual reasons on a hot typeahead
path: smaller messages and cheaper parsing on every keystroke.
*/
package server

// Request is the envelope every op shares; one decode pass dispatches
// on Op. Search uses Query; lookup uses Barcode and/or Query.
type Request struct {
	ID      string `msgpack:"id"`
	Op      string `msgpack:"op"` // "search", "lookup", "health"
	UserID  string `msgpack:"u,omitempty"`
	Query   string `msgpack:"q,omitempty"`
	Barcode string `msgpack:"b,omitempty"`
}

// WireSuggestion is one suggestion on the wire.
type WireSuggestion struct {
	Name         string   `msgpack:"n"`
	Barcode      string   `msgpack:"b,omitempty"`
	ServingLabel string   `msgpack:"sl,omitempty"`
	Source       string   `msgpack:"src"`
	Calories     *float64 `msgpack:"kcal,omitempty"`
	Protein      *float64 `msgpack:"prot,omitempty"`
	Carbs        *float64 `msgpack:"carb,omitempty"`
	Fats         *float64 `msgpack:"fat,omitempty"`
	WeightAmount *float64 `msgpack:"wa,omitempty"`
	WeightUnit   string   `msgpack:"wu,omitempty"`
	ItemType     string   `msgpack:"ty,omitempty"`
}

// SearchResponse is the ranked suggestion list.
type SearchResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []WireSuggestion `msgpack:"s"`
	Count       int              `msgpack:"c"`
	TimeTaken   int64            `msgpack:"t"`
}

// WireProduct is one resolved product on the wire.
type WireProduct struct {
	Name         string   `msgpack:"n"`
	Barcode      string   `msgpack:"b,omitempty"`
	Calories     *float64 `msgpack:"kcal,omitempty"`
	Protein      *float64 `msgpack:"prot,omitempty"`
	Carbs        *float64 `msgpack:"carb,omitempty"`
	Fats         *float64 `msgpack:"fat,omitempty"`
	WeightAmount *float64 `msgpack:"wa,omitempty"`
	WeightUnit   string   `msgpack:"wu,omitempty"`
	WeightGrams  *float64 `msgpack:"wg,omitempty"`
	WeightMl     *float64 `msgpack:"wml,omitempty"`
}

// LookupResponse resolves a lookup. Status is "ok" or "not_found".
type LookupResponse struct {
	ID        string       `msgpack:"id"`
	Status    string       `msgpack:"status"`
	Product   *WireProduct `msgpack:"p,omitempty"`
	TimeTaken int64        `msgpack:"t"`
}

// StatusResponse covers ready/health signaling.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// RequestError holds basic error information for failed requests.
type RequestError struct {
	ID    string `msgpack:"id,omitempty"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
