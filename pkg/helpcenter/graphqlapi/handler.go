package graphqlapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/tendant/help-center/pkg/helpcenter/ratelimit"
)

// Handler serves GraphQL over HTTP. Queries and mutations are limited
// separately: the class is decided by parsing the document before
// execution, so an over-quota mutation never reaches a resolver.
type Handler struct {
	schema  graphql.Schema
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewHandler creates a GraphQL HTTP handler
func NewHandler(schema graphql.Schema, limiter *ratelimit.Limiter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{schema: schema, limiter: limiter, logger: logger}
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	class := ratelimit.PublicRead
	if isMutation(req.Query, req.OperationName) {
		class = ratelimit.PublicWrite
	}

	decision := h.limiter.Allow(r.Context(), class, ratelimit.ClientIP(r))
	if !decision.Allowed {
		denied := ratelimit.Denied(class, decision)
		w.Header().Set("Retry-After", strconv.Itoa(int(denied.RetryAfter.Seconds())))
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, map[string]interface{}{
			"errors": []map[string]string{{"message": denied.Error()}},
		})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	render.JSON(w, r, result)
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (graphqlRequest, bool) {
	var req graphqlRequest

	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if variables := r.URL.Query().Get("variables"); variables != "" {
			if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
				h.renderBadRequest(w, r, "invalid variables parameter")
				return req, false
			}
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.renderBadRequest(w, r, "invalid request body")
			return req, false
		}
	default:
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, map[string]interface{}{
			"errors": []map[string]string{{"message": "method not allowed"}},
		})
		return req, false
	}

	if req.Query == "" {
		h.renderBadRequest(w, r, "query is required")
		return req, false
	}
	return req, true
}

func (h *Handler) renderBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}

// isMutation reports whether the operation that will execute is a
// mutation. Unparseable documents count as reads; execution will reject
// them anyway.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" {
			if op.Name == nil || op.Name.Value != operationName {
				continue
			}
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
		if operationName != "" {
			return false
		}
	}
	return false
}
