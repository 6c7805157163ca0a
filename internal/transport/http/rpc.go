package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/autopilot/internal/policy"
	"github.com/xiaot623/autopilot/internal/tools"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// contentItem is one entry of a tool call result.
type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the result payload of a tools/call response.
type toolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError"`
}

// Handler serves the JSON-RPC remote control endpoint.
type Handler struct {
	registry *tools.Registry
	policy   *policy.Engine
}

// NewHandler creates a new handler. The policy engine may be nil, in which
// case every call is allowed.
func NewHandler(registry *tools.Registry, engine *policy.Engine) *Handler {
	return &Handler{registry: registry, policy: engine}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/rpc", h.HandleRPC)
	e.GET("/healthz", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// HandleRPC serves a single JSON-RPC 2.0 request. Protocol errors always
// come back as HTTP 200 with an error object, per the JSON-RPC convention.
func (h *Handler) HandleRPC(c echo.Context) error {
	var req rpcRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusOK, errorResponse(nil, codeParseError, "parse error"))
	}
	if req.Jsonrpc != "2.0" || req.Method == "" {
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidRequest, "invalid request"))
	}

	switch req.Method {
	case "tools/list":
		return c.JSON(http.StatusOK, rpcResponse{
			Jsonrpc: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{"tools": h.registry.List()},
		})

	case "tools/call":
		return h.handleToolCall(c, req)

	default:
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method))
	}
}

func (h *Handler) handleToolCall(c echo.Context, req rpcRequest) error {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if len(req.Params) == 0 {
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidParams, "params are required"))
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error()))
	}
	if params.Name == "" {
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidParams, "tool name is required"))
	}
	if !h.registry.Has(params.Name) {
		return c.JSON(http.StatusOK, errorResponse(req.ID, codeMethodNotFound, "tool not found: "+params.Name))
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage(`{}`)
	}

	if h.policy != nil {
		decision, reason, err := h.evaluatePolicy(c, params.Name, params.Arguments)
		if err != nil {
			return c.JSON(http.StatusOK, errorResponse(req.ID, codeInternalError, "policy evaluation failed"))
		}
		if decision == policy.DecisionBlock {
			msg := "blocked by policy"
			if reason != "" {
				msg += ": " + reason
			}
			return c.JSON(http.StatusOK, toolCallResponse(req.ID, msg, true))
		}
	}

	text, err := h.registry.Execute(c.Request().Context(), params.Name, params.Arguments)
	if err != nil {
		return c.JSON(http.StatusOK, toolCallResponse(req.ID, err.Error(), true))
	}
	return c.JSON(http.StatusOK, toolCallResponse(req.ID, text, false))
}

func (h *Handler) evaluatePolicy(c echo.Context, toolName string, args json.RawMessage) (string, string, error) {
	var argMap map[string]interface{}
	if err := json.Unmarshal(args, &argMap); err != nil {
		argMap = map[string]interface{}{}
	}
	input := map[string]interface{}{
		"tool_name": toolName,
		"args":      argMap,
	}
	return h.policy.Evaluate(c.Request().Context(), input)
}

func toolCallResponse(id json.RawMessage, text string, isError bool) rpcResponse {
	return rpcResponse{
		Jsonrpc: "2.0",
		ID:      id,
		Result: toolResult{
			Content: []contentItem{{Type: "text", Text: text}},
			IsError: isError,
		},
	}
}

func errorResponse(id json.RawMessage, code int, message string) rpcResponse {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return rpcResponse{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}
