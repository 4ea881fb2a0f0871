package restapi

import (
	"errors"
	"net/http"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	"solana_liquidity/internal/infrastructure/toolserver"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIErrorResponse mirrors a JSON-RPC error object.
type APIErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIToolsResponse lists the published tools.
type APIToolsResponse struct {
	Tools []toolserver.Tool `json:"tools"`
}

// APIDEXesResponse lists the known DEX definitions.
type APIDEXesResponse struct {
	DEXes []entity.DEXDefinition `json:"dexes"`
}

// ToolHandler exposes the tool dispatcher over HTTP.
type ToolHandler struct {
	dispatcher *toolserver.Dispatcher
	defs       port.DEXDefinitionProvider
}

// NewToolHandler creates a new instance of ToolHandler.
func NewToolHandler(d *toolserver.Dispatcher, defs port.DEXDefinitionProvider) *ToolHandler {
	return &ToolHandler{
		dispatcher: d,
		defs:       defs,
	}
}

// ListToolsHandler returns the tool declarations with their input schemas.
func (h *ToolHandler) ListToolsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIToolsResponse{Tools: h.dispatcher.Registry().Tools()})
}

// ListDEXesHandler returns the DEX definitions in effect.
func (h *ToolHandler) ListDEXesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIDEXesResponse{DEXes: h.defs.GetAllDEXDefinitions()})
}

// CallToolHandler invokes the tool named in the path with the JSON object body as arguments.
// An empty body means no arguments.
func (h *ToolHandler) CallToolHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, toolserver.CodeInvalidParams, "failed to read request body")
		return
	}

	var args map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(c, http.StatusBadRequest, toolserver.CodeInvalidParams, "Invalid parameters: body must be a JSON object")
			return
		}
	}

	text, err := h.dispatcher.Call(c.Request.Context(), c.Param("name"), args)
	if err != nil {
		var perr *toolserver.ProtocolError
		if !errors.As(err, &perr) {
			writeError(c, http.StatusInternalServerError, toolserver.CodeInternalError, err.Error())
			return
		}
		writeError(c, statusFor(perr.Code), perr.Code, perr.Message)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(text))
}

func statusFor(code int) int {
	switch code {
	case toolserver.CodeMethodNotFound:
		return http.StatusNotFound
	case toolserver.CodeInvalidParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status, code int, message string) {
	var resp APIErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(status, resp)
}
