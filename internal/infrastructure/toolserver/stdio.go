package toolserver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Server identity announced during the MCP handshake.
const (
	ServerName    = "solana-pairs-liquidity-mcp"
	ServerVersion = "1.0.0"
)

const (
	CodeParseError = -32700

	methodToolsCall = "tools/call"
)

// Server speaks MCP over newline-delimited JSON-RPC. tools/call goes straight to the
// dispatcher so its ProtocolError codes reach the host unchanged; every other method
// (initialize, tools/list, ping, notifications) is answered by the mcp-go server.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewServer creates the stdio tool server for d.
func NewServer(d *Dispatcher, logger *zap.Logger) (*Server, error) {
	s, err := NewMCPServer(d)
	if err != nil {
		return nil, err
	}
	return &Server{mcp: s, dispatcher: d, logger: logger.Named("MCP")}, nil
}

// NewMCPServer publishes every registered tool on an MCP server and forwards calls
// to the dispatcher.
func NewMCPServer(d *Dispatcher) (*server.MCPServer, error) {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, tool := range d.Registry().Tools() {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input schema for %s: %w", tool.Name, err)
		}
		name := tool.Name
		s.AddTool(mcp.NewToolWithRawSchema(name, tool.Description, schema),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				text, err := d.Call(ctx, name, req.GetArguments())
				if err != nil {
					return nil, err
				}
				return mcp.NewToolResultText(text), nil
			})
	}
	return s, nil
}

type rpcHeader struct {
	ID     jsoniter.RawMessage `json:"id"`
	Method string              `json:"method"`
	Params jsoniter.RawMessage `json:"params"`
}

type callParams struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  any                 `json:"result,omitempty"`
	Error   *rpcError           `json:"error,omitempty"`
}

var nullID = jsoniter.RawMessage("null")

// HandleMessage answers one JSON-RPC message. A nil result means no reply is due.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) any {
	var header rpcHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return errorResponse(nullID, CodeParseError, "Parse error")
	}
	// Всё кроме tools/call обрабатывает mcp-go
	if header.Method != methodToolsCall || isNotification(header.ID) {
		return s.mcp.HandleMessage(ctx, raw)
	}

	var params callParams
	if len(header.Params) == 0 || json.Unmarshal(header.Params, &params) != nil || params.Name == "" {
		return errorResponse(header.ID, CodeInvalidParams, "Invalid parameters: expected {name, arguments}")
	}
	var args map[string]any
	switch a := params.Arguments.(type) {
	case nil:
	case map[string]any:
		args = a
	default:
		return errorResponse(header.ID, CodeInvalidParams, "Invalid parameters: arguments must be an object")
	}

	text, err := s.dispatcher.Call(ctx, params.Name, args)
	if err != nil {
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			perr = &ProtocolError{Code: CodeInternalError, Message: err.Error()}
		}
		return errorResponse(header.ID, perr.Code, perr.Message)
	}
	return rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: header.ID, Result: mcp.NewToolResultText(text)}
}

// ServeStdio reads one message per line from stdin and writes replies to stdout
// until stdin closes (nil) or ctx is done (ctx.Err()). Messages are handled in order.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	type line struct {
		data []byte
		err  error
	}
	// Чтение stdin в отдельной горутине, чтобы отмена ctx не ждала следующей строки
	lines := make(chan line)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(stdin)
		for {
			data, err := reader.ReadBytes('\n')
			if len(data) > 0 || err != nil {
				select {
				case lines <- line{data: data, err: err}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			if msg := bytes.TrimSpace(l.data); len(msg) > 0 {
				if err := s.reply(ctx, msg, stdout); err != nil {
					return err
				}
			}
			if l.err != nil {
				if errors.Is(l.err, io.EOF) {
					s.logger.Info("Stdin closed, stopping")
					return nil
				}
				return fmt.Errorf("failed to read stdin: %w", l.err)
			}
		}
	}
}

func (s *Server) reply(ctx context.Context, msg []byte, stdout io.Writer) error {
	resp := s.HandleMessage(ctx, msg)
	if resp == nil {
		return nil
	}
	out, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
		return nil
	}
	if _, err := stdout.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func errorResponse(id jsoniter.RawMessage, code int, message string) rpcResponse {
	if len(id) == 0 {
		id = nullID
	}
	return rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Error: &rpcError{Code: code, Message: message}}
}

func isNotification(id jsoniter.RawMessage) bool {
	return len(id) == 0 || bytes.Equal(bytes.TrimSpace(id), nullID)
}
