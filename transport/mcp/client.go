package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/boop-game/game/engine"
	"github.com/wricardo/boop-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Boop",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Boop - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Two players take turns placing kittens and cats on a grid. A placed piece
pushes adjacent pieces one cell away. Three kittens in a row become cats;
three cats in a row win.

AVAILABLE TOOLS:
- create_session: Start a new match
- list_sessions / get_session: Inspect matches
- game_state: Board, whose turn it is and pieces left in hand
- select_piece: Arm a kitten or cat for the player to move
- place_piece: Place the armed (or given) piece at row/col
- reset_game: Start the match over
- game_history: Paginated event log
- list_configs: Available board configurations
- game_rules: Full rules

Coordinates are 0-based (row, col) from the top-left corner.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new match with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. classic (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, the player to move and the pieces each player has left",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_piece",
		Description: "Arm a piece type for the player to move. Only the current player may select.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"player": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{1, 2},
					"description": "Player number",
				},
				"piece_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"kitten", "cat"},
					"description": "Piece to arm",
				},
			},
			Required: []string{"session_id", "player", "piece_type"},
		},
	}, c.handleSelectPiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_piece",
		Description: "Place a piece for the player to move. Without piece_type the selected piece is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0-based from the top",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0-based from the left",
				},
				"piece_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"kitten", "cat"},
					"description": "Piece to place (optional when one is selected)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this placement",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handlePlacePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start the match over with the same configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_history",
		Description: "Get the event log for a match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Only events of this action, e.g. PawnBumped",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete rules of Boop",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{"method": method, "path": path}).Debug("mcp api call")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Winner != nil {
			status = fmt.Sprintf("%v won", *s.GameState.Winner)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectPiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	player, ok := intArg(args, "player")
	if !ok {
		return mcp.NewToolResultError("player is required (1 or 2)"), nil
	}

	body := map[string]interface{}{
		"player":     player,
		"piece_type": stringArg(args, "piece_type"),
	}

	var result service.SelectResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Success {
		return mcp.NewToolResultError(result.Message), nil
	}
	return mcp.NewToolResultText(result.Message), nil
}

func (c *Client) handlePlacePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	body := map[string]interface{}{"row": row, "col": col}
	if pieceType := stringArg(args, "piece_type"); pieceType != "" {
		body["piece_type"] = pieceType
	}

	var result service.PlaceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}
	if action := stringArg(args, "action"); action != "" {
		params.Set("action", action)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Board: %dx%d, Kittens: %d, Cats: %d\n\n",
			config.ConfigID, config.Name, config.Description,
			config.Rows, config.Cols, config.KittenLimit, config.CatLimit)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Boop - Rules

SETUP:
Each player starts with a pool of kittens (8 on the classic 6x6 board).
Cats are earned during play. PlayerOne moves first unless the config says otherwise.

TURN:
1. Select a kitten or cat you still have in hand (select_piece), or pass piece_type to place_piece.
2. Place it on any empty cell.
3. The placed piece boops every adjacent piece one cell directly away from it.
   - A kitten can boop kittens but never cats. A cat boops both.
   - A piece does not move if the cell behind it is occupied.
   - A piece pushed off the board returns to its owner's hand.
   - The placed piece itself never moves this turn.

PROMOTION:
Three of your kittens in a row (horizontal, vertical or diagonal) leave the
board. You get the three kittens back in hand plus one cat, up to the limits.
Booped kittens can complete a row for their owner too.

WINNING:
Three of your cats in a row wins immediately. If a single placement makes
lines for both players, the first line found stands.

BOARD TEXT:
  .  empty
  o  PlayerOne kitten     O  PlayerOne cat
  x  PlayerTwo kitten     X  PlayerTwo cat
`

// Formatters

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatBoard prints the board text with row and column indices
func formatBoard(state *engine.Snapshot) string {
	var b strings.Builder
	b.WriteString("   ")
	for col := 0; col < state.Cols; col++ {
		fmt.Fprintf(&b, "%d", col%10)
	}
	b.WriteString("\n")

	rows := strings.Split(state.BoardText, "\n")
	if state.BoardText == "" {
		rows = make([]string, len(state.Board))
		for i, row := range state.Board {
			line := make([]byte, len(row))
			for j, p := range row {
				line[j] = engine.PieceSymbol(p)
			}
			rows[i] = string(line)
		}
	}
	for i, line := range rows {
		fmt.Fprintf(&b, "%2d %s\n", i, line)
	}
	return b.String()
}

func formatGameState(state *engine.Snapshot) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s | Turn: %d\n\n", state.MatchID, state.TurnNumber)
	b.WriteString(formatBoard(state))
	b.WriteString("\n")

	for _, p := range []engine.Player{engine.PlayerOne, engine.PlayerTwo} {
		pool := state.AvailablePawns[p]
		fmt.Fprintf(&b, "%v in hand: %d kittens, %d cats\n", p, pool[engine.Kitten], pool[engine.Cat])
	}

	if state.Winner != nil {
		fmt.Fprintf(&b, "\nGAME OVER: %v wins", *state.Winner)
		return b.String()
	}

	fmt.Fprintf(&b, "\nTo move: %v", state.CurrentPlayer)
	if state.SelectedPiece != "" {
		fmt.Fprintf(&b, " (selected %s)", state.SelectedPiece)
	}
	return b.String()
}

func formatPlaceResult(result *service.PlaceResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ ")
	} else {
		fmt.Fprintf(&b, "✗ [%s] ", result.Reason)
	}
	b.WriteString(result.Message)
	b.WriteString("\n")

	if turn := result.Turn; turn != nil && turn.Success {
		for _, boop := range turn.Boops {
			if boop.Destination == nil {
				fmt.Fprintf(&b, "  booped %v off the board\n", boop.Origin)
			} else {
				fmt.Fprintf(&b, "  booped %v -> %v\n", boop.Origin, *boop.Destination)
			}
		}
		if len(turn.Promotions) > 0 {
			fmt.Fprintf(&b, "  promoted %v\n", turn.Promotions)
		}
		if len(turn.OpponentPromotions) > 0 {
			fmt.Fprintf(&b, "  opponent promoted %v\n", turn.OpponentPromotions)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d), %d events\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, ev := range history.Events {
		fmt.Fprintf(&b, "#%d turn %d %s %v", ev.Sequence, ev.Turn, ev.Action, ev.Player)
		if ev.PieceType != "" {
			fmt.Fprintf(&b, " %s", ev.PieceType)
		}
		if len(ev.Origins) > 0 {
			fmt.Fprintf(&b, " at %v", ev.Origins)
		}
		if ev.Destination != nil {
			fmt.Fprintf(&b, " -> %v", *ev.Destination)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d", history.Page+1)
	}
	return b.String()
}
