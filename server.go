package tripseek

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tripseek/tripseek/agent"
	"github.com/tripseek/tripseek/schema"
)

const Version = "1.0.0"

// NewServer exposes the engine as MCP tools over a standard MCP server.
func NewServer(client *TripClient) *server.MCPServer {
	s := server.NewMCPServer(
		"tripseek",
		Version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Travel POI retrieval engine with corrective feedback: search verified points of interest, plan trips, and manage conversation sessions."),
	)

	s.AddTool(
		mcp.NewTool("search_pois",
			mcp.WithDescription("Search verified points of interest for a natural-language travel query. Retrieval self-corrects: low-quality results trigger query refinement, and unrecoverable searches fall back to curated recommendations."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Natural language travel question")),
			mcp.WithString("destination", mcp.Description("Destination city or cities, e.g. \"Miami\" or \"Tampa and Naples\"")),
			mcp.WithString("mode", mcp.Description("Search mode: balanced (default), semantic, keyword, or exact")),
			mcp.WithNumber("top_k", mcp.Description("Number of results; omit to size from trip parameters")),
			mcp.WithBoolean("use_rerank", mcp.Description("Override the configured rerank default for this call; omit to keep it")),
			mcp.WithString("session_id", mcp.Description("Session to record this turn in")),
		),
		handleSearchPOIs(client),
	)

	s.AddTool(
		mcp.NewTool("plan_trip",
			mcp.WithDescription("Build a day-by-day trip plan from verified points of interest."),
			mcp.WithString("query", mcp.Required(), mcp.Description("What kind of trip to plan")),
			mcp.WithString("destination", mcp.Description("Destination city or cities")),
			mcp.WithNumber("travel_days", mcp.Description("Trip length in days, default 3")),
			mcp.WithNumber("pois_per_day", mcp.Description("Attractions per day")),
			mcp.WithNumber("meal_budget", mcp.Description("Meal budget per person per meal")),
			mcp.WithString("must_visit", mcp.Description("Comma-separated places that must appear in the plan")),
			mcp.WithString("interests", mcp.Description("Comma-separated interests, e.g. \"beaches, museums\"")),
			mcp.WithBoolean("has_children", mcp.Description("Traveling with children")),
			mcp.WithString("session_id", mcp.Description("Session to record this turn in")),
		),
		handlePlanTrip(client),
	)

	s.AddTool(
		mcp.NewTool("create_session",
			mcp.WithDescription("Create a conversation session that remembers trip context across turns."),
		),
		handleCreateSession(client),
	)

	s.AddTool(
		mcp.NewTool("get_session",
			mcp.WithDescription("Fetch a session with its message history and remembered trip features."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		),
		handleGetSession(client),
	)

	s.AddTool(
		mcp.NewTool("delete_session",
			mcp.WithDescription("Delete a conversation session."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		),
		handleDeleteSession(client),
	)

	s.AddTool(
		mcp.NewTool("list_sessions",
			mcp.WithDescription("List recent sessions, newest first."),
			mcp.WithNumber("offset", mcp.Description("Pagination offset")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 20")),
		),
		handleListSessions(client),
	)

	return s
}

// searchResponse is the wire shape returned by search_pois and plan_trip.
type searchResponse struct {
	Response     string       `json:"response"`
	POIs         []schema.POI `json:"pois,omitempty"`
	Attempts     int          `json:"attempts"`
	FallbackUsed bool         `json:"fallback_used"`
	FromCache    bool         `json:"from_cache,omitempty"`
}

func handleSearchPOIs(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		features := featuresFromSession(ctx, client, req.GetString("session_id", ""))
		if dest := req.GetString("destination", ""); dest != "" {
			features.Destination = dest
		}

		turn := agent.TurnRequest{
			Query:    query,
			Features: features,
			Mode:     schema.SearchMode(req.GetString("mode", "")),
			TopK:     req.GetInt("top_k", 0),
		}
		// only an explicit argument overrides the configured default
		if _, ok := req.GetArguments()["use_rerank"]; ok {
			useRerank := req.GetBool("use_rerank", false)
			turn.UseRerank = &useRerank
		}
		result, err := client.SearchPOIs(ctx, turn)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		recordAndRespond(ctx, client, req.GetString("session_id", ""), query, result, features)
		return toolJSON(searchResponse{
			Response:     result.Response,
			POIs:         result.POIs,
			Attempts:     result.Attempts,
			FallbackUsed: result.FallbackUsed,
			FromCache:    result.FromCache,
		})
	}
}

func handlePlanTrip(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		features := featuresFromSession(ctx, client, req.GetString("session_id", ""))
		if dest := req.GetString("destination", ""); dest != "" {
			features.Destination = dest
		}
		if days := req.GetInt("travel_days", 0); days > 0 {
			features.TravelDays = days
		}
		if per := req.GetInt("pois_per_day", 0); per > 0 {
			features.PoisPerDay = per
		}
		if budget := req.GetFloat("meal_budget", 0); budget > 0 {
			features.MealBudget = budget
		}
		if mv := splitList(req.GetString("must_visit", "")); len(mv) > 0 {
			features.MustVisit = mv
		}
		if in := splitList(req.GetString("interests", "")); len(in) > 0 {
			features.Interests = in
		}
		if req.GetBool("has_children", false) {
			features.HasChildren = true
		}

		result, err := client.PlanTrip(ctx, query, features)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("plan failed: %v", err)), nil
		}
		recordAndRespond(ctx, client, req.GetString("session_id", ""), query, result, features)
		return toolJSON(searchResponse{
			Response:     result.Response,
			POIs:         result.POIs,
			Attempts:     result.Attempts,
			FallbackUsed: result.FallbackUsed,
			FromCache:    result.FromCache,
		})
	}
}

func handleCreateSession(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := client.Sessions().Create(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create session failed: %v", err)), nil
		}
		return toolJSON(sess)
	}
}

func handleGetSession(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sess, ok := client.Sessions().Get(ctx, id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
		}
		return toolJSON(sess)
	}
}

func handleDeleteSession(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !client.Sessions().Delete(ctx, id) {
			return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("session %s deleted", id)), nil
	}
}

func handleListSessions(client *TripClient) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset := req.GetInt("offset", 0)
		limit := req.GetInt("limit", 20)
		return toolJSON(client.Sessions().ListRange(ctx, offset, limit))
	}
}

// featuresFromSession seeds the turn with remembered trip context.
func featuresFromSession(ctx context.Context, client *TripClient, sessionID string) *schema.UserFeatures {
	if sessionID != "" {
		if sess, ok := client.Sessions().Get(ctx, sessionID); ok && sess.Features != nil {
			copied := *sess.Features
			return &copied
		}
	}
	return &schema.UserFeatures{}
}

func recordAndRespond(ctx context.Context, client *TripClient, sessionID, query string, result agent.TurnResult, features *schema.UserFeatures) {
	if sessionID == "" {
		return
	}
	client.RecordTurn(ctx, sessionID, query, result.Response, features)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
