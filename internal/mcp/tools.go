package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List the user's training programs with their IDs and creation dates."),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Retrieve a full program: weeks, their days, and each day's exercises in order with sets, reps, RIR, RPE (as [low,high] ranges) and notes."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program UUID (see list_programs)")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise library. Operations must name exercises exactly as they appear here (case does not matter)."),
)

var toolApplyProgramEdits = mcp.NewTool("apply_program_edits",
	mcp.WithDescription(`Apply an ordered batch of edits to a program. Each operation is an object with "op" and "target":
- week: {"op":"add"|"delete","target":"week","week_number":N}
- day: {"op":"add"|"delete","target":"day","week_number":N,"day_name":"Push"}
- exercise add/edit: {"op":"add"|"edit","target":"exercise","week_number":N,"day_name":"Push","exercise_name":"Bench Press","sets":"3","reps":"8-12","rir":"1-2","rpe":8,"notes":"...","order":1}
- exercise delete: {"op":"delete","target":"exercise",...}
- exercise reorder: {"op":"reorder","target":"exercise",...,"order":2}
Numbers may be a number, a string like "8-12", or [low,high]. add requires sets and reps; edit changes only the fields given.
Later operations see the effects of earlier ones. The result lists each operation as applied, skipped (with reason) or failed.`),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program UUID")),
	mcp.WithArray("operations", mcp.Required(),
		mcp.Description("Operations to apply, in order"),
		mcp.Items(map[string]any{"type": "object"}),
	),
)

var toolGetProgramSummary = mcp.NewTool("get_program_summary",
	mcp.WithDescription("Per-week volume of a program: number of days, number of exercises, and total prescribed sets as a [low,high] range."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program UUID")),
)

// --- Tool handlers ---

func (h *handlers) listPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(programs), nil
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := programIDArg(req)
	if errResult != nil {
		return errResult, nil
	}

	detail, err := h.ds.GetProgram(ctx, UserIDFromContext(ctx), id)
	if err != nil {
		return h.queryError("get_program", err), nil
	}
	return jsonResult(detail), nil
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(defs), nil
}

func (h *handlers) applyProgramEdits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := programIDArg(req)
	if errResult != nil {
		return errResult, nil
	}
	ops, err := operationsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.ds.ApplyEdits(ctx, UserIDFromContext(ctx), id, ops)
	if err != nil {
		return h.queryError("apply_program_edits", err), nil
	}
	return jsonResult(result), nil
}

func (h *handlers) getProgramSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := programIDArg(req)
	if errResult != nil {
		return errResult, nil
	}

	summary, err := h.ds.GetSummary(ctx, UserIDFromContext(ctx), id)
	if err != nil {
		return h.queryError("get_program_summary", err), nil
	}
	return jsonResult(summary), nil
}

// --- Resource handlers ---

func (h *handlers) exerciseLibrary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	defs, err := h.ds.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(defs)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// --- Helpers ---

func programIDArg(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("program_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("program_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("program_id must be a UUID")
	}
	return id, nil
}

// operationsArg returns the operations argument as raw JSON. Clients that
// send the array pre-encoded as a string are accepted too.
func operationsArg(req mcp.CallToolRequest) (json.RawMessage, error) {
	v, ok := req.GetArguments()["operations"]
	if !ok || v == nil {
		return nil, errors.New("operations parameter is required")
	}
	if s, ok := v.(string); ok {
		return json.RawMessage(s), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.New("operations must be a JSON array")
	}
	return data, nil
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, program.ErrProgramNotFound) {
		return mcp.NewToolResultError("program not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}
